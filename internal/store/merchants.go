package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"marketplace/internal/models"
)

// CreateMerchant creates a merchant application in pending status
func (s *Store) CreateMerchant(ctx context.Context, merchant *models.Merchant) error {
	query := `
		INSERT INTO merchants (owner_id, business_name, business_email, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, merchant, query,
		merchant.OwnerID, merchant.BusinessName, merchant.BusinessEmail, merchant.Status)
}

// GetMerchantByID retrieves a merchant by ID
func (s *Store) GetMerchantByID(ctx context.Context, id uuid.UUID) (*models.Merchant, error) {
	var merchant models.Merchant
	err := s.db.GetContext(ctx, &merchant, "SELECT * FROM merchants WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("merchant not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}

// GetMerchantByOwnerID retrieves the merchant owned by a user
func (s *Store) GetMerchantByOwnerID(ctx context.Context, ownerID uuid.UUID) (*models.Merchant, error) {
	var merchant models.Merchant
	err := s.db.GetContext(ctx, &merchant,
		"SELECT * FROM merchants WHERE owner_id = $1", ownerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("merchant not found for owner: %s", ownerID)
	}
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}

// UpdateMerchantStatus updates a merchant's approval status
func (s *Store) UpdateMerchantStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE merchants SET status = $1 WHERE id = $2", status, id)
	return err
}

// UpdateMerchant updates a merchant's business details
func (s *Store) UpdateMerchant(ctx context.Context, merchant *models.Merchant) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE merchants SET business_name = $1, business_email = $2 WHERE id = $3",
		merchant.BusinessName, merchant.BusinessEmail, merchant.ID)
	return err
}

// DeleteMerchant removes a merchant; its products cascade
func (s *Store) DeleteMerchant(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM merchants WHERE id = $1", id)
	return err
}
