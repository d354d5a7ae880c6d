package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"marketplace/internal/models"
)

// CreateAddress creates a shipping address. Marking it default clears the
// previous default in the same transaction.
func (s *Store) CreateAddress(ctx context.Context, address *models.Address) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if address.IsDefault {
		_, err = tx.ExecContext(ctx,
			"UPDATE addresses SET is_default = FALSE WHERE user_id = $1", address.UserID)
		if err != nil {
			return fmt.Errorf("failed to clear default address: %w", err)
		}
	}

	err = tx.GetContext(ctx, &address.ID, `
		INSERT INTO addresses (user_id, line1, city, country, is_default)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		address.UserID, address.Line1, address.City, address.Country, address.IsDefault)
	if err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}

	return tx.Commit()
}

// GetAddressByID retrieves an address by ID
func (s *Store) GetAddressByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := s.db.GetContext(ctx, &address, "SELECT * FROM addresses WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("address not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// GetAddressesByUserID retrieves a user's addresses, default first
func (s *Store) GetAddressesByUserID(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	err := s.db.SelectContext(ctx, &addresses,
		"SELECT * FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, id", userID)
	return addresses, err
}

// UpdateAddress updates an address
func (s *Store) UpdateAddress(ctx context.Context, address *models.Address) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE addresses
		SET line1 = $1, city = $2, country = $3, is_default = $4
		WHERE id = $5`,
		address.Line1, address.City, address.Country, address.IsDefault, address.ID)
	return err
}

// DeleteAddress removes an address
func (s *Store) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM addresses WHERE id = $1", id)
	return err
}
