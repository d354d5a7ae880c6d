package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"marketplace/internal/models"
)

// CreateWishlistItem saves a product to a user's wishlist
func (s *Store) CreateWishlistItem(ctx context.Context, item *models.WishlistItem) error {
	query := `
		INSERT INTO wishlist (user_id, product_id)
		VALUES ($1, $2)
		RETURNING id`

	return s.db.GetContext(ctx, &item.ID, query, item.UserID, item.ProductID)
}

// GetWishlistItemByID retrieves a wishlist entry by ID
func (s *Store) GetWishlistItemByID(ctx context.Context, id uuid.UUID) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM wishlist WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("wishlist item not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetWishlistByUserID retrieves a user's wishlist
func (s *Store) GetWishlistByUserID(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM wishlist WHERE user_id = $1", userID)
	return items, err
}

// DeleteWishlistItem removes a wishlist entry
func (s *Store) DeleteWishlistItem(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM wishlist WHERE id = $1", id)
	return err
}
