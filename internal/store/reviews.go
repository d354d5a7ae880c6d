package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"marketplace/internal/models"
)

// HasPurchased reports whether a user has bought a product: an order_items
// row for the product must exist on an order placed by the user. The review
// insert policy depends on this join.
func (s *Store) HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1
			FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE oi.product_id = $1 AND o.user_id = $2
		)`, productID, userID)
	return exists, err
}

// CreateReview creates a new review
func (s *Store) CreateReview(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (user_id, product_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, review, query,
		review.UserID, review.ProductID, review.Rating, review.Comment)
}

// GetReviewByID retrieves a review by ID
func (s *Store) GetReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := s.db.GetContext(ctx, &review, "SELECT * FROM reviews WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("review not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetReviewsByProductID retrieves reviews for a product, newest first
func (s *Store) GetReviewsByProductID(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.SelectContext(ctx, &reviews,
		"SELECT * FROM reviews WHERE product_id = $1 ORDER BY created_at DESC", productID)
	return reviews, err
}

// UpdateReview updates a review's rating and comment
func (s *Store) UpdateReview(ctx context.Context, review *models.Review) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE reviews SET rating = $1, comment = $2 WHERE id = $3",
		review.Rating, review.Comment, review.ID)
	return err
}

// DeleteReview removes a review
func (s *Store) DeleteReview(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = $1", id)
	return err
}
