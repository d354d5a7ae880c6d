package store

import (
	"context"
	"database/sql"
	"fmt"

	"marketplace/internal/models"
)

// CreateCoupon creates a discount coupon
func (s *Store) CreateCoupon(ctx context.Context, coupon *models.Coupon) error {
	query := `
		INSERT INTO coupons (code, discount_percentage, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id`

	return s.db.GetContext(ctx, &coupon.ID, query,
		coupon.Code, coupon.DiscountPercentage, coupon.ExpiresAt)
}

// GetCouponByCode retrieves a coupon by its code
func (s *Store) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := s.db.GetContext(ctx, &coupon, "SELECT * FROM coupons WHERE code = $1", code)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("coupon not found: %s", code)
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}
