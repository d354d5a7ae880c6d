package service

import (
	"context"

	"github.com/google/uuid"

	"marketplace/internal/authz"
	"marketplace/internal/models"
	"marketplace/internal/store"
)

// ProfileService covers the user-owned collections: wishlist, addresses and
// notifications. All access goes through the policy wrapper, so every
// operation is scoped to the caller's own rows.
type ProfileService struct {
	secured *store.Secured
}

// NewProfileService creates a new profile service
func NewProfileService(secured *store.Secured) *ProfileService {
	return &ProfileService{secured: secured}
}

// AddToWishlist saves a product to the caller's wishlist
func (s *ProfileService) AddToWishlist(ctx context.Context, sub authz.Subject, productID uuid.UUID) (*models.WishlistItem, error) {
	item := &models.WishlistItem{UserID: sub.ID, ProductID: productID}
	if err := s.secured.AddWishlistItem(ctx, sub, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetWishlist lists the caller's wishlist
func (s *ProfileService) GetWishlist(ctx context.Context, sub authz.Subject) ([]models.WishlistItem, error) {
	return s.secured.GetWishlist(ctx, sub)
}

// RemoveFromWishlist removes a wishlist entry
func (s *ProfileService) RemoveFromWishlist(ctx context.Context, sub authz.Subject, id uuid.UUID) error {
	return s.secured.RemoveWishlistItem(ctx, sub, id)
}

// AddAddress creates a shipping address
func (s *ProfileService) AddAddress(ctx context.Context, sub authz.Subject, address *models.Address) error {
	address.UserID = sub.ID
	return s.secured.CreateAddress(ctx, sub, address)
}

// GetAddresses lists the caller's addresses
func (s *ProfileService) GetAddresses(ctx context.Context, sub authz.Subject) ([]models.Address, error) {
	return s.secured.GetAddresses(ctx, sub)
}

// UpdateAddress updates an address
func (s *ProfileService) UpdateAddress(ctx context.Context, sub authz.Subject, address *models.Address) error {
	return s.secured.UpdateAddress(ctx, sub, address)
}

// RemoveAddress deletes an address
func (s *ProfileService) RemoveAddress(ctx context.Context, sub authz.Subject, id uuid.UUID) error {
	return s.secured.DeleteAddress(ctx, sub, id)
}

// GetNotifications lists the caller's notifications
func (s *ProfileService) GetNotifications(ctx context.Context, sub authz.Subject) ([]models.Notification, error) {
	return s.secured.GetNotifications(ctx, sub)
}

// MarkNotificationRead marks one of the caller's notifications as read
func (s *ProfileService) MarkNotificationRead(ctx context.Context, sub authz.Subject, id uuid.UUID) error {
	return s.secured.MarkNotificationRead(ctx, sub, id)
}
