package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace/internal/authz"
	"marketplace/internal/models"
	"marketplace/internal/store"
	"marketplace/internal/util"
)

// MerchantService handles merchant applications and lifecycle
type MerchantService struct {
	secured *store.Secured
	logger  *zap.Logger
}

// NewMerchantService creates a new merchant service
func NewMerchantService(secured *store.Secured) *MerchantService {
	return &MerchantService{
		secured: secured,
		logger:  util.GetLogger(),
	}
}

// ApplyRequest represents a merchant application
type ApplyRequest struct {
	BusinessName  string `json:"business_name" binding:"required"`
	BusinessEmail string `json:"business_email" binding:"required,email"`
}

// Apply files a merchant application owned by the caller. Approval is a
// separate admin-controlled transition.
func (s *MerchantService) Apply(ctx context.Context, sub authz.Subject, req *ApplyRequest) (*models.Merchant, error) {
	merchant := &models.Merchant{
		OwnerID:       sub.ID,
		BusinessName:  req.BusinessName,
		BusinessEmail: req.BusinessEmail,
		Status:        models.MerchantStatusPending,
	}

	if err := s.secured.CreateMerchant(ctx, sub, merchant); err != nil {
		return nil, err
	}

	s.logger.Info("Merchant application filed",
		zap.String("merchant_id", merchant.ID.String()),
		zap.String("owner_id", sub.ID.String()))
	return merchant, nil
}

// GetOwn returns the caller's merchant
func (s *MerchantService) GetOwn(ctx context.Context, sub authz.Subject) (*models.Merchant, error) {
	return s.secured.GetOwnMerchant(ctx, sub)
}

// Update changes the caller's merchant business details
func (s *MerchantService) Update(ctx context.Context, sub authz.Subject, merchant *models.Merchant) error {
	return s.secured.UpdateMerchant(ctx, sub, merchant)
}

// SetStatus transitions a merchant's approval status, admin only
func (s *MerchantService) SetStatus(ctx context.Context, sub authz.Subject, id uuid.UUID, status string) error {
	switch status {
	case models.MerchantStatusPending, models.MerchantStatusApproved, models.MerchantStatusRejected:
	default:
		return fmt.Errorf("invalid merchant status: %s", status)
	}
	return s.secured.UpdateMerchantStatus(ctx, sub, id, status)
}

// Delete removes the caller's merchant and its products
func (s *MerchantService) Delete(ctx context.Context, sub authz.Subject, id uuid.UUID) error {
	return s.secured.DeleteMerchant(ctx, sub, id)
}
