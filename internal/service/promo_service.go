package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace/internal/authz"
	"marketplace/internal/broker"
	"marketplace/internal/models"
	"marketplace/internal/redisclient"
	"marketplace/internal/store"
	"marketplace/internal/util"
)

// PromoService handles coupons and promo announcements
type PromoService struct {
	secured        *store.Secured
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewPromoService creates a new promo service
func NewPromoService(secured *store.Secured, redis *redisclient.Client, eventPublisher *broker.EventPublisher) *PromoService {
	return &PromoService{
		secured:        secured,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateCouponRequest represents an admin creating a coupon
type CreateCouponRequest struct {
	Code               string    `json:"code" binding:"required"`
	DiscountPercentage int       `json:"discount_percentage" binding:"min=0,max=100"`
	ExpiresAt          time.Time `json:"expires_at" binding:"required"`
}

// CreateCoupon creates a coupon and broadcasts a promo event
func (s *PromoService) CreateCoupon(ctx context.Context, sub authz.Subject, req *CreateCouponRequest) (*models.Coupon, error) {
	coupon := &models.Coupon{
		Code:               req.Code,
		DiscountPercentage: req.DiscountPercentage,
		ExpiresAt:          req.ExpiresAt,
	}

	if err := s.secured.CreateCoupon(ctx, sub, coupon); err != nil {
		return nil, err
	}

	event := &models.PromoCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePromoCreated,
			Timestamp: time.Now(),
		},
		CouponID:           coupon.ID,
		Code:               coupon.Code,
		DiscountPercentage: coupon.DiscountPercentage,
		ExpiresAt:          coupon.ExpiresAt,
	}

	if err := s.eventPublisher.PublishPromoCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish PromoCreated event", zap.Error(err))
	}

	return coupon, nil
}

// ValidateCoupon resolves a code and checks expiry, serving from the cache
// when possible
func (s *PromoService) ValidateCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	coupon, err := s.redis.GetCoupon(ctx, code)
	if err != nil {
		s.logger.Warn("Coupon cache read failed", zap.Error(err))
	}

	if coupon == nil {
		coupon, err = s.secured.GetCouponByCode(ctx, code)
		if err != nil {
			util.CouponLookupsTotal.WithLabelValues("not_found").Inc()
			return nil, err
		}
		if err := s.redis.SetCoupon(ctx, coupon); err != nil {
			s.logger.Warn("Coupon cache write failed", zap.Error(err))
		}
	}

	if time.Now().After(coupon.ExpiresAt) {
		util.CouponLookupsTotal.WithLabelValues("expired").Inc()
		return nil, fmt.Errorf("coupon expired: %s", code)
	}

	util.CouponLookupsTotal.WithLabelValues("valid").Inc()
	return coupon, nil
}
