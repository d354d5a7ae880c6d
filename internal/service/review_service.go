package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace/internal/authz"
	"marketplace/internal/broker"
	"marketplace/internal/models"
	"marketplace/internal/store"
	"marketplace/internal/util"
)

// ReviewService handles product reviews. The purchase requirement lives in
// the review insert policy, not here.
type ReviewService struct {
	secured        *store.Secured
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewReviewService creates a new review service
func NewReviewService(secured *store.Secured, eventPublisher *broker.EventPublisher) *ReviewService {
	return &ReviewService{
		secured:        secured,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateReviewRequest represents a review submission
type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required"`
	Comment   string    `json:"comment"`
}

// CreateReview submits a review for a purchased product
func (s *ReviewService) CreateReview(ctx context.Context, sub authz.Subject, req *CreateReviewRequest) (*models.Review, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.CreateReview")
	defer span.End()

	review := &models.Review{
		UserID:    sub.ID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := s.secured.CreateReview(ctx, sub, review); err != nil {
		if authz.IsNotAuthorized(err) {
			util.ReviewsRejectedTotal.WithLabelValues("policy_denied").Inc()
		}
		return nil, err
	}

	util.ReviewsCreatedTotal.Inc()
	s.logger.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("product_id", review.ProductID.String()),
		zap.Int("rating", review.Rating))

	event := &models.ReviewCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeReviewCreated,
			Timestamp: time.Now(),
		},
		ReviewID:  review.ID,
		UserID:    review.UserID,
		ProductID: review.ProductID,
		Rating:    review.Rating,
	}

	if err := s.eventPublisher.PublishReviewCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish ReviewCreated event", zap.Error(err))
	}

	return review, nil
}

// ListReviews lists reviews for a product
func (s *ReviewService) ListReviews(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	return s.secured.GetReviewsByProduct(ctx, productID)
}

// UpdateReview edits the caller's review
func (s *ReviewService) UpdateReview(ctx context.Context, sub authz.Subject, reviewID uuid.UUID, rating int, comment string) (*models.Review, error) {
	review := &models.Review{
		ID:      reviewID,
		Rating:  rating,
		Comment: comment,
	}
	if err := s.secured.UpdateReview(ctx, sub, review); err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview removes the caller's review
func (s *ReviewService) DeleteReview(ctx context.Context, sub authz.Subject, reviewID uuid.UUID) error {
	return s.secured.DeleteReview(ctx, sub, reviewID)
}
