package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"marketplace/internal/authz"
	"marketplace/internal/models"
	"marketplace/internal/store"
	"marketplace/internal/util"
)

// NotificationService fans events out into notification rows. It runs under
// the system subject since notification inserts are denied to user sessions.
type NotificationService struct {
	store   *store.Store
	secured *store.Secured
	logger  *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(st *store.Store, secured *store.Secured) *NotificationService {
	return &NotificationService{
		store:   st,
		secured: secured,
		logger:  util.GetLogger(),
	}
}

// HandleOrderPlaced notifies the customer their order was received
func (s *NotificationService) HandleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	processed, err := s.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	notification := &models.Notification{
		UserID:  event.UserID,
		Type:    models.NotificationTypeOrder,
		Message: fmt.Sprintf("Your order %s has been placed", event.OrderID),
	}
	if err := s.secured.CreateNotification(ctx, authz.SystemSubject(), notification); err != nil {
		return fmt.Errorf("failed to create order notification: %w", err)
	}

	util.NotificationsSentTotal.WithLabelValues(models.NotificationTypeOrder).Inc()
	return s.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

// HandleOrderStatusChanged notifies the customer of a status transition
func (s *NotificationService) HandleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	processed, err := s.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	notification := &models.Notification{
		UserID:  event.UserID,
		Type:    models.NotificationTypeOrder,
		Message: fmt.Sprintf("Your order %s is now %s", event.OrderID, event.NewStatus),
	}
	if err := s.secured.CreateNotification(ctx, authz.SystemSubject(), notification); err != nil {
		return fmt.Errorf("failed to create status notification: %w", err)
	}

	util.NotificationsSentTotal.WithLabelValues(models.NotificationTypeOrder).Inc()
	return s.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

// HandlePromoCreated broadcasts a promo notification to every user
func (s *NotificationService) HandlePromoCreated(ctx context.Context, event *models.PromoCreatedEvent) error {
	processed, err := s.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	userIDs, err := s.store.GetAllUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users for broadcast: %w", err)
	}

	message := fmt.Sprintf("New promo: use code %s for %d%% off", event.Code, event.DiscountPercentage)
	for _, userID := range userIDs {
		notification := &models.Notification{
			UserID:  userID,
			Type:    models.NotificationTypePromo,
			Message: message,
		}
		if err := s.secured.CreateNotification(ctx, authz.SystemSubject(), notification); err != nil {
			s.logger.Error("Failed to create promo notification",
				zap.String("user_id", userID.String()),
				zap.Error(err))
			continue
		}
		util.NotificationsSentTotal.WithLabelValues(models.NotificationTypePromo).Inc()
	}

	return s.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}
