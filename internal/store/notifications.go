package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"marketplace/internal/models"
)

// CreateNotification creates a notification for a user
func (s *Store) CreateNotification(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, notification, query,
		notification.UserID, notification.Type, notification.Message)
}

// GetNotificationByID retrieves a notification by ID
func (s *Store) GetNotificationByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	err := s.db.GetContext(ctx, &notification,
		"SELECT * FROM notifications WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("notification not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// GetNotificationsByUserID retrieves a user's notifications, newest first
func (s *Store) GetNotificationsByUserID(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.SelectContext(ctx, &notifications,
		"SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return notifications, err
}

// MarkNotificationRead marks a notification as read
func (s *Store) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE id = $1", id)
	return err
}

// GetAllUserIDs returns every user id, for promo broadcast fan-out
func (s *Store) GetAllUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids, "SELECT id FROM users")
	return ids, err
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
