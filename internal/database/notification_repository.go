package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/models"
)

// NotificationRepository handles in-app notifications
type NotificationRepository struct {
	db DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create stores a notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Type == "" {
		n.Type = models.NotificationInfo
	}

	query := `
		INSERT INTO notifications (id, user_id, message, type, is_read, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)`

	if _, err := r.db.ExecContext(ctx, query, n.ID, n.UserID, n.Message, n.Type, n.CreatedAt); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListForUser returns a user's notifications newest first
func (r *NotificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	notifications := []models.Notification{}
	query := `
		SELECT id, user_id, message, type, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	if err := r.db.SelectContext(ctx, &notifications, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flags one of the user's notifications as read
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return requireAffected(result)
}
