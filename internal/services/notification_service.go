package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/models"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

// NotificationService reads a user's in-app notifications
type NotificationService struct {
	notifications NotificationStore
}

// NewNotificationService creates a notification service
func NewNotificationService(notifications NotificationStore) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// List returns the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	items, err := s.notifications.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, nil
}

// MarkRead flags one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.notifications.MarkRead(ctx, userID, id); err != nil {
		return notFound(err, ErrNotificationNotFound)
	}
	return nil
}
