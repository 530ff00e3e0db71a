package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType is the severity tag of an in-app notification
type NotificationType string

const (
	NotificationInfo    NotificationType = "INFO"
	NotificationSuccess NotificationType = "SUCCESS"
	NotificationWarning NotificationType = "WARNING"
	NotificationError   NotificationType = "ERROR"
)

// Notification is an in-app message. Only IsRead changes after creation.
type Notification struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	UserID    uuid.UUID        `db:"user_id" json:"user_id"`
	Message   string           `db:"message" json:"message"`
	Type      NotificationType `db:"type" json:"type"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}
