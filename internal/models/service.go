package models

import (
	"time"

	"github.com/google/uuid"
)

// Service is a catalog entry customers can book. Provider skills refer to it by Name.
type Service struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	BasePrice   float64   `db:"base_price" json:"base_price"`
	MaxPrice    *float64  `db:"max_price" json:"max_price,omitempty"`
	Icon        string    `db:"icon" json:"icon"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ServiceRequest is the admin create/update payload
type ServiceRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	BasePrice   float64  `json:"base_price" binding:"gte=0"`
	MaxPrice    *float64 `json:"max_price"`
	Icon        string   `json:"icon"`
}
