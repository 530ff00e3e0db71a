package models

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus is the admin review state of a provider
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalActive   ApprovalStatus = "ACTIVE"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// IsValid reports whether s is a known approval status
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalActive, ApprovalRejected:
		return true
	}
	return false
}

// Provider is a service professional. Skill must equal a Service name.
type Provider struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	UserID          uuid.UUID      `db:"user_id" json:"user_id"`
	Skill           string         `db:"skill" json:"skill"`
	Area            string         `db:"area" json:"area"`
	Rating          float64        `db:"rating" json:"rating"`
	IsActive        bool           `db:"is_active" json:"is_active"`
	ApprovalStatus  ApprovalStatus `db:"approval_status" json:"approval_status"`
	ExperienceYears *int           `db:"experience_years" json:"experience_years,omitempty"`
	Bio             *string        `db:"bio" json:"bio,omitempty"`
	IsDeleted       bool           `db:"is_deleted" json:"is_deleted"`
	PushToken       *string        `db:"push_token" json:"-"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`

	// Joined from users
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
	Phone string `db:"phone" json:"phone"`

	Photos []ProviderPhoto `db:"-" json:"photos"`
}

// IsEligible reports whether the provider can be matched to new work
func (p *Provider) IsEligible() bool {
	return p.IsActive && p.ApprovalStatus == ApprovalActive && !p.IsDeleted
}

// ProviderPhoto is one portfolio image, ordered by Position
type ProviderPhoto struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ProviderID uuid.UUID `db:"provider_id" json:"provider_id"`
	URL        string    `db:"url" json:"url"`
	Caption    *string   `db:"caption" json:"caption,omitempty"`
	Position   int       `db:"position" json:"position"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CreateProviderRequest is the admin create payload. It opens a new provider
// account; an empty email falls back to <phone>@provider.local and an empty
// password leaves the account without a usable login.
type CreateProviderRequest struct {
	Name            string  `json:"name" binding:"required"`
	Email           string  `json:"email" binding:"omitempty,email"`
	Phone           string  `json:"phone" binding:"required"`
	Password        string  `json:"password" binding:"omitempty,min=6"`
	Skill           string  `json:"skill" binding:"required"`
	Area            string  `json:"area" binding:"required"`
	Bio             *string `json:"bio"`
	ExperienceYears *int    `json:"experience_years"`
}

// ProviderRegisterRequest is the public self-registration payload
type ProviderRegisterRequest struct {
	Name            string  `json:"name" binding:"required"`
	Email           string  `json:"email" binding:"required,email"`
	Phone           string  `json:"phone" binding:"required"`
	Password        string  `json:"password" binding:"required,min=6"`
	Skill           string  `json:"skill" binding:"required"`
	Area            string  `json:"area" binding:"required"`
	Bio             *string `json:"bio"`
	ExperienceYears *int    `json:"experience_years"`
}

// ProviderUpdate holds the fields an admin may change; nil means unchanged
type ProviderUpdate struct {
	IsActive        *bool           `json:"is_active"`
	ApprovalStatus  *ApprovalStatus `json:"approval_status"`
	Skill           *string         `json:"skill"`
	Area            *string         `json:"area"`
	Rating          *float64        `json:"rating"`
	Bio             *string         `json:"bio"`
	ExperienceYears *int            `json:"experience_years"`
	PushToken       *string         `json:"push_token"`
}

// IsEmpty reports whether no field is set
func (u ProviderUpdate) IsEmpty() bool {
	return u.IsActive == nil && u.ApprovalStatus == nil && u.Skill == nil && u.Area == nil &&
		u.Rating == nil && u.Bio == nil && u.ExperienceYears == nil && u.PushToken == nil
}

// AddPhotoRequest attaches an already-hosted image to a provider
type AddPhotoRequest struct {
	URL     string  `json:"url" binding:"required,url"`
	Caption *string `json:"caption"`
}
