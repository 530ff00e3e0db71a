package services

import (
	"errors"

	"github.com/localbookr/marketplace-backend/internal/database"
	"github.com/localbookr/marketplace-backend/internal/models"
)

var (
	ErrBookingNotFound      = errors.New("booking not found")
	ErrServiceNotFound      = errors.New("service not found")
	ErrProviderNotFound     = errors.New("provider not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrPhotoNotFound        = errors.New("photo not found")

	// ErrAlreadyRated is returned when feedback was already recorded
	ErrAlreadyRated = errors.New("booking already rated")

	// ErrInvalidTransition matches every *models.TransitionError
	ErrInvalidTransition = models.ErrInvalidTransition

	// ErrConflict means the booking changed between read and write
	ErrConflict = errors.New("booking was modified concurrently")

	ErrProviderRequired   = errors.New("provider is required for this status")
	ErrProviderIneligible = errors.New("provider is not active and approved")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidStatus      = errors.New("unknown booking status")
	ErrNoProviderAssigned = errors.New("no provider assigned to this booking")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUnknownSkill       = errors.New("skill does not match any service")
	ErrForbidden          = errors.New("not allowed to access this resource")
	ErrServiceExists      = errors.New("a service with this name already exists")
	ErrServiceInUse       = errors.New("service still has bookings")
	ErrInvalidApproval    = errors.New("unknown approval status")
	ErrUploadsDisabled    = errors.New("photo uploads are not configured")
	ErrInvalidPhone       = errors.New("invalid phone number")
)

// notFound maps a repository miss onto the service-level sentinel
func notFound(err error, sentinel error) error {
	if errors.Is(err, database.ErrNotFound) {
		return sentinel
	}
	return err
}
