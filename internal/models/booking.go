package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking
type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"
	BookingWaiting    BookingStatus = "WAITING"
	BookingAssigned   BookingStatus = "ASSIGNED"
	BookingInProgress BookingStatus = "IN_PROGRESS"
	BookingCompleted  BookingStatus = "COMPLETED"
	BookingCancelled  BookingStatus = "CANCELLED"
)

// ErrInvalidTransition is wrapped by every TransitionError
var ErrInvalidTransition = errors.New("invalid booking status transition")

// TransitionError reports a rejected status change
type TransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move booking from %s to %s", e.From, e.To)
}

// Unwrap lets errors.Is match ErrInvalidTransition
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// transitions lists the legal next states. ASSIGNED -> ASSIGNED is a reassignment.
var transitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingAssigned, BookingWaiting, BookingCancelled},
	BookingWaiting:    {BookingAssigned, BookingCancelled},
	BookingAssigned:   {BookingAssigned, BookingInProgress, BookingCancelled},
	BookingInProgress: {BookingCompleted, BookingCancelled},
	BookingCompleted:  nil,
	BookingCancelled:  nil,
}

// IsValid reports whether s is a known status
func (s BookingStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further transition is possible
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// RequiresProvider reports whether a booking in this state must reference a provider
func (s BookingStatus) RequiresProvider() bool {
	return s == BookingAssigned || s == BookingInProgress || s == BookingCompleted
}

// CanTransition reports whether from -> to is allowed
func CanTransition(from, to BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a *TransitionError when from -> to is not allowed
func ValidateTransition(from, to BookingStatus) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// Booking is a single customer request for a service
type Booking struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	CustomerID  uuid.UUID     `db:"customer_id" json:"customer_id"`
	ServiceID   uuid.UUID     `db:"service_id" json:"service_id"`
	ProviderID  uuid.NullUUID `db:"provider_id" json:"provider_id"`
	Description string        `db:"description" json:"description"`
	Address     string        `db:"address" json:"address"`
	Area        string        `db:"area" json:"area"`
	Date        string        `db:"booking_date" json:"date"`
	Time        string        `db:"booking_time" json:"time"`
	Amount      float64       `db:"amount" json:"amount"`
	Status      BookingStatus `db:"status" json:"status"`
	Rating      *int          `db:"rating" json:"rating,omitempty"`
	Review      *string       `db:"review" json:"review,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// BookingDetail is a booking joined with its customer, service and provider
type BookingDetail struct {
	Booking

	CustomerName  string `db:"customer_name" json:"customer_name"`
	CustomerEmail string `db:"customer_email" json:"customer_email"`
	CustomerPhone string `db:"customer_phone" json:"customer_phone"`
	ServiceName   string `db:"service_name" json:"service_name"`

	ProviderUserID    uuid.NullUUID `db:"provider_user_id" json:"provider_user_id"`
	ProviderName      *string       `db:"provider_name" json:"provider_name,omitempty"`
	ProviderEmail     *string       `db:"provider_email" json:"provider_email,omitempty"`
	ProviderPhone     *string       `db:"provider_phone" json:"provider_phone,omitempty"`
	ProviderPushToken *string       `db:"provider_push_token" json:"-"`
}

// HasProvider reports whether a provider is assigned
func (b *BookingDetail) HasProvider() bool {
	return b.ProviderID.Valid
}

// BookingFilter narrows booking listings; nil fields are ignored
type BookingFilter struct {
	CustomerID *uuid.UUID
	ProviderID *uuid.UUID
	Status     *BookingStatus
}

// CreateBookingRequest is the customer booking payload
type CreateBookingRequest struct {
	ServiceID   uuid.UUID  `json:"service_id" binding:"required"`
	ProviderID  *uuid.UUID `json:"provider_id"`
	Description string     `json:"description"`
	Address     string     `json:"address" binding:"required"`
	Area        string     `json:"area" binding:"required"`
	Date        string     `json:"date" binding:"required"`
	Time        string     `json:"time" binding:"required"`
}

// UpdateStatusRequest is the status change payload
type UpdateStatusRequest struct {
	Status     BookingStatus `json:"status" binding:"required"`
	ProviderID *uuid.UUID    `json:"provider_id"`
}

// CompleteBookingRequest carries the PIN entered by the provider
type CompleteBookingRequest struct {
	PIN string `json:"pin" binding:"required"`
}

// RateBookingRequest is the customer feedback payload
type RateBookingRequest struct {
	Rating     int        `json:"rating" binding:"required"`
	Review     string     `json:"review"`
	ProviderID *uuid.UUID `json:"provider_id"`
}
