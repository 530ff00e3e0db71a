package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/database"
	"github.com/localbookr/marketplace-backend/internal/metrics"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/localbookr/marketplace-backend/pkg/email"
	"github.com/localbookr/marketplace-backend/pkg/pin"
	"github.com/sirupsen/logrus"
)

const (
	msgBookingCreated      = "Booking created! Share PIN with provider when done."
	msgProviderNewBooking  = "New Booking Assigned!"
	msgServiceCompleted    = "Service completed. Please rate!"
	msgProviderAssigned    = "Provider assigned."
	msgAutoAssignedJob     = "Auto-assigned new job: %s"
	msgAutoAssignedBooking = "Provider auto-assigned to your booking!"

	pushNewBookingHeading = "New Booking Assigned! 🚀"
	pushNewBookingBody    = "New %s job in %s for ₹%s"
	pushAssignedHeading   = "New Job Assigned! 🚀"
	pushAssignedBody      = "%s job at %s. Click to view details."
	pushReminderHeading   = "Reminder: New Job Assigned"
	pushReminderBody      = "Check your dashboard for details."
)

// BookingService owns the booking lifecycle. Every state change is checked
// against the transition table and written conditionally on the status that
// was read. Operations return the effects to dispatch instead of sending them.
type BookingService struct {
	bookings  BookingStore
	services  ServiceStore
	providers ProviderStore
	ratings   *RatingService
	metrics   *metrics.Metrics
	logger    *logrus.Logger
}

// NewBookingService creates a booking service
func NewBookingService(
	bookings BookingStore,
	services ServiceStore,
	providers ProviderStore,
	ratings *RatingService,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		services:  services,
		providers: providers,
		ratings:   ratings,
		metrics:   m,
		logger:    logger,
	}
}

// ============================================================================
// QUERIES
// ============================================================================

// Get returns one booking with its joined names
func (s *BookingService) Get(ctx context.Context, id uuid.UUID) (*models.BookingDetail, error) {
	detail, err := s.bookings.GetDetail(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrBookingNotFound)
	}
	return detail, nil
}

// List returns bookings newest first. Listing never triggers assignment.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, error) {
	return s.bookings.List(ctx, filter)
}

// PIN returns the completion PIN the customer shares with the provider
func (s *BookingService) PIN(id uuid.UUID) string {
	return pin.Derive(id.String())
}

// ============================================================================
// COMMANDS
// ============================================================================

// Create books a service. The amount is the service's base price at this
// moment. A chosen provider makes the booking ASSIGNED, otherwise PENDING.
func (s *BookingService) Create(ctx context.Context, customerID uuid.UUID, req models.CreateBookingRequest) (*Outcome, error) {
	svc, err := s.services.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, notFound(err, ErrServiceNotFound)
	}

	booking := &models.Booking{
		CustomerID:  customerID,
		ServiceID:   svc.ID,
		Description: strings.TrimSpace(req.Description),
		Address:     strings.TrimSpace(req.Address),
		Area:        strings.TrimSpace(req.Area),
		Date:        req.Date,
		Time:        req.Time,
		Amount:      svc.BasePrice,
		Status:      models.BookingPending,
	}

	if req.ProviderID != nil {
		provider, err := s.providers.GetByID(ctx, *req.ProviderID)
		if err != nil {
			return nil, notFound(err, ErrProviderNotFound)
		}
		if !provider.IsEligible() {
			return nil, ErrProviderIneligible
		}
		booking.ProviderID = uuid.NullUUID{UUID: provider.ID, Valid: true}
		booking.Status = models.BookingAssigned
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"customer_id": customerID,
		"service":     svc.Name,
		"status":      booking.Status,
	}).Info("Booking created")

	detail := s.reload(ctx, booking.ID, &models.BookingDetail{Booking: *booking, ServiceName: svc.Name})

	effects := []Effect{Notify(customerID, msgBookingCreated, models.NotificationSuccess)}
	if detail.HasProvider() {
		if detail.ProviderUserID.Valid {
			effects = append(effects, Notify(detail.ProviderUserID.UUID, msgProviderNewBooking, models.NotificationInfo))
		}
		effects = append(effects, providerContactEffects(detail,
			pushNewBookingHeading,
			fmt.Sprintf(pushNewBookingBody, detail.ServiceName, detail.Area, formatAmount(detail.Amount)),
		)...)
	}

	return &Outcome{Booking: detail, Effects: effects}, nil
}

// UpdateStatus moves a booking to a new status. providerID is only used when
// the target is ASSIGNED; leaving ASSIGNED-like states clears the provider.
func (s *BookingService) UpdateStatus(ctx context.Context, id uuid.UUID, to models.BookingStatus, providerID *uuid.UUID) (*Outcome, error) {
	if !to.IsValid() {
		return nil, ErrInvalidStatus
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := models.ValidateTransition(current.Status, to); err != nil {
		return nil, err
	}

	next := current.ProviderID
	switch {
	case !to.RequiresProvider():
		next = uuid.NullUUID{}
	case to == models.BookingAssigned && providerID != nil:
		provider, err := s.providers.GetByID(ctx, *providerID)
		if err != nil {
			return nil, notFound(err, ErrProviderNotFound)
		}
		if !provider.IsEligible() {
			return nil, ErrProviderIneligible
		}
		next = uuid.NullUUID{UUID: provider.ID, Valid: true}
	}
	if to.RequiresProvider() && !next.Valid {
		return nil, ErrProviderRequired
	}

	if err := s.write(ctx, id, current.Status, to, next); err != nil {
		return nil, err
	}

	fallback := *current
	fallback.Status = to
	fallback.ProviderID = next
	updated := s.reload(ctx, id, &fallback)

	return &Outcome{Booking: updated, Effects: statusEffects(updated)}, nil
}

// Start marks an assigned job as in progress
func (s *BookingService) Start(ctx context.Context, id uuid.UUID) (*Outcome, error) {
	return s.UpdateStatus(ctx, id, models.BookingInProgress, nil)
}

// Cancel cancels a booking that has not finished
func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID) (*Outcome, error) {
	return s.UpdateStatus(ctx, id, models.BookingCancelled, nil)
}

// VerifyAndComplete completes the booking when input equals its PIN. A wrong
// PIN is a normal false result. Any internal failure also yields false.
func (s *BookingService) VerifyAndComplete(ctx context.Context, id uuid.UUID, input string) (bool, *Outcome) {
	if !pin.Verify(id.String(), input) {
		return false, nil
	}

	outcome, err := s.UpdateStatus(ctx, id, models.BookingCompleted, nil)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"booking_id": id,
			"error":      err.Error(),
		}).Warn("PIN matched but completion failed")
		return false, nil
	}
	return true, outcome
}

// Rate records the customer's feedback once and refreshes the provider's
// aggregate. providerID overrides the booking's own provider reference.
func (s *BookingService) Rate(ctx context.Context, id uuid.UUID, rating int, review string, providerID *uuid.UUID) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	var reviewPtr *string
	if trimmed := strings.TrimSpace(review); trimmed != "" {
		reviewPtr = &trimmed
	}

	if err := s.bookings.SetRating(ctx, id, rating, reviewPtr); err != nil {
		switch {
		case errors.Is(err, database.ErrAlreadyRated):
			return ErrAlreadyRated
		case errors.Is(err, database.ErrNotFound):
			return ErrBookingNotFound
		}
		return err
	}

	target := providerID
	if target == nil {
		detail, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if detail.ProviderID.Valid {
			target = &detail.ProviderID.UUID
		}
	}
	if target == nil {
		return nil
	}

	if _, _, err := s.ratings.Recompute(ctx, *target); err != nil {
		return fmt.Errorf("failed to update provider rating: %w", err)
	}
	return nil
}

// Delete removes a booking permanently
func (s *BookingService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.bookings.Delete(ctx, id); err != nil {
		return notFound(err, ErrBookingNotFound)
	}
	s.logger.WithField("booking_id", id).Info("Booking deleted")
	return nil
}

// ResendAssignment rebuilds the assignment email and a reminder push for the
// booking's current provider
func (s *BookingService) ResendAssignment(ctx context.Context, id uuid.UUID) (*Outcome, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !detail.HasProvider() {
		return nil, ErrNoProviderAssigned
	}

	return &Outcome{
		Booking: detail,
		Effects: providerContactEffects(detail, pushReminderHeading, pushReminderBody),
	}, nil
}

// ============================================================================
// HELPERS
// ============================================================================

func (s *BookingService) write(ctx context.Context, id uuid.UUID, from, to models.BookingStatus, providerID uuid.NullUUID) error {
	err := s.bookings.UpdateStatus(ctx, id, from, to, providerID)
	switch {
	case errors.Is(err, database.ErrStaleStatus):
		return ErrConflict
	case err != nil:
		return err
	}

	s.metrics.Transition(string(from), string(to))
	s.logger.WithFields(logrus.Fields{
		"booking_id":  id,
		"from":        from,
		"to":          to,
		"provider_id": providerID,
	}).Info("Booking status updated")
	return nil
}

// reload fetches the stored booking, falling back to what the caller knows
func (s *BookingService) reload(ctx context.Context, id uuid.UUID, fallback *models.BookingDetail) *models.BookingDetail {
	detail, err := s.bookings.GetDetail(ctx, id)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"booking_id": id,
			"error":      err.Error(),
		}).Warn("Failed to reload booking after write")
		return fallback
	}
	return detail
}

// statusEffects are the notifications a committed status change produces
func statusEffects(b *models.BookingDetail) []Effect {
	switch b.Status {
	case models.BookingCompleted:
		return []Effect{Notify(b.CustomerID, msgServiceCompleted, models.NotificationSuccess)}
	case models.BookingAssigned:
		effects := []Effect{Notify(b.CustomerID, msgProviderAssigned, models.NotificationInfo)}
		return append(effects, providerContactEffects(b,
			pushAssignedHeading,
			fmt.Sprintf(pushAssignedBody, b.ServiceName, b.Area),
		)...)
	}
	return nil
}

// autoAssignEffects are sent when the sweep assigns a provider
func autoAssignEffects(b *models.BookingDetail) []Effect {
	effects := []Effect{}
	if b.ProviderUserID.Valid {
		effects = append(effects, Notify(b.ProviderUserID.UUID, fmt.Sprintf(msgAutoAssignedJob, b.ServiceName), models.NotificationInfo))
	}
	effects = append(effects, Notify(b.CustomerID, msgAutoAssignedBooking, models.NotificationSuccess))
	return append(effects, providerContactEffects(b,
		pushAssignedHeading,
		fmt.Sprintf(pushAssignedBody, b.ServiceName, b.Area),
	)...)
}

// providerContactEffects emails the provider and pushes to their subscription
// when they have one
func providerContactEffects(b *models.BookingDetail, heading, body string) []Effect {
	var effects []Effect
	if b.ProviderEmail != nil && *b.ProviderEmail != "" {
		effects = append(effects, Email(assignmentFor(b)))
	}
	if b.ProviderPushToken != nil && *b.ProviderPushToken != "" {
		effects = append(effects, Push(*b.ProviderPushToken, heading, body))
	}
	return effects
}

func assignmentFor(b *models.BookingDetail) email.Assignment {
	serviceName := b.ServiceName
	if serviceName == "" {
		serviceName = "Service"
	}
	return email.Assignment{
		ProviderName:  deref(b.ProviderName),
		ProviderEmail: deref(b.ProviderEmail),
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		ServiceName:   serviceName,
		Date:          b.Date,
		Time:          b.Time,
		Address:       b.Address,
		Area:          b.Area,
		Amount:        b.Amount,
	}
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
