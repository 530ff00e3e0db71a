package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/models"
)

const bookingDetailSelect = `
	SELECT b.id, b.customer_id, b.service_id, b.provider_id, b.description, b.address, b.area,
		b.booking_date, b.booking_time, b.amount, b.status, b.rating, b.review,
		b.created_at, b.updated_at,
		COALESCE(c.name, '') AS customer_name,
		COALESCE(c.email, '') AS customer_email,
		COALESCE(c.phone, '') AS customer_phone,
		COALESCE(s.name, '') AS service_name,
		p.user_id AS provider_user_id,
		pu.name AS provider_name,
		pu.email AS provider_email,
		pu.phone AS provider_phone,
		p.push_token AS provider_push_token
	FROM bookings b
	LEFT JOIN users c ON c.id = b.customer_id
	LEFT JOIN services s ON s.id = b.service_id
	LEFT JOIN providers p ON p.id = b.provider_id
	LEFT JOIN users pu ON pu.id = p.user_id`

// RatingStats summarises the ratings recorded against one provider
type RatingStats struct {
	Count   int     `db:"count"`
	Average float64 `db:"average"`
}

// BookingRepository handles booking persistence. Status and rating writes are
// conditional on the value the caller read.
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a booking
func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = b.CreatedAt

	query := `
		INSERT INTO bookings (
			id, customer_id, service_id, provider_id, description, address, area,
			booking_date, booking_time, amount, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.CustomerID, b.ServiceID, b.ProviderID, b.Description, b.Address, b.Area,
		b.Date, b.Time, b.Amount, b.Status, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", mapError(err))
	}
	return nil
}

// GetDetail retrieves a booking joined with customer, service and provider
func (r *BookingRepository) GetDetail(ctx context.Context, id uuid.UUID) (*models.BookingDetail, error) {
	var detail models.BookingDetail
	if err := r.db.GetContext(ctx, &detail, bookingDetailSelect+` WHERE b.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", mapError(err))
	}
	return &detail, nil
}

// List returns bookings newest first, narrowed by the filter
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, error) {
	conditions := []string{}
	args := []interface{}{}
	where := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.CustomerID != nil {
		where("b.customer_id = $%d", *filter.CustomerID)
	}
	if filter.ProviderID != nil {
		where("b.provider_id = $%d", *filter.ProviderID)
	}
	if filter.Status != nil {
		where("b.status = $%d", *filter.Status)
	}

	query := bookingDetailSelect
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY b.created_at DESC`

	bookings := []models.BookingDetail{}
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// ListStale returns bookings in the status created before the cutoff. Rows
// untouched the longest come first, so retried WAITING bookings rotate.
func (r *BookingRepository) ListStale(ctx context.Context, status models.BookingStatus, before time.Time, limit int) ([]models.BookingDetail, error) {
	query := bookingDetailSelect + `
		WHERE b.status = $1 AND b.created_at < $2
		ORDER BY b.updated_at ASC, b.created_at ASC
		LIMIT $3`

	bookings := []models.BookingDetail{}
	if err := r.db.SelectContext(ctx, &bookings, query, status, before, limit); err != nil {
		return nil, fmt.Errorf("failed to list stale bookings: %w", err)
	}
	return bookings, nil
}

// TouchWaiting bumps updated_at on a booking still WAITING. A booking that
// has moved on is left alone without error.
func (r *BookingRepository) TouchWaiting(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE bookings SET updated_at = NOW() WHERE id = $1 AND status = $2`

	if _, err := r.db.ExecContext(ctx, query, id, models.BookingWaiting); err != nil {
		return fmt.Errorf("failed to touch waiting booking: %w", err)
	}
	return nil
}

// UpdateStatus moves a booking from one status to another and sets its provider
// reference. It fails with ErrStaleStatus when the stored status is no longer from.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.BookingStatus, providerID uuid.NullUUID) error {
	query := `
		UPDATE bookings
		SET status = $1, provider_id = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4`

	result, err := r.db.ExecContext(ctx, query, to, providerID, id, from)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrStaleStatus
	}
	return nil
}

// SetRating records feedback once. A second attempt fails with ErrAlreadyRated.
func (r *BookingRepository) SetRating(ctx context.Context, id uuid.UUID, rating int, review *string) error {
	query := `
		UPDATE bookings
		SET rating = $1, review = $2, updated_at = NOW()
		WHERE id = $3 AND rating IS NULL`

	result, err := r.db.ExecContext(ctx, query, rating, review, id)
	if err != nil {
		return fmt.Errorf("failed to rate booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	err = r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = $1)`, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check booking: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrAlreadyRated
}

// ProviderRatingStats aggregates every rating on the provider's bookings
func (r *BookingRepository) ProviderRatingStats(ctx context.Context, providerID uuid.UUID) (*RatingStats, error) {
	var stats RatingStats
	query := `
		SELECT COUNT(rating) AS count, COALESCE(AVG(rating), 0)::float8 AS average
		FROM bookings
		WHERE provider_id = $1 AND rating IS NOT NULL`

	if err := r.db.GetContext(ctx, &stats, query, providerID); err != nil {
		return nil, fmt.Errorf("failed to aggregate provider ratings: %w", err)
	}
	return &stats, nil
}

// Delete removes a booking permanently
func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return requireAffected(result)
}
