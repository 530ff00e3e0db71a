package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrStaleStatus is returned when a conditional status write lost the race
	ErrStaleStatus = errors.New("booking status changed concurrently")

	// ErrAlreadyRated is returned when a booking already carries a rating
	ErrAlreadyRated = errors.New("booking already rated")

	// ErrDuplicate is returned on unique constraint violations
	ErrDuplicate = errors.New("record already exists")

	// ErrInUse is returned when a row is still referenced elsewhere
	ErrInUse = errors.New("record is still referenced")
)

// Postgres SQLSTATE codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return ErrDuplicate
		case foreignKeyViolation:
			return ErrInUse
		}
	}
	return err
}

// requireAffected turns a zero-row write into ErrNotFound
func requireAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
