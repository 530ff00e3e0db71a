package database

import (
	"context"
	"fmt"
)

// schemaStatements bootstrap an empty database. Every statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'CUSTOMER',
		password_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS services (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		base_price NUMERIC(10,2) NOT NULL DEFAULT 0,
		max_price NUMERIC(10,2),
		icon TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS providers (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		skill TEXT NOT NULL,
		area TEXT NOT NULL,
		rating NUMERIC(3,1) NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		approval_status TEXT NOT NULL DEFAULT 'PENDING',
		experience_years INT,
		bio TEXT,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		push_token TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_providers_skill ON providers (skill)`,
	`CREATE TABLE IF NOT EXISTS provider_photos (
		id UUID PRIMARY KEY,
		provider_id UUID NOT NULL REFERENCES providers(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		caption TEXT,
		position INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		customer_id UUID NOT NULL REFERENCES users(id),
		service_id UUID NOT NULL REFERENCES services(id),
		provider_id UUID REFERENCES providers(id) ON DELETE SET NULL,
		description TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		area TEXT NOT NULL DEFAULT '',
		booking_date TEXT NOT NULL,
		booking_time TEXT NOT NULL,
		amount NUMERIC(10,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'PENDING',
		rating INT CHECK (rating BETWEEN 1 AND 5),
		review TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_status_created ON bookings (status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_status_updated ON bookings (status, updated_at)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_provider ON bookings (provider_id)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		message TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'INFO',
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, created_at DESC)`,
}

// EnsureSchema creates missing tables and indexes
func EnsureSchema(ctx context.Context, db DB) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
