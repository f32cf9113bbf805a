package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL,
		phone         TEXT,
		full_name     TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL,
		is_active     BOOLEAN NOT NULL DEFAULT FALSE,
		password_hash TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_idx ON users (LOWER(email))`,

	`CREATE TABLE IF NOT EXISTS warehouses (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		location        TEXT NOT NULL,
		storage_type    TEXT NOT NULL,
		total_space     DOUBLE PRECISION NOT NULL CHECK (total_space > 0),
		available_space DOUBLE PRECISION NOT NULL CHECK (available_space >= 0),
		price_per_sq_ft DOUBLE PRECISION NOT NULL,
		is_active       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (available_space <= total_space)
	)`,

	`CREATE TABLE IF NOT EXISTS quotes (
		id                   TEXT PRIMARY KEY,
		customer_id          TEXT NOT NULL,
		storage_type         TEXT NOT NULL,
		required_space       DOUBLE PRECISION NOT NULL,
		preferred_location   TEXT NOT NULL,
		duration             TEXT NOT NULL,
		special_requirements TEXT,
		status               TEXT NOT NULL,
		assigned_to          TEXT,
		final_price          DOUBLE PRECISION,
		warehouse_id         TEXT REFERENCES warehouses(id),
		created_at           TIMESTAMPTZ NOT NULL,
		updated_at           TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS quotes_customer_idx ON quotes (customer_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id                  TEXT PRIMARY KEY,
		quote_id            TEXT NOT NULL REFERENCES quotes(id),
		customer_id         TEXT NOT NULL,
		warehouse_id        TEXT NOT NULL REFERENCES warehouses(id),
		required_space      DOUBLE PRECISION NOT NULL,
		status              TEXT NOT NULL,
		start_date          TIMESTAMPTZ NOT NULL,
		end_date            TIMESTAMPTZ NOT NULL,
		total_amount        DOUBLE PRECISION NOT NULL DEFAULT 0,
		approved_by_id      TEXT,
		cancellation_reason TEXT,
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_customer_idx ON bookings (customer_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS cargo_dispatch_details (
		id               TEXT PRIMARY KEY,
		booking_id       TEXT NOT NULL REFERENCES bookings(id),
		customer_id      TEXT NOT NULL,
		item_description TEXT NOT NULL,
		quantity         INTEGER NOT NULL CHECK (quantity >= 1),
		weight           DOUBLE PRECISION NOT NULL DEFAULT 0,
		dimensions       TEXT NOT NULL DEFAULT '',
		special_handling TEXT,
		status           TEXT NOT NULL,
		approved_by_id   TEXT,
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS delivery_requests (
		id                   TEXT PRIMARY KEY,
		booking_id           TEXT NOT NULL REFERENCES bookings(id),
		customer_id          TEXT NOT NULL,
		delivery_address     TEXT NOT NULL,
		preferred_date       TIMESTAMPTZ NOT NULL,
		scheduled_date       TIMESTAMPTZ,
		urgency              TEXT NOT NULL,
		status               TEXT NOT NULL,
		assigned_driver      TEXT,
		tracking_number      TEXT NOT NULL UNIQUE,
		special_instructions TEXT,
		delivery_notes       TEXT,
		delivered_at         TIMESTAMPTZ,
		created_at           TIMESTAMPTZ NOT NULL,
		updated_at           TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS invoices (
		id             TEXT PRIMARY KEY,
		booking_id     TEXT NOT NULL,
		customer_id    TEXT NOT NULL,
		invoice_number TEXT NOT NULL,
		amount         DOUBLE PRECISION NOT NULL,
		status         TEXT NOT NULL,
		due_date       TIMESTAMPTZ NOT NULL,
		paid_at        TIMESTAMPTZ,
		payment_method TEXT,
		transaction_id TEXT,
		notes          TEXT,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS invoices_number_idx ON invoices (invoice_number)`,
	`CREATE INDEX IF NOT EXISTS invoices_status_due_idx ON invoices (status, due_date)`,

	`CREATE TABLE IF NOT EXISTS invoice_sequences (
		period     TEXT PRIMARY KEY,
		last_value INTEGER NOT NULL
	)`,
}

// InitSchema creates missing tables and indexes. Statements are idempotent.
func (db *Database) InitSchema(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d failed: %w", i+1, err)
		}
	}
	db.logger.Info("Database schema ready", zap.Int("statements", len(schema)))
	return nil
}
