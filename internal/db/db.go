// Package db provides PostgreSQL persistence for events, sections,
// insights, snapshots, edits, and job bookkeeping.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping verifies the pool can still reach the database.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		url TEXT NOT NULL UNIQUE,
		company TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		period TEXT NOT NULL DEFAULT '',
		period_start DATE,
		period_end DATE,
		benefit_type TEXT NOT NULL DEFAULT '',
		benefit_value TEXT NOT NULL DEFAULT '',
		benefit_amount BIGINT NOT NULL DEFAULT 0,
		benefit_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
		conditions TEXT NOT NULL DEFAULT '',
		target_segment TEXT NOT NULL DEFAULT '',
		threat_level TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		raw_text TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'unknown',
		locked BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_company ON events (company)`,
	`CREATE INDEX IF NOT EXISTS idx_events_status ON events (status)`,
	`CREATE TABLE IF NOT EXISTS event_snapshots (
		id BIGSERIAL PRIMARY KEY,
		event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		raw_text TEXT NOT NULL DEFAULT '',
		extracted JSONB,
		latency_ms INT NOT NULL DEFAULT 0,
		captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_event_snapshots_event ON event_snapshots (event_id)`,
	`CREATE TABLE IF NOT EXISTS event_sections (
		id BIGSERIAL PRIMARY KEY,
		event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		section_type TEXT NOT NULL,
		content TEXT NOT NULL,
		sort_order INT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_event_sections_event ON event_sections (event_id)`,
	`CREATE TABLE IF NOT EXISTS event_insights (
		id BIGSERIAL PRIMARY KEY,
		event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		source TEXT NOT NULL,
		benefit_level TEXT NOT NULL DEFAULT '',
		benefit_score REAL NOT NULL DEFAULT 0,
		target_clarity TEXT NOT NULL DEFAULT '',
		objective_tags JSONB,
		target_tags JSONB,
		channel_tags JSONB,
		competitive_points JSONB,
		promo_strategies JSONB,
		threat_level TEXT NOT NULL DEFAULT '',
		threat_reason TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		takeaway TEXT NOT NULL DEFAULT '',
		confidence REAL NOT NULL DEFAULT 0,
		section_coverage REAL NOT NULL DEFAULT 0,
		generated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (event_id, source)
	)`,
	`CREATE TABLE IF NOT EXISTS event_edits (
		id BIGSERIAL PRIMARY KEY,
		event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		field_name TEXT NOT NULL,
		old_value TEXT NOT NULL DEFAULT '',
		new_value TEXT NOT NULL DEFAULT '',
		editor TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		edited_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id BIGSERIAL PRIMARY KEY,
		run_id TEXT NOT NULL DEFAULT '',
		job_type TEXT NOT NULL,
		company TEXT NOT NULL DEFAULT '',
		event_id BIGINT REFERENCES events(id) ON DELETE SET NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		detail TEXT NOT NULL DEFAULT '',
		last_error TEXT NOT NULL DEFAULT '',
		retry_count INT NOT NULL DEFAULT 0,
		started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		finished_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_run ON jobs (run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status)`,
}

// InitSchema creates all tables and indexes if they do not exist.
func (db *DB) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
