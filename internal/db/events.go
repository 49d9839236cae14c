package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/promo-radar/internal/types"
)

const eventColumns = `id, url, company, category, title, period, period_start, period_end,
	benefit_type, benefit_value, benefit_amount, benefit_pct, conditions, target_segment,
	threat_level, summary, raw_text, status, locked, created_at, updated_at`

func scanEvent(row pgx.Row) (*types.Event, error) {
	var e types.Event
	err := row.Scan(
		&e.ID, &e.URL, &e.Company, &e.Category, &e.Title, &e.Period,
		&e.PeriodStart, &e.PeriodEnd, &e.BenefitType, &e.BenefitValue,
		&e.BenefitAmount, &e.BenefitPct, &e.Conditions, &e.TargetSegment,
		&e.ThreatLevel, &e.Summary, &e.RawText, &e.Status, &e.Locked,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// InsertEventIfAbsent stores a crawled event unless its canonical URL is
// already known. Returns the event ID and whether a new row was created.
// Existing rows are never touched here; only extract-enrich mutates them.
func (db *DB) InsertEventIfAbsent(ctx context.Context, ev types.RawEvent) (int64, bool, error) {
	var id int64
	err := db.pool.QueryRow(ctx,
		`INSERT INTO events (url, company, category, title, period, benefit_type,
			benefit_value, conditions, target_segment, threat_level, summary, raw_text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (url) DO NOTHING
		 RETURNING id`,
		ev.SourceURL, ev.Company, ev.Category, ev.Title, ev.Period, ev.BenefitType,
		ev.BenefitValue, ev.Conditions, ev.TargetSegment, ev.ThreatLevel, ev.Summary,
		ev.RawText,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if err != pgx.ErrNoRows {
		return 0, false, fmt.Errorf("failed to insert event: %w", err)
	}

	// Conflict path: look up the existing row's ID.
	err = db.pool.QueryRow(ctx,
		`SELECT id FROM events WHERE url = $1`, ev.SourceURL,
	).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("failed to resolve existing event: %w", err)
	}
	return id, false, nil
}

// GetEvent retrieves an event by ID. Returns nil when not found.
func (db *DB) GetEvent(ctx context.Context, id int64) (*types.Event, error) {
	e, err := scanEvent(db.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

// PendingExtraction returns unlocked events that have never been enriched
// with a snapshot, oldest first.
func (db *DB) PendingExtraction(ctx context.Context, limit int) ([]types.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events e
		 WHERE NOT e.locked
		   AND NOT EXISTS (SELECT 1 FROM event_snapshots s WHERE s.event_id = e.id)
		 ORDER BY e.id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending events: %w", err)
	}
	defer rows.Close()

	var events []types.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// ListEvents returns events filtered by company and/or status; empty
// filters match everything. Newest first.
func (db *DB) ListEvents(ctx context.Context, company, status string, limit int) ([]types.Event, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE ($1 = '' OR company = $1)
		   AND ($2 = '' OR status = $2)
		 ORDER BY id DESC
		 LIMIT $3`, company, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []types.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// IsLocked reports whether an event is protected from pipeline writes.
func (db *DB) IsLocked(ctx context.Context, id int64) (bool, error) {
	var locked bool
	err := db.pool.QueryRow(ctx,
		`SELECT locked FROM events WHERE id = $1`, id,
	).Scan(&locked)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, fmt.Errorf("event %d not found", id)
		}
		return false, fmt.Errorf("failed to check lock: %w", err)
	}
	return locked, nil
}

// SetLocked toggles the curation lock on an event.
func (db *DB) SetLocked(ctx context.Context, id int64, locked bool) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE events SET locked = $1, updated_at = NOW() WHERE id = $2`,
		locked, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set lock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event %d not found", id)
	}
	return nil
}

// UpdateEvent applies the normalized extraction output. The caller resolves
// preserve-on-empty merging; this writes the update verbatim.
func (db *DB) UpdateEvent(ctx context.Context, id int64, u types.EventUpdate) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE events SET
			title = $1, period = $2, period_start = $3, period_end = $4,
			benefit_type = $5, benefit_value = $6, benefit_amount = $7, benefit_pct = $8,
			conditions = $9, target_segment = $10, threat_level = $11, category = $12,
			summary = $13, raw_text = $14, status = $15, updated_at = NOW()
		 WHERE id = $16 AND NOT locked`,
		u.Title, u.Period, u.PeriodStart, u.PeriodEnd,
		u.BenefitType, u.BenefitValue, u.BenefitAmount, u.BenefitPct,
		u.Conditions, u.TargetSegment, u.ThreatLevel, u.Category,
		u.Summary, u.RawText, u.Status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event %d not found or locked", id)
	}
	return nil
}
