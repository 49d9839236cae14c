package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/promo-radar/internal/types"
)

// SaveSnapshot appends an extraction capture for an event. Snapshots are
// never updated or deleted; they are the extraction history.
func (db *DB) SaveSnapshot(ctx context.Context, eventID int64, res *types.ExtractionResult) error {
	extracted, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal extraction result: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO event_snapshots (event_id, raw_text, extracted, latency_ms)
		 VALUES ($1, $2, $3, $4)`,
		eventID, res.RawText, extracted, res.Latency.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// SnapshotCount returns how many captures exist for an event.
func (db *DB) SnapshotCount(ctx context.Context, eventID int64) (int, error) {
	var n int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_snapshots WHERE event_id = $1`, eventID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}
