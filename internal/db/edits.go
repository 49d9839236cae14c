package db

import (
	"context"
	"fmt"

	"github.com/jonathan/promo-radar/internal/types"
)

// RecordEdit appends a manual-correction audit entry for an event field.
func (db *DB) RecordEdit(ctx context.Context, eventID int64, edit types.Edit) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO event_edits (event_id, field_name, old_value, new_value, editor, reason)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		eventID, edit.Field, edit.OldValue, edit.NewValue, edit.Editor, edit.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to record edit: %w", err)
	}
	return nil
}

// ListEdits returns the manual-edit history for an event, newest first.
func (db *DB) ListEdits(ctx context.Context, eventID int64) ([]types.Edit, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT field_name, old_value, new_value, editor, reason, edited_at
		 FROM event_edits WHERE event_id = $1 ORDER BY id DESC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list edits: %w", err)
	}
	defer rows.Close()

	var edits []types.Edit
	for rows.Next() {
		var e types.Edit
		if err := rows.Scan(&e.Field, &e.OldValue, &e.NewValue, &e.Editor, &e.Reason, &e.EditedAt); err != nil {
			return nil, fmt.Errorf("failed to scan edit: %w", err)
		}
		edits = append(edits, e)
	}
	return edits, rows.Err()
}
