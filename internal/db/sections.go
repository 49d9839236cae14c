package db

import (
	"context"
	"fmt"

	"github.com/jonathan/promo-radar/internal/types"
)

// ReplaceSections swaps out all stored sections for an event in one
// transaction. Sections are snapshots of the latest extraction, so a
// wholesale delete-then-insert keeps them consistent with it.
func (db *DB) ReplaceSections(ctx context.Context, eventID int64, sections map[types.SectionKind][]string) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM event_sections WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to clear sections: %w", err)
	}

	for _, kind := range types.SectionKinds {
		for i, content := range sections[kind] {
			if _, err := tx.Exec(ctx,
				`INSERT INTO event_sections (event_id, section_type, content, sort_order)
				 VALUES ($1, $2, $3, $4)`,
				eventID, string(kind), content, i); err != nil {
				return fmt.Errorf("failed to insert section: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit sections: %w", err)
	}
	return nil
}

// GetSections returns an event's stored sections keyed by kind, in
// sort order.
func (db *DB) GetSections(ctx context.Context, eventID int64) (map[types.SectionKind][]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT section_type, content FROM event_sections
		 WHERE event_id = $1 ORDER BY section_type, sort_order`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sections: %w", err)
	}
	defer rows.Close()

	sections := make(map[types.SectionKind][]string)
	for rows.Next() {
		var kind, content string
		if err := rows.Scan(&kind, &content); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections[types.SectionKind(kind)] = append(sections[types.SectionKind(kind)], content)
	}
	return sections, rows.Err()
}
