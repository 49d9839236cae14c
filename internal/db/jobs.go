package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/promo-radar/internal/textutil"
	"github.com/jonathan/promo-radar/internal/types"
)

const jobColumns = `id, run_id, job_type, company, event_id, status, detail,
	last_error, retry_count, started_at, finished_at`

func scanJob(row pgx.Row) (*types.Job, error) {
	var j types.Job
	err := row.Scan(
		&j.ID, &j.RunID, &j.Type, &j.Company, &j.EventID, &j.Status,
		&j.Detail, &j.Error, &j.RetryCount, &j.StartedAt, &j.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// CreateJob records one unit of pipeline work and returns its ID. Jobs
// begin pending; StartJob moves them to running when work begins.
func (db *DB) CreateJob(ctx context.Context, runID, jobType, company string, eventID *int64) (int64, error) {
	var id int64
	err := db.pool.QueryRow(ctx,
		`INSERT INTO jobs (run_id, job_type, company, event_id, status)
		 VALUES ($1, $2, $3, $4, 'pending')
		 RETURNING id`,
		runID, jobType, company, eventID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create job: %w", err)
	}
	return id, nil
}

// StartJob transitions a pending job to running. The status guard keeps a
// finished job from ever regressing.
func (db *DB) StartJob(ctx context.Context, id int64) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE jobs SET status = 'running' WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("failed to start job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %d not pending", id)
	}
	return nil
}

// UpdateJob finishes a job. retry_count increments inside the same UPDATE
// on a transition into failed, so concurrent writers cannot double-count.
func (db *DB) UpdateJob(ctx context.Context, id int64, status, detail, jobErr string) error {
	// Rune-based cut: a byte slice could split a multibyte character and
	// hand Postgres invalid UTF-8.
	jobErr = textutil.Truncate(jobErr, 500)
	tag, err := db.pool.Exec(ctx,
		`UPDATE jobs SET
			status = $1,
			detail = $2,
			last_error = $3,
			retry_count = retry_count + CASE WHEN $1 = 'failed' AND status <> 'failed' THEN 1 ELSE 0 END,
			finished_at = NOW()
		 WHERE id = $4`,
		status, detail, jobErr, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %d not found", id)
	}
	return nil
}

// ListJobs returns recent jobs, optionally filtered by run ID, newest first.
func (db *DB) ListJobs(ctx context.Context, runID string, limit int) ([]types.Job, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE ($1 = '' OR run_id = $1)
		 ORDER BY id DESC
		 LIMIT $2`, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []types.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// JobStats summarizes job outcomes per type and status.
func (db *DB) JobStats(ctx context.Context) (map[string]map[string]int, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT job_type, status, COUNT(*) FROM jobs GROUP BY job_type, status`)
	if err != nil {
		return nil, fmt.Errorf("failed to get job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]map[string]int)
	for rows.Next() {
		var jobType, status string
		var count int
		if err := rows.Scan(&jobType, &status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan job stats: %w", err)
		}
		if stats[jobType] == nil {
			stats[jobType] = make(map[string]int)
		}
		stats[jobType][status] = count
	}
	return stats, rows.Err()
}
