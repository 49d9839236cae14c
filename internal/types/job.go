package types

import "time"

// Job types.
const (
	JobTypeIngest = "ingest"
	JobTypeEnrich = "extract_enrich"
)

// Job statuses. A job is created pending, moves to running when work
// starts, and finishes exactly once as success or failed; retry_count
// counts transitions into failed.
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusSuccess = "success"
	JobStatusFailed  = "failed"
)

// Job records one unit of pipeline work: a per-company ingest crawl or a
// per-event extract-enrich pass. RunID groups jobs belonging to one
// pipeline invocation.
type Job struct {
	ID         int64      `json:"id"`
	RunID      string     `json:"run_id"`
	Type       string     `json:"job_type"`
	Company    string     `json:"company,omitempty"`
	EventID    *int64     `json:"event_id,omitempty"`
	Status     string     `json:"status"`
	Detail     string     `json:"detail,omitempty"`
	Error      string     `json:"error,omitempty"`
	RetryCount int        `json:"retry_count"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
