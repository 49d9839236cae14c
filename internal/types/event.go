// Package types defines the core value types shared across the pipeline:
// raw connector output, extraction results, insights, and job bookkeeping.
package types

import "time"

// ThreatLevel buckets how aggressive a competitor promotion is.
const (
	ThreatHigh = "High"
	ThreatMid  = "Mid"
	ThreatLow  = "Low"
)

// Event status values derived from the parsed period end date.
const (
	StatusActive  = "active"
	StatusEnded   = "ended"
	StatusUnknown = "unknown"
)

// RawEvent is the normalized output of a connector crawl. It is ephemeral:
// the pipeline persists it as an Event row and discards it.
// RawEvents are built only through connectors.Base.BuildEvent, which rejects
// empty URLs/titles and infers category and threat level from the text.
type RawEvent struct {
	SourceURL     string `json:"url"`
	Company       string `json:"company"`
	Title         string `json:"title"`
	Period        string `json:"period,omitempty"`
	Category      string `json:"category,omitempty"`
	BenefitType   string `json:"benefit_type,omitempty"`
	BenefitValue  string `json:"benefit_value,omitempty"`
	Conditions    string `json:"conditions,omitempty"`
	TargetSegment string `json:"target_segment,omitempty"`
	ThreatLevel   string `json:"threat_level,omitempty"`
	Summary       string `json:"one_line_summary,omitempty"`
	RawText       string `json:"raw_text,omitempty"`
}

// Event is the persisted, long-lived form of a promotion. One row per
// canonical URL; created by ingest, mutated only by extract-enrich.
type Event struct {
	ID            int64      `json:"id"`
	URL           string     `json:"url"`
	Company       string     `json:"company"`
	Category      string     `json:"category,omitempty"`
	Title         string     `json:"title"`
	Period        string     `json:"period,omitempty"`
	PeriodStart   *time.Time `json:"period_start,omitempty"`
	PeriodEnd     *time.Time `json:"period_end,omitempty"`
	BenefitType   string     `json:"benefit_type,omitempty"`
	BenefitValue  string     `json:"benefit_value,omitempty"`
	BenefitAmount int64      `json:"benefit_amount,omitempty"`
	BenefitPct    float64    `json:"benefit_pct,omitempty"`
	Conditions    string     `json:"conditions,omitempty"`
	TargetSegment string     `json:"target_segment,omitempty"`
	ThreatLevel   string     `json:"threat_level,omitempty"`
	Summary       string     `json:"one_line_summary,omitempty"`
	RawText       string     `json:"raw_text,omitempty"`
	Status        string     `json:"status"`
	Locked        bool       `json:"locked"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// EventUpdate carries the normalized extraction output applied to an Event.
// Empty string fields mean "keep the existing value"; the pipeline fills them
// from the prior Event state before persisting.
type EventUpdate struct {
	Title         string
	Period        string
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
	BenefitType   string
	BenefitValue  string
	BenefitAmount int64
	BenefitPct    float64
	Conditions    string
	TargetSegment string
	ThreatLevel   string
	Category      string
	Summary       string
	RawText       string
	Status        string
}

// Snapshot is one immutable extraction capture for an Event.
type Snapshot struct {
	ID         int64     `json:"id"`
	EventID    int64     `json:"event_id"`
	RawText    string    `json:"raw_text,omitempty"`
	Extracted  []byte    `json:"-"`
	LatencyMS  int64     `json:"latency_ms"`
	CapturedAt time.Time `json:"captured_at"`
}

// Section is one classified chunk of marketing text belonging to an Event.
// The full set for an Event is replaced on every extraction.
type Section struct {
	ID        int64       `json:"id"`
	EventID   int64       `json:"event_id"`
	Kind      SectionKind `json:"section_type"`
	Content   string      `json:"content"`
	SortOrder int         `json:"sort_order"`
}

// Edit is one manual-correction audit record for an Event field.
type Edit struct {
	ID       int64     `json:"id"`
	EventID  int64     `json:"event_id"`
	Field    string    `json:"field_name"`
	OldValue string    `json:"old_value,omitempty"`
	NewValue string    `json:"new_value,omitempty"`
	Editor   string    `json:"editor"`
	Reason   string    `json:"reason,omitempty"`
	EditedAt time.Time `json:"edited_at"`
}
