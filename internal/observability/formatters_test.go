package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/promo-radar/internal/pipeline"
	"github.com/jonathan/promo-radar/internal/types"
)

func TestPrintIngestResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintIngestResult(pipeline.IngestResult{
		RunID:           "run-1",
		Ingested:        12,
		Skipped:         3,
		FailedCompanies: []string{"samsung"},
	})

	out := buf.String()
	assert.Contains(t, out, "INGEST RESULT")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "samsung")
}

func TestPrintEnrichResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintEnrichResult(pipeline.EnrichResult{
		RunID:      "run-2",
		Processed:  10,
		Succeeded:  8,
		Failed:     2,
		AIEnriched: 5,
	})

	out := buf.String()
	assert.Contains(t, out, "EXTRACT & ENRICH RESULT")
	assert.Contains(t, out, "Processed:  10")
	assert.Contains(t, out, "AI-based:   5")
}

func TestPrintEvents_TruncatesLongLists(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	events := make([]types.Event, 8)
	for i := range events {
		events[i] = types.Event{ID: int64(i + 1), Company: "신한카드", Title: "이벤트", Status: "active"}
	}
	p.PrintEvents(events)

	out := buf.String()
	assert.Contains(t, out, "Total events: 8")
	assert.Contains(t, out, "... and 3 more events")
}

func TestPrintEvents_EmptyPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintEvents(nil)
	assert.Empty(t, buf.String())
}

func TestPrintInsight(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintInsight(types.Insight{
		Source:            types.InsightSourceRule,
		BenefitLevel:      types.BenefitLevelMid,
		ThreatLevel:       types.ThreatMid,
		TargetClarity:     "보통",
		Summary:           "신한카드, 캐시백 이벤트",
		CompetitivePoints: []string{"캐시백 혜택"},
		Confidence:        0.5,
	})

	out := buf.String()
	assert.Contains(t, out, "INSIGHT")
	assert.Contains(t, out, "rule")
	assert.Contains(t, out, "캐시백 혜택")
	assert.Contains(t, out, "0.50")
}
