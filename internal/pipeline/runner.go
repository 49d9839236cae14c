// Package pipeline orchestrates the two phases of a run: ingest (listing
// crawl, insert-if-absent) and extract-enrich (detail extraction,
// normalization, hybrid insight, persistence), with per-job tracking.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/promo-radar/internal/browser"
	"github.com/jonathan/promo-radar/internal/connectors"
	"github.com/jonathan/promo-radar/internal/metrics"
	"github.com/jonathan/promo-radar/internal/types"
)

// ErrBusy is returned when a run is requested while another is in flight.
var ErrBusy = errors.New("a pipeline run is already in progress")

const ingestPerCompanyCap = 200

// Store is the persistence surface the pipeline needs. *db.DB satisfies it.
type Store interface {
	InsertEventIfAbsent(ctx context.Context, ev types.RawEvent) (int64, bool, error)
	PendingExtraction(ctx context.Context, limit int) ([]types.Event, error)
	IsLocked(ctx context.Context, id int64) (bool, error)
	UpdateEvent(ctx context.Context, id int64, u types.EventUpdate) error
	ReplaceSections(ctx context.Context, eventID int64, sections map[types.SectionKind][]string) error
	SaveInsight(ctx context.Context, eventID int64, insight types.Insight) error
	SaveSnapshot(ctx context.Context, eventID int64, res *types.ExtractionResult) error
	CreateJob(ctx context.Context, runID, jobType, company string, eventID *int64) (int64, error)
	StartJob(ctx context.Context, id int64) error
	UpdateJob(ctx context.Context, id int64, status, detail, jobErr string) error
}

// Extractor runs detail-page extraction. *extraction.Engine satisfies it.
type Extractor interface {
	Extract(ctx context.Context, session browser.Session, pageURL string) *types.ExtractionResult
}

// InsightGenerator produces an insight plus its source for an extraction.
// *insights.Generator satisfies it.
type InsightGenerator interface {
	Generate(ctx context.Context, res *types.ExtractionResult, company string) (types.Insight, string)
}

// SessionFactory opens a fresh browser session. Failure is fatal to a run.
type SessionFactory func(ctx context.Context) (browser.Session, error)

// ConnectorSet resolves company slugs to connectors. The package registry
// in internal/connectors is the production implementation.
type ConnectorSet interface {
	Names() []string
	ByName(name string) (connectors.Connector, error)
}

type registrySet struct{}

func (registrySet) Names() []string { return connectors.Names() }

func (registrySet) ByName(name string) (connectors.Connector, error) {
	return connectors.ByName(name)
}

// Progress is a polling snapshot of the run in flight (or the last one).
type Progress struct {
	RunID     string `json:"run_id,omitempty"`
	Running   bool   `json:"running"`
	Phase     string `json:"phase,omitempty"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

// IngestResult summarizes one ingest phase.
type IngestResult struct {
	RunID           string   `json:"run_id"`
	Ingested        int      `json:"ingested"`
	Skipped         int      `json:"skipped"`
	FailedCompanies []string `json:"failed_companies,omitempty"`
}

// EnrichResult summarizes one extract-enrich phase.
type EnrichResult struct {
	RunID      string `json:"run_id"`
	Processed  int    `json:"processed"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	AIEnriched int    `json:"ai_enriched"`
}

// Runner drives pipeline phases. At most one run is active at a time.
type Runner struct {
	store      Store
	newSession SessionFactory
	extractor  Extractor
	insights   InsightGenerator
	connectors ConnectorSet
	metrics    *metrics.Metrics

	mu       sync.Mutex
	progress Progress
}

// NewRunner wires a pipeline runner.
func NewRunner(store Store, factory SessionFactory, extractor Extractor, gen InsightGenerator, m *metrics.Metrics) *Runner {
	return &Runner{
		store:      store,
		newSession: factory,
		extractor:  extractor,
		insights:   gen,
		connectors: registrySet{},
		metrics:    m,
	}
}

// Progress returns a snapshot of the current (or last finished) run.
func (r *Runner) Progress() Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress
}

// begin claims the runner for a new run. Returns ErrBusy when taken.
func (r *Runner) begin(phase string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress.Running {
		return "", ErrBusy
	}
	runID := uuid.NewString()
	r.progress = Progress{RunID: runID, Running: true, Phase: phase}
	return runID, nil
}

func (r *Runner) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress.Running = false
}

func (r *Runner) setTotal(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress.Total = n
}

func (r *Runner) step(succeeded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress.Processed++
	if succeeded {
		r.progress.Succeeded++
	} else {
		r.progress.Failed++
	}
}

// RunIngest crawls listing pages for one company (or all when company is
// empty) and stores events whose canonical URL is new. A company's crawl
// failure is recorded on its job and the loop moves to the next company;
// only browser allocation aborts the run.
func (r *Runner) RunIngest(ctx context.Context, company string) (IngestResult, error) {
	runID, err := r.begin("ingest")
	if err != nil {
		return IngestResult{}, err
	}
	defer r.finish()

	result := IngestResult{RunID: runID}

	names := r.connectors.Names()
	if company != "" {
		if _, err := r.connectors.ByName(company); err != nil {
			return result, err
		}
		names = []string{company}
	}
	r.setTotal(len(names))

	session, err := r.newSession(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to open browser session: %w", err)
	}
	defer session.Close()

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		conn, err := r.connectors.ByName(name)
		if err != nil {
			return result, err
		}

		jobID, err := r.store.CreateJob(ctx, runID, types.JobTypeIngest, conn.Company(), nil)
		if err != nil {
			return result, fmt.Errorf("failed to create ingest job: %w", err)
		}
		if err := r.store.StartJob(ctx, jobID); err != nil {
			return result, fmt.Errorf("failed to start ingest job: %w", err)
		}

		raws, err := conn.Crawl(ctx, session)
		if err != nil {
			_ = r.store.UpdateJob(ctx, jobID, types.JobStatusFailed, "", err.Error())
			result.FailedCompanies = append(result.FailedCompanies, name)
			r.step(false)
			log.Printf("[pipeline][ingest] %s failed: %v", name, err)
			continue
		}

		if len(raws) > ingestPerCompanyCap {
			raws = raws[:ingestPerCompanyCap]
		}

		stored := 0
		for _, raw := range raws {
			_, created, err := r.store.InsertEventIfAbsent(ctx, raw)
			if err != nil {
				log.Printf("[pipeline][ingest] %s insert failed: %v", name, err)
				continue
			}
			if created {
				stored++
				r.count(func(m *metrics.Metrics) { m.EventsIngested.WithLabelValues(conn.Company()).Inc() })
			} else {
				r.count(func(m *metrics.Metrics) { m.EventsSkipped.WithLabelValues("duplicate").Inc() })
			}
		}
		result.Ingested += stored
		result.Skipped += len(raws) - stored

		detail := fmt.Sprintf("crawled=%d stored=%d", len(raws), stored)
		_ = r.store.UpdateJob(ctx, jobID, types.JobStatusSuccess, detail, "")
		r.step(true)
		log.Printf("[pipeline][ingest] %s: %d crawled, %d new", name, len(raws), stored)
	}

	return result, nil
}

// RunExtractAndEnrich processes events that have never been extracted:
// detail extraction, preserve-on-empty normalization, hybrid insight, and
// persistence. One event's failure marks its job and the batch continues;
// cancellation is honored between events, never mid-event.
func (r *Runner) RunExtractAndEnrich(ctx context.Context, limit int) (EnrichResult, error) {
	runID, err := r.begin("extract_enrich")
	if err != nil {
		return EnrichResult{}, err
	}
	defer r.finish()

	result := EnrichResult{RunID: runID}

	pending, err := r.store.PendingExtraction(ctx, limit)
	if err != nil {
		return result, fmt.Errorf("failed to select pending events: %w", err)
	}
	r.setTotal(len(pending))
	if len(pending) == 0 {
		log.Printf("[pipeline][enrich] nothing pending")
		return result, nil
	}

	session, err := r.newSession(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to open browser session: %w", err)
	}
	defer session.Close()

	log.Printf("[pipeline][enrich] %d events pending", len(pending))

	for i := range pending {
		event := pending[i]

		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.Processed++

		if !strings.HasPrefix(event.URL, "http") {
			result.Failed++
			r.step(false)
			continue
		}

		jobID, err := r.store.CreateJob(ctx, runID, types.JobTypeEnrich, event.Company, &event.ID)
		if err != nil {
			return result, fmt.Errorf("failed to create enrich job: %w", err)
		}
		if err := r.store.StartJob(ctx, jobID); err != nil {
			return result, fmt.Errorf("failed to start enrich job: %w", err)
		}

		// Lock state is re-read here, not trusted from batch selection,
		// so a manual lock set mid-run still wins.
		locked, err := r.store.IsLocked(ctx, event.ID)
		if err != nil {
			_ = r.store.UpdateJob(ctx, jobID, types.JobStatusFailed, "", fmt.Sprintf("lock check failed: %v", err))
			result.Failed++
			r.count(func(m *metrics.Metrics) { m.EnrichFailure.Inc() })
			r.step(false)
			log.Printf("[pipeline][enrich] FAIL id=%d: lock check: %v", event.ID, err)
			continue
		}
		if locked {
			_ = r.store.UpdateJob(ctx, jobID, types.JobStatusSuccess, "skipped: locked", "")
			r.count(func(m *metrics.Metrics) { m.EventsSkipped.WithLabelValues("locked").Inc() })
			result.Succeeded++
			r.step(true)
			continue
		}

		aiUsed, err := r.enrichOne(ctx, session, &event)
		if err != nil {
			_ = r.store.UpdateJob(ctx, jobID, types.JobStatusFailed, "", err.Error())
			result.Failed++
			r.count(func(m *metrics.Metrics) { m.EnrichFailure.Inc() })
			r.step(false)
			log.Printf("[pipeline][enrich] FAIL id=%d: %v", event.ID, err)
			continue
		}

		if aiUsed {
			result.AIEnriched++
		}
		result.Succeeded++
		_ = r.store.UpdateJob(ctx, jobID, types.JobStatusSuccess, "", "")
		r.count(func(m *metrics.Metrics) { m.EnrichSuccess.Inc() })
		r.step(true)
	}

	log.Printf("[pipeline][enrich] done: processed=%d succeeded=%d failed=%d ai=%d",
		result.Processed, result.Succeeded, result.Failed, result.AIEnriched)
	return result, nil
}

// enrichOne runs the full extract-normalize-insight-persist sequence for
// a single event. Reports whether the AI analyzer produced the insight.
func (r *Runner) enrichOne(ctx context.Context, session browser.Session, event *types.Event) (bool, error) {
	res := r.extractor.Extract(ctx, session, event.URL)
	r.count(func(m *metrics.Metrics) { m.ExtractLatency.Observe(res.Latency.Seconds()) })

	update := NormalizeUpdate(res, event)

	insight, source := r.insights.Generate(ctx, res, event.Company)
	if source == types.InsightSourceAI {
		applyAIFields(&update, insight)
	}
	r.count(func(m *metrics.Metrics) { m.InsightsTotal.WithLabelValues(source).Inc() })

	if err := r.store.UpdateEvent(ctx, event.ID, update); err != nil {
		return false, err
	}
	if len(res.Sections) > 0 {
		if err := r.store.ReplaceSections(ctx, event.ID, res.Sections); err != nil {
			return false, err
		}
	}
	if err := r.store.SaveInsight(ctx, event.ID, insight); err != nil {
		return false, err
	}
	if err := r.store.SaveSnapshot(ctx, event.ID, res); err != nil {
		return false, err
	}

	log.Printf("[pipeline][enrich] OK id=%d src=%s %s", event.ID, source, head(event.Title, 40))
	return source == types.InsightSourceAI, nil
}

// count applies a metric update when metrics are wired.
func (r *Runner) count(fn func(*metrics.Metrics)) {
	if r.metrics != nil {
		fn(r.metrics)
	}
}

func head(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
