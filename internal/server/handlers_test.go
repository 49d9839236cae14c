package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/promo-radar/internal/pipeline"
	"github.com/jonathan/promo-radar/internal/types"
)

type fakePipeline struct {
	mu       sync.Mutex
	ingests  []string
	enriches []int
	gate     chan struct{}
	progress pipeline.Progress
}

func (f *fakePipeline) RunIngest(ctx context.Context, company string) (pipeline.IngestResult, error) {
	f.mu.Lock()
	f.ingests = append(f.ingests, company)
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	return pipeline.IngestResult{RunID: "run-1", Ingested: 3}, nil
}

func (f *fakePipeline) RunExtractAndEnrich(ctx context.Context, limit int) (pipeline.EnrichResult, error) {
	f.mu.Lock()
	f.enriches = append(f.enriches, limit)
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	return pipeline.EnrichResult{RunID: "run-2", Succeeded: 1}, nil
}

func (f *fakePipeline) Progress() pipeline.Progress { return f.progress }

func (f *fakePipeline) ingestCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ingests...)
}

func (f *fakePipeline) enrichCalls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.enriches...)
}

type fakeServerStore struct {
	events  map[int64]*types.Event
	jobs    []types.Job
	locked  map[int64]bool
	edits   map[int64][]types.Edit
	pingErr error
}

func newFakeServerStore() *fakeServerStore {
	return &fakeServerStore{
		events: make(map[int64]*types.Event),
		locked: make(map[int64]bool),
		edits:  make(map[int64][]types.Edit),
	}
}

func (s *fakeServerStore) GetEvent(ctx context.Context, id int64) (*types.Event, error) {
	return s.events[id], nil
}

func (s *fakeServerStore) ListEvents(ctx context.Context, company, status string, limit int) ([]types.Event, error) {
	var out []types.Event
	for _, ev := range s.events {
		if company != "" && ev.Company != company {
			continue
		}
		out = append(out, *ev)
	}
	return out, nil
}

func (s *fakeServerStore) GetSections(ctx context.Context, eventID int64) (map[types.SectionKind][]string, error) {
	return map[types.SectionKind][]string{types.SectionBenefitDetail: {"5% 캐시백"}}, nil
}

func (s *fakeServerStore) EventInsights(ctx context.Context, eventID int64) ([]types.Insight, error) {
	return []types.Insight{{EventID: eventID, Source: types.InsightSourceRule}}, nil
}

func (s *fakeServerStore) SetLocked(ctx context.Context, id int64, locked bool) error {
	s.locked[id] = locked
	return nil
}

func (s *fakeServerStore) RecordEdit(ctx context.Context, eventID int64, edit types.Edit) error {
	s.edits[eventID] = append(s.edits[eventID], edit)
	return nil
}

func (s *fakeServerStore) ListEdits(ctx context.Context, eventID int64) ([]types.Edit, error) {
	return s.edits[eventID], nil
}

func (s *fakeServerStore) ListJobs(ctx context.Context, runID string, limit int) ([]types.Job, error) {
	return s.jobs, nil
}

func (s *fakeServerStore) JobStats(ctx context.Context) (map[string]map[string]int, error) {
	return map[string]map[string]int{"ingest": {"success": 4}}, nil
}

func (s *fakeServerStore) Ping(ctx context.Context) error { return s.pingErr }

func newTestServer(store Store, p Pipeline) *Server {
	return New(Config{Addr: ":0", EnrichLimit: 50}, store, p, nil)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func waitForCalls(t *testing.T, count func() int, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if count() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d background calls", want)
}

func TestHandleIngest_StartsBackgroundRun(t *testing.T) {
	p := &fakePipeline{}
	s := newTestServer(newFakeServerStore(), p)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest?company=shinhan", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "started", body["status"])
	assert.Equal(t, "ingest", body["phase"])

	waitForCalls(t, func() int { return len(p.ingestCalls()) }, 1)
	assert.Equal(t, []string{"shinhan"}, p.ingestCalls())
}

func TestHandleIngest_UnknownCompany(t *testing.T) {
	p := &fakePipeline{}
	s := newTestServer(newFakeServerStore(), p)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest?company=visa", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, p.ingestCalls())
}

func TestHandleEnrich_ConflictWhileRunning(t *testing.T) {
	p := &fakePipeline{gate: make(chan struct{})}
	s := newTestServer(newFakeServerStore(), p)

	first := httptest.NewRecorder()
	s.Handler().ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/enrich", nil))
	assert.Equal(t, http.StatusAccepted, first.Code)

	waitForCalls(t, func() int { return len(p.enrichCalls()) }, 1)

	second := httptest.NewRecorder()
	s.Handler().ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/enrich", nil))
	assert.Equal(t, http.StatusConflict, second.Code)

	close(p.gate)
}

func TestHandleEnrich_LimitDefaultsAndCaps(t *testing.T) {
	p := &fakePipeline{}
	s := newTestServer(newFakeServerStore(), p)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/enrich", nil))
	require.Equal(t, http.StatusAccepted, w.Code)
	waitForCalls(t, func() int { return len(p.enrichCalls()) }, 1)

	// the background slot frees when the first goroutine exits, so retry
	// until the second trigger is admitted
	deadline := time.Now().Add(2 * time.Second)
	for {
		w = httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/enrich?limit=9999", nil))
		if w.Code == http.StatusAccepted {
			break
		}
		require.True(t, time.Now().Before(deadline), "second trigger never admitted")
		time.Sleep(5 * time.Millisecond)
	}
	waitForCalls(t, func() int { return len(p.enrichCalls()) }, 2)

	calls := p.enrichCalls()
	assert.Equal(t, 50, calls[0], "default limit")
	assert.Equal(t, 500, calls[1], "capped limit")
}

func TestHandleProgress(t *testing.T) {
	p := &fakePipeline{progress: pipeline.Progress{RunID: "abc", Running: true, Phase: "ingest", Processed: 2, Total: 4}}
	s := newTestServer(newFakeServerStore(), p)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/progress", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "abc", body["run_id"])
	assert.Equal(t, true, body["running"])
	assert.Equal(t, float64(2), body["processed"])
}

func TestHandleGetEvent(t *testing.T) {
	store := newFakeServerStore()
	store.events[5] = &types.Event{ID: 5, Company: "신한카드", Title: "여름 캐시백", URL: "https://example.com/5"}
	s := newTestServer(store, &fakePipeline{})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events/5", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	event := body["event"].(map[string]any)
	assert.Equal(t, "여름 캐시백", event["title"])
	assert.NotNil(t, body["sections"])
	assert.NotNil(t, body["insights"])
}

func TestHandleGetEvent_NotFound(t *testing.T) {
	s := newTestServer(newFakeServerStore(), &fakePipeline{})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events/99", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGetEvent_InvalidID(t *testing.T) {
	s := newTestServer(newFakeServerStore(), &fakePipeline{})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleLockEvent(t *testing.T) {
	store := newFakeServerStore()
	store.events[5] = &types.Event{ID: 5, Locked: false}
	s := newTestServer(store, &fakePipeline{})

	payload := `{"locked": true, "editor": "analyst", "reason": "manual curation"}`
	req := httptest.NewRequest(http.MethodPost, "/api/events/5/lock", bytes.NewBufferString(payload))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, store.locked[5])

	require.Len(t, store.edits[5], 1)
	edit := store.edits[5][0]
	assert.Equal(t, "locked", edit.Field)
	assert.Equal(t, "false", edit.OldValue)
	assert.Equal(t, "true", edit.NewValue)
	assert.Equal(t, "analyst", edit.Editor)
}

func TestHandleLockEvent_MissingEditor(t *testing.T) {
	store := newFakeServerStore()
	store.events[5] = &types.Event{ID: 5}
	s := newTestServer(store, &fakePipeline{})

	req := httptest.NewRequest(http.MethodPost, "/api/events/5/lock", bytes.NewBufferString(`{"locked": true}`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, store.locked[5])
}

func TestHandleJobStats(t *testing.T) {
	s := newTestServer(newFakeServerStore(), &fakePipeline{})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/jobs/stats", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	ingest := body["ingest"].(map[string]any)
	assert.Equal(t, float64(4), ingest["success"])
}

func TestHandleHealth_Degraded(t *testing.T) {
	store := newFakeServerStore()
	store.pingErr = context.DeadlineExceeded
	s := newTestServer(store, &fakePipeline{})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	store.pingErr = nil
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
