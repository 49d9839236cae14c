// Package server provides the HTTP trigger and read API for the pipeline.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/promo-radar/internal/metrics"
	"github.com/jonathan/promo-radar/internal/pipeline"
	"github.com/jonathan/promo-radar/internal/types"
)

// Pipeline is the trigger surface the server exposes. *pipeline.Runner
// satisfies it.
type Pipeline interface {
	RunIngest(ctx context.Context, company string) (pipeline.IngestResult, error)
	RunExtractAndEnrich(ctx context.Context, limit int) (pipeline.EnrichResult, error)
	Progress() pipeline.Progress
}

// Store is the read and curation surface the server exposes. *db.DB
// satisfies it.
type Store interface {
	GetEvent(ctx context.Context, id int64) (*types.Event, error)
	ListEvents(ctx context.Context, company, status string, limit int) ([]types.Event, error)
	GetSections(ctx context.Context, eventID int64) (map[types.SectionKind][]string, error)
	EventInsights(ctx context.Context, eventID int64) ([]types.Insight, error)
	SetLocked(ctx context.Context, id int64, locked bool) error
	RecordEdit(ctx context.Context, eventID int64, edit types.Edit) error
	ListEdits(ctx context.Context, eventID int64) ([]types.Edit, error)
	ListJobs(ctx context.Context, runID string, limit int) ([]types.Job, error)
	JobStats(ctx context.Context) (map[string]map[string]int, error)
	Ping(ctx context.Context) error
}

// Server is the HTTP server wrapping the pipeline and store.
type Server struct {
	httpServer *http.Server
	store      Store
	runner     Pipeline
	metrics    *metrics.Metrics
	validate   *validator.Validate
	defLimit   int

	// background runs pipeline phases detached from the request;
	// SetLimit(1) makes TryGo the admission check for one run at a time.
	background *errgroup.Group
}

// Config holds server configuration.
type Config struct {
	Addr        string
	EnrichLimit int
}

// New wires a server around an already-connected store and runner.
func New(cfg Config, store Store, runner Pipeline, m *metrics.Metrics) *Server {
	s := &Server{
		store:    store,
		runner:   runner,
		metrics:  m,
		validate: validator.New(),
		defLimit: cfg.EnrichLimit,
	}
	s.background = new(errgroup.Group)
	s.background.SetLimit(1)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/ingest", s.handleIngest)
	mux.HandleFunc("POST /api/enrich", s.handleEnrich)
	mux.HandleFunc("GET /api/progress", s.handleProgress)

	mux.HandleFunc("GET /api/events", s.handleListEvents)
	mux.HandleFunc("GET /api/events/{id}", s.handleGetEvent)
	mux.HandleFunc("POST /api/events/{id}/lock", s.handleLockEvent)

	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.HandleFunc("GET /api/jobs/stats", s.handleJobStats)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.withLogging(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening and blocks until an interrupt, then shuts down
// gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[server] listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[server] error: %v", err)
		}
	}()

	<-stop
	log.Println("[server] shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Println("[server] stopped")
	return nil
}

// Handler exposes the configured handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[server] %s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth reports liveness plus store reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] encoding response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
