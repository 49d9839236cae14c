package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/jonathan/promo-radar/internal/connectors"
	"github.com/jonathan/promo-radar/internal/pipeline"
)

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// handleIngest starts a crawl of one company (?company=) or all companies
// in the background. Returns 409 when a run is already in flight.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	company := r.URL.Query().Get("company")
	if company != "" {
		if _, err := connectors.ByName(company); err != nil {
			s.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	started := s.background.TryGo(func() error {
		result, err := s.runner.RunIngest(context.Background(), company)
		if err != nil {
			log.Printf("[server] ingest run failed: %v", err)
			return nil
		}
		log.Printf("[server] ingest run %s done: ingested=%d skipped=%d",
			result.RunID, result.Ingested, result.Skipped)
		return nil
	})
	if !started {
		s.errorResponse(w, http.StatusConflict, "a run is already in progress")
		return
	}

	s.jsonResponse(w, http.StatusAccepted, map[string]string{
		"status":   "started",
		"phase":    "ingest",
		"progress": "/api/progress",
	})
}

// handleEnrich starts an extract-enrich pass over pending events in the
// background. ?limit= caps the batch.
func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", s.defLimit, 500)

	started := s.background.TryGo(func() error {
		result, err := s.runner.RunExtractAndEnrich(context.Background(), limit)
		if err != nil {
			if !errors.Is(err, pipeline.ErrBusy) {
				log.Printf("[server] enrich run failed: %v", err)
			}
			return nil
		}
		log.Printf("[server] enrich run %s done: ok=%d failed=%d ai=%d",
			result.RunID, result.Succeeded, result.Failed, result.AIEnriched)
		return nil
	})
	if !started {
		s.errorResponse(w, http.StatusConflict, "a run is already in progress")
		return
	}

	s.jsonResponse(w, http.StatusAccepted, map[string]string{
		"status":   "started",
		"phase":    "extract_enrich",
		"progress": "/api/progress",
	})
}

// handleProgress reports the in-flight (or last finished) run.
func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.runner.Progress())
}
