package server

import (
	"net/http"
)

// handleListJobs lists pipeline jobs, filterable by ?run_id=.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	limit := parseQueryInt(r, "limit", 100, 500)

	jobs, err := s.store.ListJobs(r.Context(), runID, limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// handleJobStats returns job counts grouped by type and status.
func (s *Server) handleJobStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.JobStats(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}
