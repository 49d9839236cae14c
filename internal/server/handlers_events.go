package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/promo-radar/internal/types"
)

func (s *Server) eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.errorResponse(w, http.StatusBadRequest, "invalid event ID")
		return 0, false
	}
	return id, true
}

// handleListEvents lists events, filterable by ?company= and ?status=.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	company := r.URL.Query().Get("company")
	status := r.URL.Query().Get("status")
	limit := parseQueryInt(r, "limit", 50, 200)

	events, err := s.store.ListEvents(r.Context(), company, status, limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

// handleGetEvent returns one event with its sections, insights, and edit
// history.
func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.eventID(w, r)
	if !ok {
		return
	}

	event, err := s.store.GetEvent(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "database error: "+err.Error())
		return
	}
	if event == nil {
		s.errorResponse(w, http.StatusNotFound, "event not found")
		return
	}

	sections, err := s.store.GetSections(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "database error: "+err.Error())
		return
	}
	insights, err := s.store.EventInsights(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "database error: "+err.Error())
		return
	}
	edits, err := s.store.ListEdits(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"event":    event,
		"sections": sections,
		"insights": insights,
		"edits":    edits,
	})
}

// lockRequest toggles an event's curation lock.
type lockRequest struct {
	Locked bool   `json:"locked"`
	Editor string `json:"editor" validate:"required,min=1,max=100"`
	Reason string `json:"reason" validate:"max=500"`
}

// handleLockEvent sets or clears an event's lock and records the change in
// the edit audit trail.
func (s *Server) handleLockEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.eventID(w, r)
	if !ok {
		return
	}

	var req lockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			s.errorResponse(w, http.StatusBadRequest, "invalid field: "+verrs[0].Field())
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "invalid request")
		return
	}

	event, err := s.store.GetEvent(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "database error: "+err.Error())
		return
	}
	if event == nil {
		s.errorResponse(w, http.StatusNotFound, "event not found")
		return
	}

	if err := s.store.SetLocked(r.Context(), id, req.Locked); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "database error: "+err.Error())
		return
	}

	edit := types.Edit{
		EventID:  id,
		Field:    "locked",
		OldValue: strconv.FormatBool(event.Locked),
		NewValue: strconv.FormatBool(req.Locked),
		Editor:   req.Editor,
		Reason:   req.Reason,
	}
	if err := s.store.RecordEdit(r.Context(), id, edit); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"id":     id,
		"locked": req.Locked,
	})
}
