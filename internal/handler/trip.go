package handler

import (
	"net/http"

	"github.com/JK-25/condor-car-tracker-2025.io/internal/domain"
)

// Dispatch handles POST /api/dispatch.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req domain.DispatchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rec, err := s.fleet.Dispatch(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

// MarkReturn handles POST /api/return.
func (s *Server) MarkReturn(w http.ResponseWriter, r *http.Request) {
	var req domain.ReturnRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rec, err := s.fleet.MarkReturn(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// ListRecords handles GET /api/logs.
// Always responds with an array, never null.
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	recs := s.fleet.ListRecords(r.Context())
	if recs == nil {
		recs = []domain.TripRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}
