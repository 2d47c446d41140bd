package handler

import (
	"net/http"

	"github.com/JK-25/condor-car-tracker-2025.io/internal/domain"
)

type pathResponse struct {
	OK   bool   `json:"ok"`
	Path string `json:"path"`
}

// statusResponse reports a null storage_path when none is configured.
type statusResponse struct {
	OK            bool    `json:"ok"`
	StoragePath   *string `json:"storage_path"`
	VehiclesCount int     `json:"vehicles_count"`
	LogsCount     int     `json:"logs_count"`
}

// SetStoragePath handles POST /api/set_path.
func (s *Server) SetStoragePath(w http.ResponseWriter, r *http.Request) {
	var req domain.SetStoragePathRequest
	if !decodeBody(w, r, &req) {
		return
	}

	path, err := s.fleet.SetStoragePath(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pathResponse{OK: true, Path: path})
}

// GetStatus handles GET /api/status.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	sum := s.fleet.Status(r.Context())
	resp := statusResponse{
		OK:            true,
		VehiclesCount: sum.VehicleCount,
		LogsCount:     sum.LogCount,
	}
	if sum.StoragePath != "" {
		resp.StoragePath = &sum.StoragePath
	}
	writeJSON(w, http.StatusOK, resp)
}

// Reset handles POST /api/reset.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	if err := s.fleet.Reset(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}
