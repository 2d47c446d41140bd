package handler

import (
	"net/http"

	"github.com/JK-25/condor-car-tracker-2025.io/internal/domain"
)

type vehicleResponse struct {
	OK   bool   `json:"ok"`
	Name string `json:"name"`
}

// ListVehicles handles GET /api/vehicles.
func (s *Server) ListVehicles(w http.ResponseWriter, r *http.Request) {
	names := s.fleet.ListVehicles(r.Context())
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// RegisterVehicle handles POST /api/vehicles.
func (s *Server) RegisterVehicle(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterVehicleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	name, err := s.fleet.RegisterVehicle(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, vehicleResponse{OK: true, Name: name})
}
