// Package handler implements the HTTP handlers for the fleet dispatch log.
// All handlers are methods on Server. Methods are split into resource files
// (vehicle.go, trip.go, storage.go, export.go) but share the same Server so
// they can reach its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JK-25/condor-car-tracker-2025.io/internal/domain"
)

// FleetServicer defines the operations the handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without touching the file system or the ledger.
type FleetServicer interface {
	ListVehicles(ctx context.Context) []string
	RegisterVehicle(ctx context.Context, req domain.RegisterVehicleRequest) (string, error)
	Dispatch(ctx context.Context, req domain.DispatchRequest) (domain.TripRecord, error)
	MarkReturn(ctx context.Context, req domain.ReturnRequest) (domain.TripRecord, error)
	ListRecords(ctx context.Context) []domain.TripRecord
	SetStoragePath(ctx context.Context, req domain.SetStoragePathRequest) (string, error)
	Export(ctx context.Context, format domain.ExportFormat) (domain.ExportFile, error)
	Status(ctx context.Context) domain.Summary
	Reset(ctx context.Context) error
}

// Server holds the dependencies shared by every handler.
type Server struct {
	fleet FleetServicer
	log   *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(fleet FleetServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{fleet: fleet, log: log}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil)
}

// Handler mounts every route of s on a chi router.
func Handler(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/api", func(r chi.Router) {
		r.Get("/vehicles", s.ListVehicles)
		r.Post("/vehicles", s.RegisterVehicle)
		r.Post("/dispatch", s.Dispatch)
		r.Post("/return", s.MarkReturn)
		r.Get("/logs", s.ListRecords)
		r.Post("/set_path", s.SetStoragePath)
		r.Get("/export_csv", s.ExportCSV)
		r.Get("/export", s.Export)
		r.Get("/status", s.GetStatus)
		r.Post("/reset", s.Reset)
	})

	return r
}
