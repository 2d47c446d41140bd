// Package service contains the business logic for the fleet dispatch log.
// Fleet is the single handle to the ledger: it serializes every mutation
// behind one lock, mirrors the trip log to disk after each change, and owns
// the configured storage directory.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/JK-25/condor-car-tracker-2025.io/internal/domain"
	"github.com/JK-25/condor-car-tracker-2025.io/internal/ledger"
	"github.com/JK-25/condor-car-tracker-2025.io/internal/repo"
)

// Fleet implements the request/response operations of the dispatch log.
type Fleet struct {
	mu          sync.RWMutex
	ledger      *ledger.Ledger
	mirror      repo.TripMirror
	settings    repo.SettingsStore
	storagePath string
	log         *slog.Logger
}

// NewFleet constructs a Fleet around an existing ledger. No storage path is
// configured until Bootstrap or SetStoragePath succeeds.
func NewFleet(l *ledger.Ledger, mirror repo.TripMirror, settings repo.SettingsStore, log *slog.Logger) *Fleet {
	return &Fleet{ledger: l, mirror: mirror, settings: settings, log: log}
}

// ListVehicles returns the registered vehicle names in registration order.
func (f *Fleet) ListVehicles(_ context.Context) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ledger.Vehicles()
}

// ListRecords returns every trip record in dispatch order.
func (f *Fleet) ListRecords(_ context.Context) []domain.TripRecord {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ledger.Records()
}

// Status reports the storage path and the ledger sizes.
func (f *Fleet) Status(_ context.Context) domain.Summary {
	f.mu.RLock()
	defer f.mu.RUnlock()
	vehicles, records := f.ledger.Counts()
	return domain.Summary{
		StoragePath:  f.storagePath,
		VehicleCount: vehicles,
		LogCount:     records,
	}
}

// RegisterVehicle adds a vehicle and returns its trimmed name.
// Returns domain.ErrInvalidInput for a blank name, domain.ErrDuplicate if the
// name is taken.
func (f *Fleet) RegisterVehicle(ctx context.Context, req domain.RegisterVehicleRequest) (string, error) {
	req = req.Normalize()

	f.mu.Lock()
	defer f.mu.Unlock()

	name, err := f.ledger.RegisterVehicle(req.Name)
	if err != nil {
		return "", fmt.Errorf("service.Fleet.RegisterVehicle: %w", err)
	}
	f.mirrorBestEffort(ctx, "register_vehicle")
	return name, nil
}

// Dispatch opens a trip and returns the new record.
// Returns domain.ErrInvalidInput if vehicle or direction is blank.
func (f *Fleet) Dispatch(ctx context.Context, req domain.DispatchRequest) (domain.TripRecord, error) {
	req = req.Normalize()

	f.mu.Lock()
	defer f.mu.Unlock()

	rec, err := f.ledger.Dispatch(req.Vehicle, req.Direction, req.Route)
	if err != nil {
		return domain.TripRecord{}, fmt.Errorf("service.Fleet.Dispatch: %w", err)
	}
	f.log.InfoContext(ctx, "vehicle dispatched", "id", rec.ID, "vehicle", rec.Vehicle)
	f.mirrorBestEffort(ctx, "dispatch")
	return rec, nil
}

// MarkReturn closes a trip and returns the updated record.
// Returns domain.ErrInvalidInput for a blank id, domain.ErrNotFound for an
// unknown one and domain.ErrAlreadyClosed for a trip that already returned.
func (f *Fleet) MarkReturn(ctx context.Context, req domain.ReturnRequest) (domain.TripRecord, error) {
	req = req.Normalize()

	f.mu.Lock()
	defer f.mu.Unlock()

	rec, err := f.ledger.MarkReturn(req.ID)
	if err != nil {
		return domain.TripRecord{}, fmt.Errorf("service.Fleet.MarkReturn: %w", err)
	}
	f.log.InfoContext(ctx, "vehicle returned", "id", rec.ID, "vehicle", rec.Vehicle)
	f.mirrorBestEffort(ctx, "return")
	return rec, nil
}

// SetStoragePath points the mirror at a new directory and returns the cleaned
// absolute path. The directory is created, the full log is written into it,
// and only then is the path committed and saved to the settings file.
func (f *Fleet) SetStoragePath(ctx context.Context, req domain.SetStoragePathRequest) (string, error) {
	req = req.Normalize()
	if req.Path == "" {
		return "", fmt.Errorf("service.Fleet.SetStoragePath: %w: path is required", domain.ErrInvalidInput)
	}
	if !filepath.IsAbs(req.Path) {
		return "", fmt.Errorf("service.Fleet.SetStoragePath: %w: path must be absolute", domain.ErrInvalidInput)
	}
	path, err := filepath.Abs(req.Path)
	if err != nil {
		return "", fmt.Errorf("service.Fleet.SetStoragePath: %w: invalid path: %v", domain.ErrInvalidInput, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.mirror.EnsureDir(path); err != nil {
		return "", fmt.Errorf("service.Fleet.SetStoragePath: %w: cannot create path: %v", domain.ErrIO, err)
	}
	if err := f.mirror.Write(path, f.ledger.Records()); err != nil {
		return "", fmt.Errorf("service.Fleet.SetStoragePath: %w: cannot write logs: %v", domain.ErrIO, err)
	}
	f.storagePath = path
	f.settings.Save(path)
	f.log.InfoContext(ctx, "storage path set", "path", path)
	return path, nil
}

// Export returns the mirror file for format, regenerating it first when it is
// missing from the storage directory.
// Returns domain.ErrPreconditionFailed when no storage path is configured.
func (f *Fleet) Export(ctx context.Context, format domain.ExportFormat) (domain.ExportFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.storagePath == "" {
		return domain.ExportFile{}, fmt.Errorf("service.Fleet.Export: %w: storage path not set", domain.ErrPreconditionFailed)
	}

	data, err := f.mirror.Read(f.storagePath, format)
	if errors.Is(err, os.ErrNotExist) {
		f.log.InfoContext(ctx, "regenerating missing export", "file", format.FileName())
		if werr := f.mirror.Write(f.storagePath, f.ledger.Records()); werr != nil {
			return domain.ExportFile{}, fmt.Errorf("service.Fleet.Export: %w: %v", domain.ErrIO, werr)
		}
		data, err = f.mirror.Read(f.storagePath, format)
	}
	if err != nil {
		return domain.ExportFile{}, fmt.Errorf("service.Fleet.Export: %w: can't read file: %v", domain.ErrIO, err)
	}

	return domain.ExportFile{
		Name:        format.FileName(),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

// Reset deletes the mirror files, clears the ledger and forgets the storage
// path. If the mirror files cannot be deleted the ledger is left untouched
// and domain.ErrIO is returned. The settings file is removed best-effort.
func (f *Fleet) Reset(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.storagePath != "" {
		if err := f.mirror.Remove(f.storagePath); err != nil {
			return fmt.Errorf("service.Fleet.Reset: %w: reset failed: %v", domain.ErrIO, err)
		}
	}
	f.ledger.Clear()
	_ = f.settings.Remove()
	f.storagePath = ""
	f.log.InfoContext(ctx, "ledger reset")
	return nil
}

// mirrorBestEffort rewrites the mirror if a storage path is configured.
// A failure is logged; the in-memory mutation stays committed.
// Callers must hold f.mu.
func (f *Fleet) mirrorBestEffort(ctx context.Context, op string) {
	if f.storagePath == "" {
		return
	}
	if err := f.mirror.Write(f.storagePath, f.ledger.Records()); err != nil {
		f.log.ErrorContext(ctx, "mirror write failed", "op", op, "path", f.storagePath, "error", err)
	}
}
