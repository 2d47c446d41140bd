// Package ledger holds the in-memory vehicle set and trip log and enforces
// their invariants: unique vehicle names, unique trip ids, and the one-way
// out → returned transition.
//
// A Ledger is not safe for concurrent use. service.Fleet owns the only
// instance and serializes access to it.
package ledger

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/JK-25/condor-car-tracker-2025.io/internal/domain"
)

// maxIDAttempts bounds how often Dispatch asks the generator for an unused id.
const maxIDAttempts = 16

// Ledger is the authoritative collection of vehicles and trip records.
type Ledger struct {
	vehicles   []string
	vehicleSet map[string]struct{}

	records []domain.TripRecord
	index   map[string]int // id -> position of the first record with that id

	now            func() time.Time
	newID          func() string
	registeredOnly bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces time.Now as the source of departure and return times.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator replaces uuid.NewString as the source of trip ids.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// WithRegisteredVehiclesOnly makes Dispatch reject vehicle names that were
// never registered.
func WithRegisteredVehiclesOnly() Option {
	return func(l *Ledger) { l.registeredOnly = true }
}

// New returns an empty Ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		vehicleSet: make(map[string]struct{}),
		index:      make(map[string]int),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Seed replaces the trip log with records loaded from a previous mirror.
// Every record must pass domain.TripRecord.Validate; on failure the ledger is
// left unchanged. Duplicate ids are kept, lookups resolve to the first one.
func (l *Ledger) Seed(records []domain.TripRecord) error {
	seeded := make([]domain.TripRecord, 0, len(records))
	index := make(map[string]int, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("ledger.Seed: record %d: %w", i, err)
		}
		if _, seen := index[r.ID]; !seen {
			index[r.ID] = len(seeded)
		}
		seeded = append(seeded, r.Clone())
	}
	l.records = seeded
	l.index = index
	return nil
}

// RegisterVehicle adds a vehicle name and returns it trimmed.
// Returns domain.ErrInvalidInput for a blank name and domain.ErrDuplicate if
// the exact name is already registered.
func (l *Ledger) RegisterVehicle(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, validation.Required); err != nil {
		return "", fmt.Errorf("%w: name %v", domain.ErrInvalidInput, err)
	}
	if _, exists := l.vehicleSet[name]; exists {
		return "", fmt.Errorf("%w: vehicle %q", domain.ErrDuplicate, name)
	}
	l.vehicles = append(l.vehicles, name)
	l.vehicleSet[name] = struct{}{}
	return name, nil
}

// dispatchInput is the trimmed input of Dispatch.
type dispatchInput struct {
	Vehicle   string `json:"vehicle"`
	Direction string `json:"direction"`
	Route     string `json:"route"`
}

func (in dispatchInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Vehicle, validation.Required),
		validation.Field(&in.Direction, validation.Required),
	)
}

// Dispatch opens a new trip for vehicle and returns the created record.
// Vehicle and direction are required after trimming; route may be empty.
func (l *Ledger) Dispatch(vehicle, direction, route string) (domain.TripRecord, error) {
	in := dispatchInput{
		Vehicle:   strings.TrimSpace(vehicle),
		Direction: strings.TrimSpace(direction),
		Route:     strings.TrimSpace(route),
	}
	if err := in.Validate(); err != nil {
		return domain.TripRecord{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if l.registeredOnly {
		if _, ok := l.vehicleSet[in.Vehicle]; !ok {
			return domain.TripRecord{}, fmt.Errorf("%w: vehicle %q is not registered", domain.ErrInvalidInput, in.Vehicle)
		}
	}

	id, err := l.allocateID()
	if err != nil {
		return domain.TripRecord{}, err
	}

	rec := domain.TripRecord{
		ID:        id,
		Vehicle:   in.Vehicle,
		Direction: in.Direction,
		Route:     in.Route,
		DepartAt:  domain.NewTimestamp(l.now()),
		Status:    domain.StatusOut,
	}
	l.index[id] = len(l.records)
	l.records = append(l.records, rec)
	return rec.Clone(), nil
}

func (l *Ledger) allocateID() (string, error) {
	for range maxIDAttempts {
		id := l.newID()
		if id == "" {
			continue
		}
		if _, taken := l.index[id]; !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("ledger.Dispatch: no unused trip id after %d attempts", maxIDAttempts)
}

// MarkReturn closes the trip with the given id and returns the updated record.
// Returns domain.ErrInvalidInput for a blank id, domain.ErrNotFound for an
// unknown id and domain.ErrAlreadyClosed if the trip has already returned.
func (l *Ledger) MarkReturn(id string) (domain.TripRecord, error) {
	id = strings.TrimSpace(id)
	if err := validation.Validate(id, validation.Required); err != nil {
		return domain.TripRecord{}, fmt.Errorf("%w: id %v", domain.ErrInvalidInput, err)
	}
	pos, ok := l.index[id]
	if !ok {
		return domain.TripRecord{}, fmt.Errorf("%w: trip record %s", domain.ErrNotFound, id)
	}
	rec := &l.records[pos]
	if rec.Returned() {
		return domain.TripRecord{}, fmt.Errorf("%w: trip record %s returned at %s", domain.ErrAlreadyClosed, id, rec.ReturnAt)
	}
	at := domain.NewTimestamp(l.now())
	rec.ReturnAt = &at
	rec.Status = domain.StatusReturned
	return rec.Clone(), nil
}

// Vehicles returns the registered names in registration order.
// Always returns a non-nil slice.
func (l *Ledger) Vehicles() []string {
	out := make([]string, len(l.vehicles))
	copy(out, l.vehicles)
	return out
}

// Records returns a copy of the trip log in dispatch order.
// Always returns a non-nil slice.
func (l *Ledger) Records() []domain.TripRecord {
	out := make([]domain.TripRecord, len(l.records))
	for i, r := range l.records {
		out[i] = r.Clone()
	}
	return out
}

// Counts returns the number of registered vehicles and trip records.
func (l *Ledger) Counts() (vehicles, records int) {
	return len(l.vehicles), len(l.records)
}

// Clear drops every vehicle and trip record.
func (l *Ledger) Clear() {
	l.vehicles = nil
	l.vehicleSet = make(map[string]struct{})
	l.records = nil
	l.index = make(map[string]int)
}
