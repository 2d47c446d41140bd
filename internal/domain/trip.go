// Package domain contains the core data types for the fleet dispatch log.
// This package depends only on the standard library and is imported by every
// other internal package (ledger, repo, service, handler).
package domain

import (
	"encoding/json"
	"fmt"
)

// TripStatus is the lifecycle state of a trip record.
type TripStatus string

const (
	// StatusOut marks a vehicle that has been dispatched and is in transit.
	StatusOut TripStatus = "out"
	// StatusReturned marks a closed trip. ReturnAt is always set.
	StatusReturned TripStatus = "returned"
)

// legacyStatuses maps the labels written by earlier deployments of the log
// onto the canonical values.
var legacyStatuses = map[string]TripStatus{
	"В рейсе":  StatusOut,
	"В гараже": StatusReturned,
}

// ParseTripStatus accepts a canonical or legacy status label.
func ParseTripStatus(s string) (TripStatus, error) {
	switch TripStatus(s) {
	case StatusOut, StatusReturned:
		return TripStatus(s), nil
	}
	if st, ok := legacyStatuses[s]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown trip status %q", ErrInvalidInput, s)
}

// UnmarshalJSON decodes a status label, normalizing legacy values.
func (s *TripStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := ParseTripStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// TripRecord is one dispatch-and-return cycle of a vehicle.
// ReturnAt is nil while the vehicle is out; it is set exactly once, together
// with the transition to StatusReturned.
type TripRecord struct {
	ID        string     `json:"id"`
	Vehicle   string     `json:"vehicle"`
	Direction string     `json:"direction"`
	Route     string     `json:"route"`
	DepartAt  Timestamp  `json:"departAt"`
	ReturnAt  *Timestamp `json:"returnAt"`
	Status    TripStatus `json:"status"`
}

// Returned reports whether the trip has been closed.
func (r TripRecord) Returned() bool {
	return r.Status == StatusReturned
}

// Clone returns a copy that shares no pointers with r.
func (r TripRecord) Clone() TripRecord {
	if r.ReturnAt != nil {
		at := *r.ReturnAt
		r.ReturnAt = &at
	}
	return r
}

// Validate checks the record-level invariants: an id and vehicle are present,
// the status is known, and ReturnAt is set exactly when the trip has returned.
func (r TripRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: record has no id", ErrInvalidInput)
	}
	if r.Vehicle == "" {
		return fmt.Errorf("%w: record %s has no vehicle", ErrInvalidInput, r.ID)
	}
	switch r.Status {
	case StatusOut:
		if r.ReturnAt != nil {
			return fmt.Errorf("%w: record %s is out but has a return time", ErrInvalidInput, r.ID)
		}
	case StatusReturned:
		if r.ReturnAt == nil {
			return fmt.Errorf("%w: record %s is returned without a return time", ErrInvalidInput, r.ID)
		}
	default:
		return fmt.Errorf("%w: record %s has unknown status %q", ErrInvalidInput, r.ID, r.Status)
	}
	return nil
}
