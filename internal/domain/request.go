package domain

import "strings"

// RegisterVehicleRequest carries the input of a vehicle registration.
type RegisterVehicleRequest struct {
	Name string `json:"name"`
}

// Normalize trims surrounding whitespace from every field.
func (r RegisterVehicleRequest) Normalize() RegisterVehicleRequest {
	r.Name = strings.TrimSpace(r.Name)
	return r
}

// DispatchRequest carries the input of a dispatch. Vehicle and Direction are
// required; Route is optional.
type DispatchRequest struct {
	Vehicle   string `json:"vehicle"`
	Direction string `json:"direction"`
	Route     string `json:"route"`
}

// Normalize trims surrounding whitespace from every field.
func (r DispatchRequest) Normalize() DispatchRequest {
	r.Vehicle = strings.TrimSpace(r.Vehicle)
	r.Direction = strings.TrimSpace(r.Direction)
	r.Route = strings.TrimSpace(r.Route)
	return r
}

// ReturnRequest identifies the trip record to close.
type ReturnRequest struct {
	ID string `json:"id"`
}

// Normalize trims surrounding whitespace from every field.
func (r ReturnRequest) Normalize() ReturnRequest {
	r.ID = strings.TrimSpace(r.ID)
	return r
}

// SetStoragePathRequest carries the directory that should hold the mirror.
type SetStoragePathRequest struct {
	Path string `json:"path"`
}

// Normalize trims surrounding whitespace from every field.
func (r SetStoragePathRequest) Normalize() SetStoragePathRequest {
	r.Path = strings.TrimSpace(r.Path)
	return r
}
