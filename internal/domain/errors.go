package domain

import "errors"

// ErrInvalidInput is returned when a required field is missing or malformed
// (e.g. blank vehicle name, relative storage path).
// Handlers should map this to HTTP 400.
var ErrInvalidInput = errors.New("invalid input")

// ErrDuplicate is returned when a uniqueness rule would be violated,
// such as registering a vehicle name that is already present.
// Handlers should map this to HTTP 409.
var ErrDuplicate = errors.New("already exists")

// ErrNotFound is returned when no trip record matches the requested id.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrAlreadyClosed is returned when a return is requested for a trip that
// has already returned. Handlers should map this to HTTP 409.
var ErrAlreadyClosed = errors.New("already closed")

// ErrPreconditionFailed is returned by operations that need a storage path
// when none has been configured yet.
var ErrPreconditionFailed = errors.New("precondition failed")

// ErrIO is returned when the file system rejects an operation the caller
// asked for explicitly (creating the storage directory, reading an export).
// Handlers should map this to HTTP 500.
var ErrIO = errors.New("i/o error")

// Kinds lists every sentinel in classification order.
// Handlers walk it with errors.Is to pick a response code.
var Kinds = []error{
	ErrInvalidInput,
	ErrDuplicate,
	ErrNotFound,
	ErrAlreadyClosed,
	ErrPreconditionFailed,
	ErrIO,
}
