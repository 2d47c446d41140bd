package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JK-25/condor-car-tracker-2025.io/internal/domain"
)

// ErrorDetail is the machine-readable kind and human-readable message of a
// failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// errorKind maps a domain sentinel to its wire code and HTTP status.
type errorKind struct {
	sentinel error
	code     string
	status   int
}

var errorKinds = []errorKind{
	{domain.ErrInvalidInput, "invalid_input", http.StatusBadRequest},
	{domain.ErrDuplicate, "duplicate", http.StatusConflict},
	{domain.ErrNotFound, "not_found", http.StatusNotFound},
	{domain.ErrAlreadyClosed, "already_closed", http.StatusConflict},
	{domain.ErrPreconditionFailed, "precondition_failed", http.StatusBadRequest},
	{domain.ErrIO, "io_error", http.StatusInternalServerError},
}

// writeError classifies err and writes the matching ErrorResponse.
// Unclassified errors are logged and reported as a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.sentinel) {
			if k.status >= http.StatusInternalServerError {
				s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
			}
			writeJSON(w, k.status, errorBody(k.code, unwrapMessage(err, k.sentinel)))
			return
		}
	}
	s.log.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody("internal", "internal error"))
}

// invalidBody returns an ErrorResponse for a request rejected before reaching
// the service layer (e.g. missing or malformed body).
func invalidBody(message string) ErrorResponse {
	return errorBody("invalid_input", message)
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// unwrapMessage extracts the human-readable part that follows the sentinel.
// e.g. "service.Fleet.Dispatch: invalid input: direction: cannot be blank." → "direction: cannot be blank."
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.Index(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}
