package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JK-25/condor-car-tracker-2025.io/internal/domain"
	"github.com/JK-25/condor-car-tracker-2025.io/internal/handler"
	"github.com/JK-25/condor-car-tracker-2025.io/testutil"
)

// mockFleetServicer is a test double for handler.FleetServicer.
// Set only the method fields your test needs.
type mockFleetServicer struct {
	listVehicles    func(ctx context.Context) []string
	registerVehicle func(ctx context.Context, req domain.RegisterVehicleRequest) (string, error)
	dispatch        func(ctx context.Context, req domain.DispatchRequest) (domain.TripRecord, error)
	markReturn      func(ctx context.Context, req domain.ReturnRequest) (domain.TripRecord, error)
	listRecords     func(ctx context.Context) []domain.TripRecord
	setStoragePath  func(ctx context.Context, req domain.SetStoragePathRequest) (string, error)
	export          func(ctx context.Context, format domain.ExportFormat) (domain.ExportFile, error)
	status          func(ctx context.Context) domain.Summary
	reset           func(ctx context.Context) error
}

func (m *mockFleetServicer) ListVehicles(ctx context.Context) []string {
	return m.listVehicles(ctx)
}
func (m *mockFleetServicer) RegisterVehicle(ctx context.Context, req domain.RegisterVehicleRequest) (string, error) {
	return m.registerVehicle(ctx, req)
}
func (m *mockFleetServicer) Dispatch(ctx context.Context, req domain.DispatchRequest) (domain.TripRecord, error) {
	return m.dispatch(ctx, req)
}
func (m *mockFleetServicer) MarkReturn(ctx context.Context, req domain.ReturnRequest) (domain.TripRecord, error) {
	return m.markReturn(ctx, req)
}
func (m *mockFleetServicer) ListRecords(ctx context.Context) []domain.TripRecord {
	return m.listRecords(ctx)
}
func (m *mockFleetServicer) SetStoragePath(ctx context.Context, req domain.SetStoragePathRequest) (string, error) {
	return m.setStoragePath(ctx, req)
}
func (m *mockFleetServicer) Export(ctx context.Context, format domain.ExportFormat) (domain.ExportFile, error) {
	return m.export(ctx, format)
}
func (m *mockFleetServicer) Status(ctx context.Context) domain.Summary {
	return m.status(ctx)
}
func (m *mockFleetServicer) Reset(ctx context.Context) error {
	return m.reset(ctx)
}

// compile-time check: mockFleetServicer must satisfy handler.FleetServicer.
var _ handler.FleetServicer = (*mockFleetServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mock into the chi router.
// This mirrors how main.go wires it in production.
func newHTTPHandler(svc handler.FleetServicer) http.Handler {
	return handler.Handler(handler.NewServer(svc, testutil.DiscardLogger()))
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func openRecord() domain.TripRecord {
	return domain.TripRecord{
		ID:        "rec-1",
		Vehicle:   "Truck-7",
		Direction: "North",
		Route:     "Depot-A",
		DepartAt:  domain.NewTimestamp(time.Date(2025, 3, 1, 8, 0, 0, 0, time.Local)),
		Status:    domain.StatusOut,
	}
}
