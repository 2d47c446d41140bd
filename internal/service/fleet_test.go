package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JK-25/condor-car-tracker-2025.io/internal/domain"
	"github.com/JK-25/condor-car-tracker-2025.io/internal/ledger"
	"github.com/JK-25/condor-car-tracker-2025.io/internal/repo"
	"github.com/JK-25/condor-car-tracker-2025.io/internal/service"
	"github.com/JK-25/condor-car-tracker-2025.io/testutil"
)

// faultyMirror wraps a real mirror and injects failures on demand.
type faultyMirror struct {
	repo.TripMirror
	writeErr  error
	removeErr error
}

func (m *faultyMirror) Write(dir string, records []domain.TripRecord) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	return m.TripMirror.Write(dir, records)
}

func (m *faultyMirror) Remove(dir string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	return m.TripMirror.Remove(dir)
}

// compile-time check: faultyMirror must satisfy repo.TripMirror.
var _ repo.TripMirror = (*faultyMirror)(nil)

// staticProvider is a PathProvider returning a fixed answer.
type staticProvider struct {
	path string
	err  error
}

func (p staticProvider) StoragePath(context.Context) (string, error) { return p.path, p.err }

// ---- helpers ---------------------------------------------------------------

func withStorage(t *testing.T, env *testutil.Env) string {
	t.Helper()
	path, err := env.Fleet.SetStoragePath(context.Background(), domain.SetStoragePathRequest{Path: testutil.StorageDir(t)})
	require.NoError(t, err)
	return path
}

func loadJSON(t *testing.T, dir string) []domain.TripRecord {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "logs.json"))
	require.NoError(t, err)
	var recs []domain.TripRecord
	require.NoError(t, json.Unmarshal(data, &recs))
	return recs
}

func csvLines(t *testing.T, dir string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "logs.csv"))
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// assertMirrorMatches verifies that logs.json parses back to the in-memory log
// and logs.csv has one line per record plus the header.
func assertMirrorMatches(t *testing.T, env *testutil.Env, dir string) {
	t.Helper()
	want := env.Fleet.ListRecords(context.Background())
	got := loadJSON(t, dir)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Status, got[i].Status)
		assert.Equal(t, want[i].DepartAt.String(), got[i].DepartAt.String())
		assert.Equal(t, domain.FormatOptional(want[i].ReturnAt), domain.FormatOptional(got[i].ReturnAt))
	}
	lines := csvLines(t, dir)
	assert.Len(t, lines, len(want)+1)
	assert.Equal(t, "id,vehicle,direction,route,departAt,returnAt,status", lines[0])
}

// ---- lifecycle -------------------------------------------------------------

func TestFleet_DispatchAndReturnScenario(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	name, err := env.Fleet.RegisterVehicle(ctx, domain.RegisterVehicleRequest{Name: "Truck-1"})
	require.NoError(t, err)
	assert.Equal(t, "Truck-1", name)

	out, err := env.Fleet.Dispatch(ctx, domain.DispatchRequest{Vehicle: "Truck-1", Direction: "north", Route: "route-7"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOut, out.Status)
	assert.Nil(t, out.ReturnAt)

	back, err := env.Fleet.MarkReturn(ctx, domain.ReturnRequest{ID: out.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReturned, back.Status)
	require.NotNil(t, back.ReturnAt)
	assert.Equal(t, out.DepartAt.String(), back.DepartAt.String())

	_, err = env.Fleet.MarkReturn(ctx, domain.ReturnRequest{ID: out.ID})
	assert.ErrorIs(t, err, domain.ErrAlreadyClosed)
}

func TestFleet_RegisterVehicle_Errors(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	_, err := env.Fleet.RegisterVehicle(ctx, domain.RegisterVehicleRequest{Name: "Truck-1"})
	require.NoError(t, err)

	_, err = env.Fleet.RegisterVehicle(ctx, domain.RegisterVehicleRequest{Name: " Truck-1 "})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = env.Fleet.RegisterVehicle(ctx, domain.RegisterVehicleRequest{Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, []string{"Truck-1"}, env.Fleet.ListVehicles(ctx))
}

func TestFleet_WorksWithoutStoragePath(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	rec, err := env.Fleet.Dispatch(ctx, domain.DispatchRequest{Vehicle: "Truck-1", Direction: "north"})
	require.NoError(t, err)
	_, err = env.Fleet.MarkReturn(ctx, domain.ReturnRequest{ID: rec.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.Summary{LogCount: 1}, env.Fleet.Status(ctx))
}

func TestFleet_MirrorFollowsEveryMutation(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	dir := withStorage(t, env)
	assertMirrorMatches(t, env, dir)

	_, err := env.Fleet.RegisterVehicle(ctx, domain.RegisterVehicleRequest{Name: "Truck-1"})
	require.NoError(t, err)
	assertMirrorMatches(t, env, dir)

	first, err := env.Fleet.Dispatch(ctx, domain.DispatchRequest{Vehicle: "Truck-1", Direction: "north", Route: "route-7"})
	require.NoError(t, err)
	assertMirrorMatches(t, env, dir)

	_, err = env.Fleet.Dispatch(ctx, domain.DispatchRequest{Vehicle: "Van-2", Direction: "east"})
	require.NoError(t, err)
	assertMirrorMatches(t, env, dir)

	_, err = env.Fleet.MarkReturn(ctx, domain.ReturnRequest{ID: first.ID})
	require.NoError(t, err)
	assertMirrorMatches(t, env, dir)
}

func TestFleet_InvalidDispatchDoesNotTouchMirror(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	dir := withStorage(t, env)

	_, err := env.Fleet.Dispatch(ctx, domain.DispatchRequest{Vehicle: "  ", Direction: "north"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, env.Fleet.ListRecords(ctx))
	assert.Empty(t, loadJSON(t, dir))
}

// TestFleet_MirrorFailureIsBestEffort verifies that a failing disk write after
// a dispatch is logged while the dispatch itself succeeds.
func TestFleet_MirrorFailureIsBestEffort(t *testing.T) {
	log, logs := testutil.NewBufferedLogger()
	mirror := &faultyMirror{TripMirror: repo.NewTripMirror()}
	settings := repo.NewSettingsStore(filepath.Join(t.TempDir(), "config.json"), log)
	fleet := service.NewFleet(ledger.New(), mirror, settings, log)
	ctx := context.Background()
	_, err := fleet.SetStoragePath(ctx, domain.SetStoragePathRequest{Path: testutil.StorageDir(t)})
	require.NoError(t, err)

	mirror.writeErr = errors.New("disk full")
	rec, err := fleet.Dispatch(ctx, domain.DispatchRequest{Vehicle: "Truck-1", Direction: "north"})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusOut, rec.Status)
	assert.Len(t, fleet.ListRecords(ctx), 1)
	assert.Contains(t, logs.String(), "mirror write failed")
	assert.Contains(t, logs.String(), "disk full")
}

// ---- concurrency -----------------------------------------------------------

func TestFleet_ConcurrentDispatches(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	dir := withStorage(t, env)

	const n = 32
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := env.Fleet.Dispatch(ctx, domain.DispatchRequest{
				Vehicle:   fmt.Sprintf("Truck-%d", i),
				Direction: "north",
			})
			if err == nil {
				ids[i] = rec.ID
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, id := range ids {
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}

	onDisk := loadJSON(t, dir)
	require.Len(t, onDisk, n, "no lost update")
	for _, r := range onDisk {
		assert.True(t, seen[r.ID])
	}
	assertMirrorMatches(t, env, dir)
}

// ---- SetStoragePath --------------------------------------------------------

func TestFleet_SetStoragePath_Relative(t *testing.T) {
	env := testutil.NewEnv(t)

	_, err := env.Fleet.SetStoragePath(context.Background(), domain.SetStoragePathRequest{Path: "data/logs"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, env.Fleet.Status(context.Background()).StoragePath)
}

func TestFleet_SetStoragePath_Empty(t *testing.T) {
	env := testutil.NewEnv(t)

	_, err := env.Fleet.SetStoragePath(context.Background(), domain.SetStoragePathRequest{Path: "   "})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFleet_SetStoragePath_Idempotent(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	dir := testutil.StorageDir(t)

	first, err := env.Fleet.SetStoragePath(ctx, domain.SetStoragePathRequest{Path: dir + string(filepath.Separator)})
	require.NoError(t, err)
	second, err := env.Fleet.SetStoragePath(ctx, domain.SetStoragePathRequest{Path: dir})
	require.NoError(t, err)

	assert.Equal(t, dir, first)
	assert.Equal(t, first, second)
	assert.DirExists(t, dir)
	saved, ok := env.Settings.Load()
	require.True(t, ok)
	assert.Equal(t, dir, saved)
}

func TestFleet_SetStoragePath_WritesExistingLog(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	_, err := env.Fleet.Dispatch(ctx, domain.DispatchRequest{Vehicle: "Truck-1", Direction: "north"})
	require.NoError(t, err)

	dir := withStorage(t, env)

	assertMirrorMatches(t, env, dir)
}

func TestFleet_SetStoragePath_CannotCreate(t *testing.T) {
	env := testutil.NewEnv(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := env.Fleet.SetStoragePath(context.Background(), domain.SetStoragePathRequest{Path: filepath.Join(blocker, "sub")})

	assert.ErrorIs(t, err, domain.ErrIO)
	assert.Empty(t, env.Fleet.Status(context.Background()).StoragePath)
	_, saved := env.Settings.Load()
	assert.False(t, saved)
}

// ---- Export ----------------------------------------------------------------

func TestFleet_Export_NoPath(t *testing.T) {
	env := testutil.NewEnv(t)

	_, err := env.Fleet.Export(context.Background(), domain.FormatCSV)

	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestFleet_Export_CSV(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	withStorage(t, env)
	rec, err := env.Fleet.Dispatch(ctx, domain.DispatchRequest{Vehicle: "Truck-1", Direction: "north"})
	require.NoError(t, err)

	file, err := env.Fleet.Export(ctx, domain.FormatCSV)

	require.NoError(t, err)
	assert.Equal(t, "logs.csv", file.Name)
	assert.Contains(t, file.ContentType, "text/csv")
	assert.Contains(t, string(file.Data), rec.ID)
}

func TestFleet_Export_RegeneratesMissingFile(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	dir := withStorage(t, env)
	_, err := env.Fleet.Dispatch(ctx, domain.DispatchRequest{Vehicle: "Truck-1", Direction: "north"})
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "logs.json")))

	file, err := env.Fleet.Export(ctx, domain.FormatJSON)

	require.NoError(t, err)
	assert.Equal(t, "logs.json", file.Name)
	var recs []domain.TripRecord
	require.NoError(t, json.Unmarshal(file.Data, &recs))
	assert.Len(t, recs, 1)
}

// ---- Reset -----------------------------------------------------------------

func TestFleet_Reset(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	dir := withStorage(t, env)
	_, err := env.Fleet.RegisterVehicle(ctx, domain.RegisterVehicleRequest{Name: "Truck-1"})
	require.NoError(t, err)
	_, err = env.Fleet.Dispatch(ctx, domain.DispatchRequest{Vehicle: "Truck-1", Direction: "north"})
	require.NoError(t, err)

	require.NoError(t, env.Fleet.Reset(ctx))

	assert.Equal(t, domain.Summary{}, env.Fleet.Status(ctx))
	assert.Empty(t, env.Fleet.ListVehicles(ctx))
	assert.Empty(t, env.Fleet.ListRecords(ctx))
	assert.NoFileExists(t, filepath.Join(dir, "logs.json"))
	assert.NoFileExists(t, filepath.Join(dir, "logs.csv"))
	assert.NoFileExists(t, env.SettingsFile)

	_, err = env.Fleet.Export(ctx, domain.FormatCSV)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestFleet_Reset_RemoveFailureKeepsState(t *testing.T) {
	log := testutil.DiscardLogger()
	mirror := &faultyMirror{TripMirror: repo.NewTripMirror()}
	settings := repo.NewSettingsStore(filepath.Join(t.TempDir(), "config.json"), log)
	fleet := service.NewFleet(ledger.New(), mirror, settings, log)
	ctx := context.Background()
	dir, err := fleet.SetStoragePath(ctx, domain.SetStoragePathRequest{Path: testutil.StorageDir(t)})
	require.NoError(t, err)
	_, err = fleet.Dispatch(ctx, domain.DispatchRequest{Vehicle: "Truck-1", Direction: "north"})
	require.NoError(t, err)

	mirror.removeErr = errors.New("permission denied")
	err = fleet.Reset(ctx)

	assert.ErrorIs(t, err, domain.ErrIO)
	status := fleet.Status(ctx)
	assert.Equal(t, dir, status.StoragePath)
	assert.Equal(t, 1, status.LogCount)
}

// ---- Bootstrap -------------------------------------------------------------

func TestFleet_Bootstrap_SavedPathSeedsLog(t *testing.T) {
	ctx := context.Background()
	first := testutil.NewEnv(t)
	dir := withStorage(t, first)
	rec, err := first.Fleet.Dispatch(ctx, domain.DispatchRequest{Vehicle: "Truck-1", Direction: "north"})
	require.NoError(t, err)

	// A second process sharing the settings file.
	log := testutil.DiscardLogger()
	settings := repo.NewSettingsStore(first.SettingsFile, log)
	restarted := service.NewFleet(ledger.New(), repo.NewTripMirror(), settings, log)
	require.NoError(t, restarted.Bootstrap(ctx, service.NoPrompt{}, testutil.StorageDir(t)))

	assert.Equal(t, dir, restarted.Status(ctx).StoragePath)
	recs := restarted.ListRecords(ctx)
	require.Len(t, recs, 1)
	assert.Equal(t, rec.ID, recs[0].ID)

	_, err = restarted.MarkReturn(ctx, domain.ReturnRequest{ID: rec.ID})
	assert.NoError(t, err, "seeded records can be returned")
}

func TestFleet_Bootstrap_ProviderPathIsSaved(t *testing.T) {
	env := testutil.NewEnv(t)
	dir := testutil.StorageDir(t)

	require.NoError(t, env.Fleet.Bootstrap(context.Background(), staticProvider{path: dir}, testutil.StorageDir(t)))

	assert.Equal(t, dir, env.Fleet.Status(context.Background()).StoragePath)
	assert.DirExists(t, dir)
	saved, ok := env.Settings.Load()
	require.True(t, ok)
	assert.Equal(t, dir, saved)
}

func TestFleet_Bootstrap_FallbackNotSaved(t *testing.T) {
	env := testutil.NewEnv(t)
	fallback := testutil.StorageDir(t)

	require.NoError(t, env.Fleet.Bootstrap(context.Background(), service.NoPrompt{}, fallback))

	assert.Equal(t, fallback, env.Fleet.Status(context.Background()).StoragePath)
	assert.DirExists(t, fallback)
	_, ok := env.Settings.Load()
	assert.False(t, ok)
}

func TestFleet_Bootstrap_UnusableProviderPathFallsBack(t *testing.T) {
	env := testutil.NewEnv(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	fallback := testutil.StorageDir(t)

	err := env.Fleet.Bootstrap(context.Background(), staticProvider{path: filepath.Join(blocker, "sub")}, fallback)

	require.NoError(t, err)
	assert.Equal(t, fallback, env.Fleet.Status(context.Background()).StoragePath)
}

func TestFleet_Bootstrap_ProviderErrorFallsBack(t *testing.T) {
	env := testutil.NewEnv(t)
	fallback := testutil.StorageDir(t)

	err := env.Fleet.Bootstrap(context.Background(), staticProvider{err: errors.New("stdin closed")}, fallback)

	require.NoError(t, err)
	assert.Equal(t, fallback, env.Fleet.Status(context.Background()).StoragePath)
}

func TestFleet_Bootstrap_MalformedLogStartsEmpty(t *testing.T) {
	env := testutil.NewEnv(t)
	dir := testutil.StorageDir(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs.json"), []byte("[{"), 0o600))
	env.Settings.Save(dir)

	require.NoError(t, env.Fleet.Bootstrap(context.Background(), service.NoPrompt{}, testutil.StorageDir(t)))

	assert.Empty(t, env.Fleet.ListRecords(context.Background()))
	assert.Contains(t, env.Logs.String(), "ignoring unreadable trip log")
}

func TestFleet_Bootstrap_InvalidRecordsStartEmpty(t *testing.T) {
	env := testutil.NewEnv(t)
	dir := testutil.StorageDir(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	bad := `[{"id":"x","vehicle":"A","direction":"n","route":"","departAt":"2025-03-01 08:00:00","returnAt":null,"status":"returned"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs.json"), []byte(bad), 0o600))
	env.Settings.Save(dir)

	require.NoError(t, env.Fleet.Bootstrap(context.Background(), service.NoPrompt{}, testutil.StorageDir(t)))

	assert.Empty(t, env.Fleet.ListRecords(context.Background()))
	assert.Contains(t, env.Logs.String(), "ignoring invalid trip log")
}

func TestFleet_Bootstrap_LegacyLog(t *testing.T) {
	env := testutil.NewEnv(t)
	dir := testutil.StorageDir(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	legacy := `[{"id":"x","vehicle":"A","direction":"n","route":"","departAt":"2025-03-01 08:00:00","returnAt":null,"status":"В рейсе"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs.json"), []byte(legacy), 0o600))
	env.Settings.Save(dir)

	require.NoError(t, env.Fleet.Bootstrap(context.Background(), service.NoPrompt{}, testutil.StorageDir(t)))

	back, err := env.Fleet.MarkReturn(context.Background(), domain.ReturnRequest{ID: "x"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReturned, back.Status)
	assert.Contains(t, csvLines(t, dir)[1], ",returned")
}
