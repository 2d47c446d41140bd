// Package testutil provides shared helpers for tests that need a wired Fleet,
// a scratch storage directory, or a logger whose output can be inspected.
package testutil

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/JK-25/condor-car-tracker-2025.io/internal/ledger"
	"github.com/JK-25/condor-car-tracker-2025.io/internal/repo"
	"github.com/JK-25/condor-car-tracker-2025.io/internal/service"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LogBuffer is a concurrency-safe sink for slog output.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything logged so far.
func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// NewBufferedLogger returns a JSON logger writing into the returned buffer.
func NewBufferedLogger() (*slog.Logger, *LogBuffer) {
	buf := &LogBuffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// Env is a Fleet wired to real file-system collaborators under t.TempDir().
type Env struct {
	Fleet        *service.Fleet
	Mirror       repo.TripMirror
	Settings     repo.SettingsStore
	SettingsFile string
	Logs         *LogBuffer
}

// NewEnv builds a Fleet with a file mirror and a settings file inside a fresh
// temp directory. No storage path is configured.
func NewEnv(t *testing.T, opts ...ledger.Option) *Env {
	t.Helper()

	log, logs := NewBufferedLogger()
	settingsFile := filepath.Join(t.TempDir(), "config.json")
	mirror := repo.NewTripMirror()
	settings := repo.NewSettingsStore(settingsFile, log)

	return &Env{
		Fleet:        service.NewFleet(ledger.New(opts...), mirror, settings, log),
		Mirror:       mirror,
		Settings:     settings,
		SettingsFile: settingsFile,
		Logs:         logs,
	}
}

// StorageDir returns a fresh absolute directory path that does not exist yet.
func StorageDir(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "fleet-data")
}
