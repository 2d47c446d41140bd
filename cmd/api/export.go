package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/JK-25/condor-car-tracker-2025.io/internal/config"
	"github.com/JK-25/condor-car-tracker-2025.io/internal/domain"
	"github.com/JK-25/condor-car-tracker-2025.io/internal/repo"
)

// export prints the trip log stored in --dir, or in the saved storage path,
// without starting the server.
func export(_ context.Context, cmd *cli.Command) error {
	format, err := domain.ParseExportFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("--format: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	dir := cmd.String("dir")
	if dir == "" {
		settings := repo.NewSettingsStore(cfg.SettingsFile, newLogger(os.Stderr, cfg.LogLevel))
		saved, ok := settings.Load()
		if !ok {
			saved = cfg.DefaultStoragePath
		}
		dir = saved
	}

	return writeExport(cmd.Root().Writer, repo.NewTripMirror(), dir, format)
}

// writeExport re-encodes logs.json from dir in format. A directory without a
// log prints an empty export.
func writeExport(w io.Writer, mirror repo.TripMirror, dir string, format domain.ExportFormat) error {
	records, err := mirror.Load(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load trip log: %w", err)
	}

	switch format {
	case domain.FormatJSON:
		return repo.EncodeJSON(w, records)
	default:
		return repo.EncodeCSV(w, records)
	}
}
