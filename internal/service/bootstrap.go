package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// PathProvider supplies a storage directory at startup when none has been
// saved, typically by asking an operator. An empty result selects the
// fallback directory.
type PathProvider interface {
	StoragePath(ctx context.Context) (string, error)
}

// NoPrompt is a PathProvider that never supplies a path.
type NoPrompt struct{}

// StoragePath implements PathProvider.
func (NoPrompt) StoragePath(context.Context) (string, error) { return "", nil }

// Bootstrap resolves the storage directory and seeds the trip log from it.
//
// The saved settings win. Otherwise provider is asked; a path it returns is
// resolved, created, and saved. If provider returns nothing or its path cannot
// be created, fallback is created and used without being saved. A missing or
// malformed logs.json leaves the log empty.
func (f *Fleet) Bootstrap(ctx context.Context, provider PathProvider, fallback string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path, ok := f.settings.Load()
	if !ok {
		var err error
		path, err = f.startupPath(ctx, provider, fallback)
		if err != nil {
			return err
		}
	}
	f.storagePath = path
	f.log.InfoContext(ctx, "storage path configured", "path", path)

	records, err := f.mirror.Load(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		f.log.WarnContext(ctx, "ignoring unreadable trip log", "path", path, "error", err)
		return nil
	}
	if err := f.ledger.Seed(records); err != nil {
		f.log.WarnContext(ctx, "ignoring invalid trip log", "path", path, "error", err)
		return nil
	}
	f.log.InfoContext(ctx, "trip log loaded", "records", len(records))
	return nil
}

// startupPath picks the directory used when no settings were saved.
// Callers must hold f.mu.
func (f *Fleet) startupPath(ctx context.Context, provider PathProvider, fallback string) (string, error) {
	candidate, err := provider.StoragePath(ctx)
	if err != nil {
		f.log.WarnContext(ctx, "storage path prompt failed", "error", err)
		candidate = ""
	}
	if candidate != "" {
		abs, err := filepath.Abs(candidate)
		if err == nil {
			err = f.mirror.EnsureDir(abs)
		}
		if err == nil {
			f.settings.Save(abs)
			return abs, nil
		}
		f.log.WarnContext(ctx, "cannot use provided storage path, falling back", "path", candidate, "error", err)
	}

	abs, err := filepath.Abs(fallback)
	if err != nil {
		return "", fmt.Errorf("service.Fleet.Bootstrap: resolve fallback: %w", err)
	}
	if err := f.mirror.EnsureDir(abs); err != nil {
		return "", fmt.Errorf("service.Fleet.Bootstrap: %w", err)
	}
	return abs, nil
}
