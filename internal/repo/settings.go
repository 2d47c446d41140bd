package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// SettingsStore persists the chosen storage directory across restarts.
// Failures are logged by the implementation; callers never see a save error.
type SettingsStore interface {
	// Load returns the saved storage path, or ok=false when the file is
	// absent, empty, or unreadable.
	Load() (path string, ok bool)

	// Save overwrites the file with path. An empty path is saved as null.
	Save(path string)

	// Remove deletes the settings file. A missing file is not an error.
	Remove() error
}

// settingsDoc is the on-disk shape of the settings file.
type settingsDoc struct {
	StoragePath *string `json:"storage_path"`
}

// fileSettingsStore keeps the settings as a JSON document at a fixed path.
type fileSettingsStore struct {
	file string
	log  *slog.Logger
}

// NewSettingsStore constructs a SettingsStore backed by file. Relative paths
// resolve against the process working directory.
func NewSettingsStore(file string, log *slog.Logger) SettingsStore {
	return &fileSettingsStore{file: file, log: log}
}

func (s *fileSettingsStore) Load() (string, bool) {
	data, err := os.ReadFile(s.file)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("failed to read settings", "file", s.file, "error", err)
		}
		return "", false
	}
	var doc settingsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn("ignoring corrupt settings file", "file", s.file, "error", err)
		return "", false
	}
	if doc.StoragePath == nil || *doc.StoragePath == "" {
		return "", false
	}
	return *doc.StoragePath, true
}

func (s *fileSettingsStore) Save(path string) {
	var doc settingsDoc
	if path != "" {
		doc.StoragePath = &path
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.log.Error("failed to encode settings", "error", err)
		return
	}
	if err := writeFileAtomic(s.file, data); err != nil {
		s.log.Error("failed to save settings", "file", s.file, "error", err)
	}
}

func (s *fileSettingsStore) Remove() error {
	if err := os.Remove(s.file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("repo.SettingsStore.Remove: %w", err)
	}
	return nil
}
