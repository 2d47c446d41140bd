// Package repo contains all file-system access for the fleet dispatch log:
// the JSON/CSV mirror of the trip log and the small settings file that
// remembers the storage directory.
// No business logic lives here, only encoding and file handling.
package repo

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JK-25/condor-car-tracker-2025.io/internal/domain"
)

// csvHeaders defines the column names written as the first row of logs.csv.
var csvHeaders = []string{
	"id", "vehicle", "direction", "route", "departAt", "returnAt", "status",
}

// TripMirror defines the persistence operations for the on-disk projection of
// the trip log. The service layer depends on this interface, not the file
// implementation, which allows failure paths to be unit-tested with a mock.
type TripMirror interface {
	// EnsureDir creates dir and any missing parents.
	EnsureDir(dir string) error

	// Write replaces logs.json and logs.csv in dir with the given records.
	// Both files are staged before either is renamed into place.
	Write(dir string, records []domain.TripRecord) error

	// Load decodes logs.json from dir. The returned error wraps
	// os.ErrNotExist when the file is absent.
	Load(dir string) ([]domain.TripRecord, error)

	// Read returns the raw bytes of the mirror file for format.
	// The returned error wraps os.ErrNotExist when the file is absent.
	Read(dir string, format domain.ExportFormat) ([]byte, error)

	// Remove deletes both mirror files. Missing files are not an error.
	Remove(dir string) error
}

// fsTripMirror is the local file-system implementation of TripMirror.
type fsTripMirror struct{}

// NewTripMirror constructs a TripMirror that writes to the local file system.
func NewTripMirror() TripMirror {
	return fsTripMirror{}
}

func (fsTripMirror) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("repo.TripMirror.EnsureDir: %w", err)
	}
	return nil
}

func (m fsTripMirror) Write(dir string, records []domain.TripRecord) error {
	var jsonBuf, csvBuf bytes.Buffer
	if err := EncodeJSON(&jsonBuf, records); err != nil {
		return fmt.Errorf("repo.TripMirror.Write: %w", err)
	}
	if err := EncodeCSV(&csvBuf, records); err != nil {
		return fmt.Errorf("repo.TripMirror.Write: %w", err)
	}
	if err := m.EnsureDir(dir); err != nil {
		return err
	}

	files := []struct {
		dst  string
		data []byte
		tmp  string
	}{
		{dst: filepath.Join(dir, domain.FormatJSON.FileName()), data: jsonBuf.Bytes()},
		{dst: filepath.Join(dir, domain.FormatCSV.FileName()), data: csvBuf.Bytes()},
	}
	defer func() {
		for _, f := range files {
			if f.tmp != "" {
				_ = os.Remove(f.tmp)
			}
		}
	}()

	for i := range files {
		tmp, err := stageFile(files[i].dst, files[i].data)
		if err != nil {
			return fmt.Errorf("repo.TripMirror.Write: %s: %w", filepath.Base(files[i].dst), err)
		}
		files[i].tmp = tmp
	}
	for i := range files {
		if err := os.Rename(files[i].tmp, files[i].dst); err != nil {
			return fmt.Errorf("repo.TripMirror.Write: rename %s: %w", filepath.Base(files[i].dst), err)
		}
		files[i].tmp = ""
	}
	return nil
}

func (fsTripMirror) Load(dir string) ([]domain.TripRecord, error) {
	data, err := os.ReadFile(filepath.Join(dir, domain.FormatJSON.FileName()))
	if err != nil {
		return nil, fmt.Errorf("repo.TripMirror.Load: %w", err)
	}
	var records []domain.TripRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("repo.TripMirror.Load: decode: %w", err)
	}
	if records == nil {
		records = []domain.TripRecord{}
	}
	return records, nil
}

func (fsTripMirror) Read(dir string, format domain.ExportFormat) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, format.FileName()))
	if err != nil {
		return nil, fmt.Errorf("repo.TripMirror.Read: %w", err)
	}
	return data, nil
}

func (fsTripMirror) Remove(dir string) error {
	var errs []error
	for _, f := range []domain.ExportFormat{domain.FormatCSV, domain.FormatJSON} {
		err := os.Remove(filepath.Join(dir, f.FileName()))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("repo.TripMirror.Remove: %w", err)
	}
	return nil
}

// EncodeJSON writes records as a pretty-printed JSON array.
// A nil slice is written as [] rather than null.
func EncodeJSON(w io.Writer, records []domain.TripRecord) error {
	if records == nil {
		records = []domain.TripRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// EncodeCSV writes the header row followed by one row per record.
// An absent return time is written as an empty cell.
func EncodeCSV(w io.Writer, records []domain.TripRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeaders); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(recordToCSV(r)); err != nil {
			return fmt.Errorf("encode csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return nil
}

// recordToCSV flattens a record in csvHeaders order.
func recordToCSV(r domain.TripRecord) []string {
	return []string{
		r.ID,
		r.Vehicle,
		r.Direction,
		r.Route,
		r.DepartAt.String(),
		domain.FormatOptional(r.ReturnAt),
		string(r.Status),
	}
}
