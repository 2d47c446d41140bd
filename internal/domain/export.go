package domain

import "fmt"

// ExportFormat selects one of the two mirror representations.
type ExportFormat string

const (
	// FormatCSV is the flattened, header-first table.
	FormatCSV ExportFormat = "csv"
	// FormatJSON is the full-fidelity record array.
	FormatJSON ExportFormat = "json"
)

// ParseExportFormat maps a query value onto an ExportFormat.
// An empty value selects CSV.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unsupported export format %q", ErrInvalidInput, s)
}

// FileName is the name of the mirror file holding this format.
func (f ExportFormat) FileName() string {
	if f == FormatJSON {
		return "logs.json"
	}
	return "logs.csv"
}

// ContentType is the MIME type sent with an export of this format.
func (f ExportFormat) ContentType() string {
	if f == FormatJSON {
		return "application/json; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

// ExportFile is a mirror file ready to be sent to a client.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Summary is the service status snapshot.
type Summary struct {
	StoragePath  string
	VehicleCount int
	LogCount     int
}
