package handler

// The export endpoints send a mirror file from the storage directory as an
// attachment. GET /api/export_csv is kept for existing clients.

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/JK-25/condor-car-tracker-2025.io/internal/domain"
)

// ExportCSV handles GET /api/export_csv.
func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	s.sendExport(w, r, domain.FormatCSV)
}

// Export handles GET /api/export.
// Use ?format=json to receive logs.json; default is CSV.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	format, err := domain.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.sendExport(w, r, format)
}

func (s *Server) sendExport(w http.ResponseWriter, r *http.Request, format domain.ExportFormat) {
	file, err := s.fleet.Export(r.Context(), format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		s.log.ErrorContext(r.Context(), "can't send file", "file", file.Name, "error", err)
	}
}
