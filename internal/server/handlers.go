package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/fundwatch/internal/common"
	"github.com/bobmcallan/fundwatch/internal/interfaces"
	"github.com/bobmcallan/fundwatch/internal/models"
	"github.com/bobmcallan/fundwatch/internal/services/mirror"
	"github.com/bobmcallan/fundwatch/internal/storage"
)

// handleHealth responds to /api/health with {"status":"ok"}.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion responds to /api/version with build info.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, common.CurrentVersion())
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Fund      string              `json:"fund"`
	Files     []models.FileStatus `json:"files"`
	LastRun   *models.RunManifest `json:"last_run,omitempty"`
	NextRun   *time.Time          `json:"next_run,omitempty"`
	StartedAt time.Time           `json:"started_at"`
}

// handleStatus reports the JSON mirror files and the last update run.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Fund:      s.app.Config.Fund.ReferenceTicker,
		Files:     s.app.MirrorService.Status(),
		StartedAt: s.app.StartupTime,
	}

	manifest, err := s.app.ReadManifest()
	switch {
	case err == nil:
		resp.LastRun = manifest
	case !errors.Is(err, storage.ErrNotFound):
		s.logger.Warn().Err(err).Msg("Failed to read run manifest")
	}

	if next := s.app.NextRun(); !next.IsZero() {
		resp.NextRun = &next
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleTableList responds to /api/tables with the mirrored table names.
func (s *Server) handleTableList(w http.ResponseWriter, r *http.Request) {
	names := make([]string, len(mirror.Entries))
	for i, e := range mirror.Entries {
		names[i] = strings.TrimSuffix(e.JSON, ".json")
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tables": names})
}

// handleTable serves GET /api/tables/{name} straight from the JSON mirror.
// The name may be given with or without the .json extension.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	if !mirror.IsMirrored(name) {
		writeError(w, http.StatusNotFound, "unknown_table", "unknown table: "+strings.TrimSuffix(name, ".json"))
		return
	}

	s.serveJSONFile(w, name)
}

// handleManifest serves the manifest of the last update run.
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	s.serveJSONFile(w, models.FileManifest)
}

func (s *Server) serveJSONFile(w http.ResponseWriter, name string) {
	data, err := s.app.Store.ReadFile(interfaces.AreaJSON, name)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_generated", name+" has not been generated yet")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("file", name).Msg("Failed to read JSON file")
		writeError(w, http.StatusInternalServerError, "read_failed", "failed to read "+name)
		return
	}

	if st := s.app.Store.Stat(interfaces.AreaJSON, name); st.Exists {
		w.Header().Set("Last-Modified", st.LastModified.UTC().Format(http.TimeFormat))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
