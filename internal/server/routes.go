package server

import "net/http"

// routes registers the API. GET patterns also answer HEAD; other methods get
// a 405 with an Allow header from the mux.
func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/version", s.handleVersion)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/manifest", s.handleManifest)
	mux.HandleFunc("GET /api/tables", s.handleTableList)
	mux.HandleFunc("GET /api/tables/{name}", s.handleTable)
	mux.HandleFunc("POST /api/shutdown", s.handleShutdown)
}

// handleShutdown lets a local dashboard stop a development server.
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if s.app.Config.IsProduction() {
		writeError(w, http.StatusForbidden, "forbidden", "shutdown is disabled in production")
		return
	}
	if s.shutdown == nil {
		writeError(w, http.StatusNotFound, "not_enabled", "shutdown is not enabled")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")
	select {
	case s.shutdown <- struct{}{}:
	default: // already requested
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "shutting down"})
}
