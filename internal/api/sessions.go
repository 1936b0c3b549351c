package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jlucaswrk/marauder-tui/internal/session"
)

// handleListSessions returns recorded session files, newest first.
func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	names, err := session.List(s.sessionsDir)
	if err != nil {
		s.logger.Error("listing sessions failed", "dir", s.sessionsDir, "error", err)
		writeInternalError(w, "listing sessions failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions":  names,
		"recording": s.engine.IsRecording(),
	})
}

// handleStartSession begins recording events to a new session file.
func (s *Server) handleStartSession(w http.ResponseWriter, _ *http.Request) {
	path, err := s.engine.StartSession()
	if err != nil {
		writeConflict(w, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"path": path,
		"name": filepath.Base(path),
	})
}

// handleStopSession stops the active recording. Stopping when no
// recording is active is a no-op.
func (s *Server) handleStopSession(w http.ResponseWriter, _ *http.Request) {
	s.engine.StopSession()
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

// handleExportSession converts a recorded session to CSV and returns
// the path of the generated file.
func (s *Server) handleExportSession(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(strings.TrimSpace(chi.URLParam(r, "name")))
	if name == "" || name == "." || name == ".." || !strings.HasSuffix(name, ".jsonl") {
		writeBadRequest(w, "session name must be a .jsonl file name")
		return
	}

	csvPath, err := session.ExportCSV(filepath.Join(s.sessionsDir, name))
	if err != nil {
		s.logger.Error("session export failed", "session", name, "error", err)
		writeNotFound(w, "exporting session failed: "+name)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"session": name,
		"csv":     filepath.Base(csvPath),
		"path":    csvPath,
	})
}
