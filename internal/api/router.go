package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		// Discovery collections
		r.Get("/aps", s.handleListAPs)
		r.Get("/stations", s.handleListStations)
		r.Get("/ble", s.handleListBLE)
		r.Get("/activity", s.handleActivity)
		r.Get("/raw", s.handleRawHistory)

		// Device commands
		r.Route("/commands", func(r chi.Router) {
			r.Post("/scan", s.handleScan)
			r.Post("/attack", s.handleAttack)
			r.Post("/blespam", s.handleBleSpam)
			r.Post("/stop", s.handleStop)
			r.Post("/clear", s.handleClear)
		})

		// Session recording
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/start", s.handleStartSession)
			r.Post("/stop", s.handleStopSession)
			r.Get("/{name}/export", s.handleExportSession)
		})

		// Survey archive (persisted sighting history)
		r.Route("/survey", func(r chi.Router) {
			r.Get("/aps", s.handleSurveyAPs)
			r.Get("/stations", s.handleSurveyStations)
			r.Get("/ble", s.handleSurveyBLE)
		})

		// WebSocket stream of engine notifications
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
