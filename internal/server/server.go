// Package server provides the HTTP control and query surface for the
// recognition engine.
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/engine"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Config holds the server configuration.
type Config struct {
	Engine *engine.Engine
	Store  *store.Store
}

// Server represents the HTTP server for the recognition engine.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Engine != nil {
		configHandler := api.NewConfigHandler(s.config.Engine)
		s.mux.Handle("/api/config", configHandler)

		queryHandler := api.NewQueryHandler(s.config.Engine)
		s.mux.HandleFunc("/api/last", queryHandler.Last)
		s.mux.HandleFunc("/api/languages", queryHandler.Languages)

		recognizeHandler := api.NewRecognizeHandler(s.config.Engine)
		s.mux.Handle("/api/recognize", recognizeHandler)

		eventsHandler := NewEventsHandler(s.config.Engine)
		s.mux.Handle("/api/events", eventsHandler)
	}

	if s.config.Store != nil {
		signsHandler := api.NewSignsHandler(s.config.Store)
		s.mux.Handle("/api/signs", signsHandler)
		s.mux.Handle("/api/signs/", signsHandler)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": strings.TrimSpace(uptime.String()),
	}
	if s.config.Engine != nil {
		response["running"] = s.config.Engine.Running()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
