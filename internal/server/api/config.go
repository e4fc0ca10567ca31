// Package api provides HTTP API handlers for the recognition engine.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/engine"
)

// ConfigHandler handles reads and updates of the pipeline configuration.
type ConfigHandler struct {
	engine *engine.Engine
}

// NewConfigHandler creates a new ConfigHandler for the given engine.
func NewConfigHandler(e *engine.Engine) *ConfigHandler {
	return &ConfigHandler{engine: e}
}

type updateConfigResponse struct {
	Config  engine.Config `json:"config"`
	Ignored []string      `json:"ignored,omitempty"`
}

// ServeHTTP implements the http.Handler interface.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.engine.Config())
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// update merges a partial configuration. Invalid fields are not an HTTP
// error: they are skipped by the engine and echoed back in the ignored
// list, with the prior values retained.
func (h *ConfigHandler) update(w http.ResponseWriter, r *http.Request) {
	var patch engine.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	cfg, ignored := h.engine.UpdateConfig(patch)
	writeJSON(w, http.StatusOK, updateConfigResponse{Config: cfg, Ignored: ignored})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
