package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/engine"
)

// QueryHandler serves the read-only query surface: the last detected sign
// and the supported languages.
type QueryHandler struct {
	engine *engine.Engine
}

// NewQueryHandler creates a new QueryHandler for the given engine.
func NewQueryHandler(e *engine.Engine) *QueryHandler {
	return &QueryHandler{engine: e}
}

type lastSignResponse struct {
	Sign interface{} `json:"sign"`
}

type languagesResponse struct {
	Languages []string `json:"languages"`
	Active    string   `json:"active"`
}

// Last handles GET /api/last. The sign field is null when nothing has been
// recognized yet.
func (h *QueryHandler) Last(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body lastSignResponse
	if last := h.engine.LastSign(); last != nil {
		body.Sign = last
	}
	writeJSON(w, http.StatusOK, body)
}

// Languages handles GET /api/languages.
func (h *QueryHandler) Languages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, languagesResponse{
		Languages: h.engine.SupportedLanguages(),
		Active:    h.engine.Config().ActiveLanguage,
	})
}
