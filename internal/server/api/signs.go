package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/sign"
	"github.com/ayusman/mudra/internal/store"
)

// SignsHandler handles HTTP requests for custom dictionary entries.
// Changes take effect at the next engine initialization; the built-in
// tables are never modified.
type SignsHandler struct {
	store *store.Store
}

// NewSignsHandler creates a new SignsHandler with the given store.
func NewSignsHandler(s *store.Store) *SignsHandler {
	return &SignsHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to
// the appropriate methods.
func (h *SignsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/signs or /api/signs/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/signs")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createSignRequest struct {
	Language       string  `json:"language"`
	Key            string  `json:"key"`
	Value          string  `json:"value"`
	Type           string  `json:"type"`
	BaseConfidence float64 `json:"base_confidence"`
}

type signResponse struct {
	ID             string  `json:"id"`
	Language       string  `json:"language"`
	Key            string  `json:"key"`
	Value          string  `json:"value"`
	Type           string  `json:"type"`
	BaseConfidence float64 `json:"base_confidence"`
	CreatedAt      string  `json:"created_at"`
}

type listSignsResponse struct {
	Signs []signResponse `json:"signs"`
}

func toSignResponse(cs *store.CustomSign) signResponse {
	return signResponse{
		ID:             cs.ID,
		Language:       cs.Language,
		Key:            cs.Key,
		Value:          cs.Value,
		Type:           cs.Type,
		BaseConfidence: cs.BaseConfidence,
		CreatedAt:      cs.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h *SignsHandler) list(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("language")
	if language == "" {
		language = "asl"
	}
	if !sign.IsSupported(language) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported language"})
		return
	}

	signs, err := h.store.Signs().ListByLanguage(language)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list signs"})
		return
	}

	resp := listSignsResponse{Signs: make([]signResponse, 0, len(signs))}
	for _, cs := range signs {
		resp.Signs = append(resp.Signs, toSignResponse(cs))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SignsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if req.Key == "" || req.Value == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "key and value are required"})
		return
	}
	if !sign.IsSupported(req.Language) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported language"})
		return
	}
	switch sign.Type(req.Type) {
	case sign.TypeAlphabet, sign.TypeWord, sign.TypePhrase, sign.TypeDynamic:
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid sign type"})
		return
	}
	if req.BaseConfidence <= 0 || req.BaseConfidence > 1 {
		req.BaseConfidence = 0.7
	}

	cs := &store.CustomSign{
		ID:             uuid.NewString(),
		Language:       req.Language,
		Key:            req.Key,
		Value:          req.Value,
		Type:           req.Type,
		BaseConfidence: req.BaseConfidence,
	}
	if err := h.store.Signs().Create(cs); err != nil {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "failed to create sign"})
		return
	}

	writeJSON(w, http.StatusCreated, toSignResponse(cs))
}

func (h *SignsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	cs, err := h.store.Signs().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "sign not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load sign"})
		return
	}
	writeJSON(w, http.StatusOK, toSignResponse(cs))
}

func (h *SignsHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Signs().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "sign not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to delete sign"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
