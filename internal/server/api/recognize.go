package api

import (
	"io"
	"net/http"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/engine"
)

// maxFrameBytes bounds the accepted request body; a full-HD JPEG stays
// well under this.
const maxFrameBytes = 8 << 20

// RecognizeHandler accepts one encoded camera frame per request and runs
// it through the recognition pipeline. Camera lifecycle stays with the
// capture collaborator; this is the frame ingestion boundary.
type RecognizeHandler struct {
	engine *engine.Engine
}

// NewRecognizeHandler creates a new RecognizeHandler for the given engine.
func NewRecognizeHandler(e *engine.Engine) *RecognizeHandler {
	return &RecognizeHandler{engine: e}
}

// ServeHTTP decodes the image body and submits it as one frame. Throttled
// or rejected frames still answer 200 with the cached last sign, matching
// the engine contract.
func (h *RecognizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxFrameBytes))
	if err != nil || len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing image body"})
		return
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil || mat.Empty() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable image"})
		return
	}
	defer mat.Close()

	var body lastSignResponse
	if result := h.engine.ProcessFrame(&mat); result != nil {
		body.Sign = result
	}
	writeJSON(w, http.StatusOK, body)
}
