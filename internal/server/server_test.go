package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/engine"
	"github.com/ayusman/mudra/internal/store"
)

func testServer(t *testing.T) (*Server, *engine.Engine, *store.Store) {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	mock := detector.NewMockDetector()
	eng := engine.New(engine.Options{Primary: mock, Store: st})
	t.Cleanup(eng.Close)
	if err := eng.Start(); err != nil {
		t.Fatalf("Failed to start engine: %v", err)
	}

	return New(Config{Engine: eng, Store: st}), eng, st
}

func doRequest(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]interface{}
	decodeBody(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
	if body["running"] != true {
		t.Errorf("running field = %v, want true", body["running"])
	}
}

func TestHealthMethodNotAllowed(t *testing.T) {
	srv, _, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/health", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestGetConfig(t *testing.T) {
	srv, eng, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/config", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var cfg engine.Config
	decodeBody(t, rec, &cfg)
	if cfg != eng.Config() {
		t.Errorf("config = %+v, want %+v", cfg, eng.Config())
	}
}

func TestUpdateConfig(t *testing.T) {
	srv, eng, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPut, "/api/config", map[string]interface{}{
		"recognition_threshold": 0.8,
		"active_language":       "bsl",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Config  engine.Config `json:"config"`
		Ignored []string      `json:"ignored"`
	}
	decodeBody(t, rec, &body)
	if len(body.Ignored) != 0 {
		t.Errorf("ignored = %v, want none", body.Ignored)
	}
	if body.Config.RecognitionThreshold != 0.8 || body.Config.ActiveLanguage != "bsl" {
		t.Errorf("config = %+v", body.Config)
	}
	if eng.Config().ActiveLanguage != "bsl" {
		t.Error("update did not reach the engine")
	}
}

func TestUpdateConfigReportsIgnoredFields(t *testing.T) {
	srv, eng, _ := testServer(t)
	before := eng.Config()

	rec := doRequest(t, srv, http.MethodPut, "/api/config", map[string]interface{}{
		"recognition_threshold": 2.0,
		"active_language":       "klingon",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Config  engine.Config `json:"config"`
		Ignored []string      `json:"ignored"`
	}
	decodeBody(t, rec, &body)
	if len(body.Ignored) != 2 {
		t.Errorf("ignored = %v, want both invalid fields", body.Ignored)
	}
	if body.Config != before {
		t.Errorf("config = %+v, want unchanged %+v", body.Config, before)
	}
}

func TestUpdateConfigBadBody(t *testing.T) {
	srv, _, _ := testServer(t)

	req := httptest.NewRequest(http.MethodPut, "/api/config", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLastSignEmpty(t *testing.T) {
	srv, _, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/last", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]interface{}
	decodeBody(t, rec, &body)
	if body["sign"] != nil {
		t.Errorf("sign = %v, want null before any recognition", body["sign"])
	}
}

func TestLanguagesEndpoint(t *testing.T) {
	srv, _, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/languages", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Languages []string `json:"languages"`
		Active    string   `json:"active"`
	}
	decodeBody(t, rec, &body)
	if len(body.Languages) != 3 {
		t.Errorf("languages = %v, want 3 entries", body.Languages)
	}
	if body.Active != "asl" {
		t.Errorf("active = %q, want asl", body.Active)
	}
}

func TestSignsCRUD(t *testing.T) {
	srv, _, _ := testServer(t)

	// Create.
	rec := doRequest(t, srv, http.MethodPost, "/api/signs", map[string]interface{}{
		"language":        "asl",
		"key":             "custom_test",
		"value":           "Test",
		"type":            "word",
		"base_confidence": 0.7,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &created)
	if created.ID == "" {
		t.Fatal("create response has no id")
	}

	// List.
	rec = doRequest(t, srv, http.MethodGet, "/api/signs?language=asl", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var list struct {
		Signs []struct {
			Key string `json:"key"`
		} `json:"signs"`
	}
	decodeBody(t, rec, &list)
	if len(list.Signs) != 1 || list.Signs[0].Key != "custom_test" {
		t.Errorf("list = %+v, want the created sign", list.Signs)
	}

	// Get.
	rec = doRequest(t, srv, http.MethodGet, "/api/signs/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d, want 200", rec.Code)
	}

	// Delete.
	rec = doRequest(t, srv, http.MethodDelete, "/api/signs/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/api/signs/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestCreateSignValidation(t *testing.T) {
	srv, _, _ := testServer(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing key", map[string]interface{}{"language": "asl", "value": "X", "type": "word"}},
		{"missing value", map[string]interface{}{"language": "asl", "key": "k", "type": "word"}},
		{"bad language", map[string]interface{}{"language": "klingon", "key": "k", "value": "X", "type": "word"}},
		{"bad type", map[string]interface{}{"language": "asl", "key": "k", "value": "X", "type": "emoji"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/signs", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestRecognizeRejectsGet(t *testing.T) {
	srv, _, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/recognize", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRecognizeRejectsEmptyBody(t *testing.T) {
	srv, _, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/recognize", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
