package detector

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func testFrame(t *testing.T) *gocv.Mat {
	t.Helper()
	mat := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { mat.Close() })
	return &mat
}

func annotationServer(t *testing.T, status int, resp annotateResponse) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/annotate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %q", r.Method)
		}
		w.WriteHeader(status)
		if status == http.StatusOK {
			json.NewEncoder(w).Encode(resp)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCloudDetectorHandObjects(t *testing.T) {
	srv := annotationServer(t, http.StatusOK, annotateResponse{
		Objects: []objectAnnotation{
			{Name: "hand", Box: boundingBox{X: 0.1, Y: 0.4, Width: 0.2, Height: 0.3}, Score: 0.9},
			{Name: "cup", Box: boundingBox{X: 0.6, Y: 0.6, Width: 0.1, Height: 0.1}, Score: 0.9},
		},
	})

	d := NewCloudDetector(CloudConfig{URL: srv.URL})
	hands, err := d.Detect(testFrame(t))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(hands) != 1 {
		t.Fatalf("got %d hands, want 1 (non-hand objects ignored)", len(hands))
	}
	if hands[0].Score > maxEstimatedScore {
		t.Errorf("Score = %v, want <= %v", hands[0].Score, maxEstimatedScore)
	}
}

func TestCloudDetectorFaceEstimate(t *testing.T) {
	srv := annotationServer(t, http.StatusOK, annotateResponse{
		Faces: []faceAnnotation{
			{Box: boundingBox{X: 0.3, Y: 0.1, Width: 0.2, Height: 0.25}, Score: 0.95},
		},
	})

	d := NewCloudDetector(CloudConfig{URL: srv.URL})
	hands, err := d.Detect(testFrame(t))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(hands) != 1 {
		t.Fatalf("got %d hands, want 1 estimated from the face", len(hands))
	}

	hand := hands[0]
	if hand.Score > maxEstimatedScore {
		t.Errorf("Score = %v, want capped at %v", hand.Score, maxEstimatedScore)
	}
	// The estimate sits in the signing space beside and below the face.
	wrist := hand.Points[Wrist]
	if wrist.Y <= 0.1 {
		t.Errorf("estimated wrist Y = %v, want below the face", wrist.Y)
	}
	for i, p := range hand.Points {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			t.Fatalf("point %d = %+v, want clamped to [0,1]", i, p)
		}
	}
}

func TestCloudDetectorNoAnnotations(t *testing.T) {
	srv := annotationServer(t, http.StatusOK, annotateResponse{})

	d := NewCloudDetector(CloudConfig{URL: srv.URL})
	hands, err := d.Detect(testFrame(t))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(hands) != 0 {
		t.Errorf("got %d hands, want 0", len(hands))
	}
}

func TestCloudDetectorQuotaExceeded(t *testing.T) {
	srv := annotationServer(t, http.StatusTooManyRequests, annotateResponse{})

	d := NewCloudDetector(CloudConfig{URL: srv.URL})
	_, err := d.Detect(testFrame(t))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("error = %v, want ErrQuotaExceeded", err)
	}
}

func TestCloudDetectorServerError(t *testing.T) {
	srv := annotationServer(t, http.StatusInternalServerError, annotateResponse{})

	d := NewCloudDetector(CloudConfig{URL: srv.URL})
	_, err := d.Detect(testFrame(t))
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestCloudDetectorUnreachable(t *testing.T) {
	d := NewCloudDetector(CloudConfig{
		URL:     "http://127.0.0.1:1",
		Timeout: 500 * time.Millisecond,
	})

	_, err := d.Detect(testFrame(t))
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestEstimateHandScoreCap(t *testing.T) {
	hand := estimateHandInBox(boundingBox{X: 0.2, Y: 0.2, Width: 0.3, Height: 0.4}, "Right", 0.99)
	if hand.Score != maxEstimatedScore {
		t.Errorf("Score = %v, want %v", hand.Score, maxEstimatedScore)
	}
}
