package detector

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// maxEstimatedScore caps the confidence of hands reconstructed from
// generic annotations. The cloud backend never sees actual hand keypoints,
// so its output must always rank below a real landmarker detection.
const maxEstimatedScore = 0.7

// CloudConfig holds settings for the remote image-annotation backend.
type CloudConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// CloudDetector is the remote fallback backend. It sends the encoded frame
// to a generic image-annotation service and heuristically maps the
// returned face and object annotations to estimated hand keypoint sets.
// Estimates are approximate by construction and carry a reduced score.
type CloudDetector struct {
	config CloudConfig
	client *http.Client
}

// NewCloudDetector creates a detector backed by the remote annotation
// endpoint configured in cfg.
func NewCloudDetector(cfg CloudConfig) *CloudDetector {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CloudDetector{
		config: cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// annotateRequest is the payload sent to the annotation service.
type annotateRequest struct {
	Image    string   `json:"image"` // base64-encoded JPEG
	Features []string `json:"features"`
}

// boundingBox is a normalized [0,1] rectangle in frame coordinates.
type boundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type faceAnnotation struct {
	Box   boundingBox `json:"box"`
	Score float64     `json:"score"`
}

type objectAnnotation struct {
	Name  string      `json:"name"`
	Box   boundingBox `json:"box"`
	Score float64     `json:"score"`
}

type annotateResponse struct {
	Faces   []faceAnnotation   `json:"faces"`
	Objects []objectAnnotation `json:"objects"`
}

// Detect encodes the frame, calls the remote service and maps its generic
// annotations to estimated hand landmarks.
func (d *CloudDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	payload, err := json.Marshal(annotateRequest{
		Image:    base64.StdEncoding.EncodeToString(buf.GetBytes()),
		Features: []string{"FACE_DETECTION", "OBJECT_LOCALIZATION"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, d.config.URL+"/v1/annotate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.config.APIKey != "" {
		req.Header.Set("X-Api-Key", d.config.APIKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrQuotaExceeded
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: annotation service returned %d", ErrUnavailable, resp.StatusCode)
	}

	var annotations annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&annotations); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	return d.mapAnnotations(&annotations), nil
}

// Close is a no-op; the HTTP client holds no per-session resources.
func (d *CloudDetector) Close() error {
	return nil
}

// mapAnnotations turns generic annotations into estimated hand keypoint
// sets. Hand-labeled objects are used directly; otherwise a hand is
// estimated in the signing space beside each detected face.
func (d *CloudDetector) mapAnnotations(a *annotateResponse) []HandLandmarks {
	var hands []HandLandmarks

	for _, obj := range a.Objects {
		if obj.Name != "hand" && obj.Name != "Hand" {
			continue
		}
		score := obj.Score * maxEstimatedScore
		hands = append(hands, estimateHandInBox(obj.Box, "Right", score))
	}
	if len(hands) > 0 {
		return hands
	}

	// No hand objects: estimate one hand per face, placed below and to the
	// side of the face where signing typically happens.
	for _, face := range a.Faces {
		handBox := boundingBox{
			X:      clamp01(face.Box.X + face.Box.Width*1.1),
			Y:      clamp01(face.Box.Y + face.Box.Height*0.8),
			Width:  face.Box.Width,
			Height: face.Box.Height * 1.2,
		}
		score := face.Score * maxEstimatedScore
		hands = append(hands, estimateHandInBox(handBox, "Right", score))
	}

	if len(hands) > 0 {
		log.WithField("hands", len(hands)).Debug("Cloud fallback produced estimated hand keypoints")
	}
	return hands
}

// estimateHandInBox synthesizes a neutral open-hand 21-point layout
// filling the given box: wrist at the bottom center, finger chains fanned
// toward the top. The layout is coarse on purpose; only gross position and
// motion of the estimate are meaningful downstream.
func estimateHandInBox(box boundingBox, handedness string, score float64) HandLandmarks {
	if score > maxEstimatedScore {
		score = maxEstimatedScore
	}

	h := HandLandmarks{Handedness: handedness, Score: score}

	at := func(fx, fy float64) Point3D {
		return Point3D{
			X: clamp01(box.X + box.Width*fx),
			Y: clamp01(box.Y + box.Height*fy),
			Z: 0,
		}
	}

	h.Points[Wrist] = at(0.5, 1.0)

	// Fractional x positions of the five finger chains across the box.
	fingerX := [5]float64{0.1, 0.35, 0.5, 0.65, 0.85}
	// Base landmark index of each finger chain (thumb uses CMC..Tip).
	fingerBase := [5]int{ThumbCMC, IndexMCP, MiddleMCP, RingMCP, PinkyMCP}

	for f := 0; f < 5; f++ {
		for j := 0; j < 4; j++ {
			// Joints step from near the palm (y=0.7) to the tip (y=0.1).
			fy := 0.7 - 0.2*float64(j)
			h.Points[fingerBase[f]+j] = at(fingerX[f], fy)
		}
	}

	return h
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
