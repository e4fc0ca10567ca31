package detector

import (
	"errors"

	"gocv.io/x/gocv"
)

// ErrUnavailable is returned when a detector backend cannot service the
// call right now (subprocess died, remote endpoint unreachable). Callers
// treat it as "try the next backend", never as a hard failure.
var ErrUnavailable = errors.New("detector unavailable")

// ErrQuotaExceeded is returned when the remote detection endpoint refuses
// the call because the external quota gate is exhausted. Handled
// identically to ErrUnavailable by callers.
var ErrQuotaExceeded = errors.New("detection quota exceeded")

// Detector defines the interface for hand detection backends.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected; errors are reserved
	// for backend failures.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// ScriptPath overrides the location of the landmarker service script.
	// When empty the usual candidate paths are searched.
	ScriptPath string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:      2,
		MinConfidence: 0.5,
	}
}
