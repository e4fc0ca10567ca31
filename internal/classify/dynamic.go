package classify

import (
	"math"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/sign"
)

// Motion thresholds in normalized frame coordinates, so they hold at any
// capture resolution. Tuning values, not protocol requirements.
const (
	// minSnapshots is the minimum buffered history before motion analysis
	// is attempted.
	minSnapshots = 5

	// A lateral wave moves at least 10% of the frame width while staying
	// within 6% vertically.
	waveMinDX = 0.10
	waveMaxDY = 0.06

	// A forward/downward motion drops at least 8% of the frame height
	// while drifting at least 4% sideways.
	thanksMinDY = 0.08
	thanksMinDX = 0.04

	waveConfidence   = 0.75
	thanksConfidence = 0.70
)

// DynamicRecognizer classifies motion signs from the tracking buffer's
// first and last snapshots using wrist displacement heuristics. It reads
// the buffer but never mutates it.
type DynamicRecognizer struct{}

// NewDynamicRecognizer creates a DynamicRecognizer.
func NewDynamicRecognizer() *DynamicRecognizer {
	return &DynamicRecognizer{}
}

// Recognize compares the wrist of the first hand in the oldest and newest
// snapshots. Motion signs take priority over static ones, so the engine
// consults this before static classification.
func (r *DynamicRecognizer) Recognize(buf *TrackingBuffer) (Result, bool) {
	if buf.Len() < minSnapshots {
		return Result{}, false
	}

	oldest := buf.Oldest()
	newest := buf.Newest()
	if len(oldest) == 0 || len(newest) == 0 {
		return Result{}, false
	}

	from := oldest[0].Points[detector.Wrist]
	to := newest[0].Points[detector.Wrist]

	dx := to.X - from.X
	dy := to.Y - from.Y

	if math.Abs(dx) > waveMinDX && math.Abs(dy) < waveMaxDY {
		return Result{Key: sign.KeyGreeting, Confidence: waveConfidence}, true
	}
	if dy > thanksMinDY && dx > thanksMinDX {
		return Result{Key: sign.KeyThanks, Confidence: thanksConfidence}, true
	}
	return Result{}, false
}
