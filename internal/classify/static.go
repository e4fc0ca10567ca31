package classify

import "github.com/ayusman/mudra/internal/detector"

// Request carries one frame's classification input. Keys is the active
// dictionary's ordered key list; Threshold is the current recognition
// threshold.
type Request struct {
	Hands     []detector.HandLandmarks
	Features  []float64
	Keys      []string
	Threshold float64
}

// Result is a classification outcome: a dictionary key and the confidence
// the classifier assigns to it.
type Result struct {
	Key        string
	Confidence float64
}

// StaticClassifier maps a single-frame pose to a dictionary key. There are
// exactly two implementations: ModelClassifier (preferred, requires a
// loaded model) and RuleClassifier (deterministic fallback, always
// available). The choice is made once at engine initialization.
//
// Classify is stateless and performs no I/O. It returns false when no
// candidate clears the request threshold.
type StaticClassifier interface {
	Classify(req Request) (Result, bool)
}
