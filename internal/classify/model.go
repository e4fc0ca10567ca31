package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// ErrModelUnavailable is returned when the static classification model
// cannot be loaded. The condition is permanent for the session; callers
// fall back to the rule classifier and do not retry per frame.
var ErrModelUnavailable = errors.New("classification model unavailable")

// Model is a probability-producing linear classifier over the extracted
// feature vector: logits = W·x + b, followed by softmax. Output index i
// corresponds to the i-th key of the active dictionary's ordered key list.
type Model struct {
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// LoadModel reads and validates a model weights file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrModelUnavailable, path, err)
	}

	if len(m.Weights) == 0 {
		return nil, fmt.Errorf("%w: %s has no weight rows", ErrModelUnavailable, path)
	}
	if len(m.Bias) != len(m.Weights) {
		return nil, fmt.Errorf("%w: %s bias length %d does not match %d classes",
			ErrModelUnavailable, path, len(m.Bias), len(m.Weights))
	}
	for i, row := range m.Weights {
		if len(row) != FeatureLength {
			return nil, fmt.Errorf("%w: %s weight row %d has %d inputs, want %d",
				ErrModelUnavailable, path, i, len(row), FeatureLength)
		}
	}

	return &m, nil
}

// Predict returns the class probability distribution for a feature vector.
func (m *Model) Predict(features []float64) []float64 {
	logits := make([]float64, len(m.Weights))
	maxLogit := math.Inf(-1)

	for i, row := range m.Weights {
		sum := m.Bias[i]
		for j, w := range row {
			if j >= len(features) {
				break
			}
			sum += w * features[j]
		}
		logits[i] = sum
		if sum > maxLogit {
			maxLogit = sum
		}
	}

	// Softmax with the max subtracted for numeric stability.
	var total float64
	for i, l := range logits {
		logits[i] = math.Exp(l - maxLogit)
		total += logits[i]
	}
	for i := range logits {
		logits[i] /= total
	}
	return logits
}

// ModelClassifier is the preferred static classifier, wrapping a loaded
// probability model.
type ModelClassifier struct {
	model *Model
}

// NewModelClassifier wraps a loaded model.
func NewModelClassifier(model *Model) *ModelClassifier {
	return &ModelClassifier{model: model}
}

// Classify runs the feature vector through the model, picks the most
// probable class and maps it positionally onto the dictionary key order.
func (c *ModelClassifier) Classify(req Request) (Result, bool) {
	probs := c.model.Predict(req.Features)
	if len(probs) == 0 {
		return Result{}, false
	}

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	if best >= len(req.Keys) || probs[best] < req.Threshold {
		return Result{}, false
	}
	return Result{Key: req.Keys[best], Confidence: probs[best]}, true
}
