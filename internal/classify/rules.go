package classify

import (
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/sign"
)

// fistEpsilon is the maximum pairwise fingertip distance for a hand to
// count as a closed fist, in hand-scale units (wrist to middle MCP = 1).
// Measuring in hand-scale units keeps the predicate independent of how
// close the hand is to the camera.
const fistEpsilon = 1.0

// RuleClassifier is the deterministic geometric fallback. It evaluates a
// fixed-priority list of pose predicates over the first detected hand;
// the first matching rule wins. It needs no trained model and is always
// available.
type RuleClassifier struct {
	rules []poseRule
}

type poseRule struct {
	key        string
	confidence float64
	matches    func(h *detector.HandLandmarks) bool
}

// NewRuleClassifier creates the fallback classifier with its built-in
// rule set.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{
		rules: []poseRule{
			// Closed fist: every fingertip within fistEpsilon of every other.
			{sign.KeyLetterA, 0.80, isFist},
			// Flat hand: all five fingers extended.
			{sign.KeyLetterB, 0.75, isOpenPalm},
			// Index and middle extended, ring and pinky curled.
			{sign.KeyLetterV, 0.70, isVictory},
			// Only the index extended.
			{sign.KeyLetterD, 0.72, isPointing},
			// Thumb and pinky extended, the rest curled.
			{sign.KeyLetterY, 0.70, isShaka},
		},
	}
}

// Classify evaluates the rules in priority order against the first hand.
// Predicates run on the wrist-normalized pose so hand size and distance
// from the camera do not change the outcome.
func (c *RuleClassifier) Classify(req Request) (Result, bool) {
	if len(req.Hands) == 0 {
		return Result{}, false
	}
	hand := req.Hands[0].Normalize()

	for _, rule := range c.rules {
		if rule.confidence < req.Threshold {
			continue
		}
		if rule.matches(hand) {
			return Result{Key: rule.key, Confidence: rule.confidence}, true
		}
	}
	return Result{}, false
}

func isFist(h *detector.HandLandmarks) bool {
	tips := detector.FingertipIndices
	for i := 0; i < len(tips); i++ {
		for j := i + 1; j < len(tips); j++ {
			if detector.Distance3D(h.Points[tips[i]], h.Points[tips[j]]) >= fistEpsilon {
				return false
			}
		}
	}
	return true
}

func isOpenPalm(h *detector.HandLandmarks) bool {
	return thumbExtended(h) &&
		fingerExtended(h, detector.IndexTip, detector.IndexPIP) &&
		fingerExtended(h, detector.MiddleTip, detector.MiddlePIP) &&
		fingerExtended(h, detector.RingTip, detector.RingPIP) &&
		fingerExtended(h, detector.PinkyTip, detector.PinkyPIP)
}

func isVictory(h *detector.HandLandmarks) bool {
	return fingerExtended(h, detector.IndexTip, detector.IndexPIP) &&
		fingerExtended(h, detector.MiddleTip, detector.MiddlePIP) &&
		!fingerExtended(h, detector.RingTip, detector.RingPIP) &&
		!fingerExtended(h, detector.PinkyTip, detector.PinkyPIP)
}

func isPointing(h *detector.HandLandmarks) bool {
	return fingerExtended(h, detector.IndexTip, detector.IndexPIP) &&
		!fingerExtended(h, detector.MiddleTip, detector.MiddlePIP) &&
		!fingerExtended(h, detector.RingTip, detector.RingPIP) &&
		!fingerExtended(h, detector.PinkyTip, detector.PinkyPIP)
}

func isShaka(h *detector.HandLandmarks) bool {
	return thumbExtended(h) &&
		fingerExtended(h, detector.PinkyTip, detector.PinkyPIP) &&
		!fingerExtended(h, detector.IndexTip, detector.IndexPIP) &&
		!fingerExtended(h, detector.MiddleTip, detector.MiddlePIP) &&
		!fingerExtended(h, detector.RingTip, detector.RingPIP)
}

// fingerExtended reports whether a finger is straightened: its tip ends
// farther from the wrist than its PIP joint.
func fingerExtended(h *detector.HandLandmarks, tip, pip int) bool {
	wrist := h.Points[detector.Wrist]
	return detector.Distance3D(h.Points[tip], wrist) > detector.Distance3D(h.Points[pip], wrist)
}

// thumbExtended uses the index MCP as reference since the thumb folds
// across the palm rather than toward the wrist.
func thumbExtended(h *detector.HandLandmarks) bool {
	ref := h.Points[detector.IndexMCP]
	return detector.Distance3D(h.Points[detector.ThumbTip], ref) > detector.Distance3D(h.Points[detector.ThumbIP], ref)
}
