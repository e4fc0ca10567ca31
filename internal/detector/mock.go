package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// FistLandmarks returns a preset hand forming a closed fist: all five
// fingertips tightly clustered, every finger curled toward the palm.
func FistLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	// Thumb folded across the palm.
	lm.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.76}
	lm.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.72}
	lm.Points[ThumbIP] = Point3D{X: 0.57, Y: 0.70}
	lm.Points[ThumbTip] = Point3D{X: 0.53, Y: 0.69}

	// Index finger curled.
	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	lm.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.63}
	lm.Points[IndexDIP] = Point3D{X: 0.53, Y: 0.66}
	lm.Points[IndexTip] = Point3D{X: 0.52, Y: 0.70}

	// Middle finger curled.
	lm.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66}
	lm.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.61}
	lm.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.65}
	lm.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.69}

	// Ring finger curled.
	lm.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68}
	lm.Points[RingPIP] = Point3D{X: 0.45, Y: 0.63}
	lm.Points[RingDIP] = Point3D{X: 0.47, Y: 0.66}
	lm.Points[RingTip] = Point3D{X: 0.48, Y: 0.70}

	// Pinky finger curled.
	lm.Points[PinkyMCP] = Point3D{X: 0.41, Y: 0.70}
	lm.Points[PinkyPIP] = Point3D{X: 0.41, Y: 0.66}
	lm.Points[PinkyDIP] = Point3D{X: 0.44, Y: 0.68}
	lm.Points[PinkyTip] = Point3D{X: 0.46, Y: 0.71}

	return lm
}

// OpenPalmLandmarks returns a preset hand with all five fingers extended
// outward from the palm.
func OpenPalmLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	// Thumb extended to the side.
	lm.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	lm.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	lm.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	lm.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	// Index finger extended upward.
	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	lm.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55}
	lm.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45}
	lm.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35}

	// Middle finger extended upward.
	lm.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66}
	lm.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52}
	lm.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40}
	lm.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28}

	// Ring finger extended upward.
	lm.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68}
	lm.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55}
	lm.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45}
	lm.Points[RingTip] = Point3D{X: 0.42, Y: 0.35}

	// Pinky finger extended upward.
	lm.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70}
	lm.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60}
	lm.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50}
	lm.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42}

	return lm
}

// PointingLandmarks returns a preset hand with only the index finger
// extended and the remaining fingers curled.
func PointingLandmarks() HandLandmarks {
	lm := FistLandmarks()

	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	lm.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.55}
	lm.Points[IndexDIP] = Point3D{X: 0.57, Y: 0.45}
	lm.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35}

	return lm
}

// TranslatedLandmarks returns a copy of lm shifted by (dx, dy) in frame
// coordinates. Useful for building motion sequences in tests.
func TranslatedLandmarks(lm HandLandmarks, dx, dy float64) HandLandmarks {
	out := lm
	for i := 0; i < NumLandmarks; i++ {
		out.Points[i].X += dx
		out.Points[i].Y += dy
	}
	return out
}
