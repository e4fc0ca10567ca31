package classify

import "github.com/ayusman/mudra/internal/detector"

// FeatureLength is the fixed size of the extracted feature vector. The
// model classifier has a fixed input shape, so the vector is zero-padded
// to this length regardless of how many hands were detected.
const FeatureLength = 200

// adjacentFingertipPairs lists the fingertip pairs whose distances are
// part of the per-hand feature block, thumb→pinky order.
var adjacentFingertipPairs = [4][2]int{
	{detector.ThumbTip, detector.IndexTip},
	{detector.IndexTip, detector.MiddleTip},
	{detector.MiddleTip, detector.RingTip},
	{detector.RingTip, detector.PinkyTip},
}

// ExtractFeatures maps up to two hands to a fixed-length numeric vector.
// Per hand, in order: the five wrist→fingertip distances, the four
// adjacent fingertip-pair distances, the 21 landmarks with x and y min-max
// normalized into [0,1] (z passed through) flattened, and one scalar
// encoding handedness (0 = Left, 1 = Right). The result is zero-padded to
// FeatureLength.
func ExtractFeatures(hands []detector.HandLandmarks) []float64 {
	features := make([]float64, 0, FeatureLength)

	for i, hand := range hands {
		if i >= 2 {
			break
		}
		features = appendHandFeatures(features, &hand)
	}

	for len(features) < FeatureLength {
		features = append(features, 0)
	}
	return features[:FeatureLength]
}

func appendHandFeatures(features []float64, hand *detector.HandLandmarks) []float64 {
	wrist := hand.Points[detector.Wrist]

	for _, tip := range detector.FingertipIndices {
		features = append(features, detector.Distance3D(wrist, hand.Points[tip]))
	}

	for _, pair := range adjacentFingertipPairs {
		features = append(features, detector.Distance3D(hand.Points[pair[0]], hand.Points[pair[1]]))
	}

	minX, maxX := hand.Points[0].X, hand.Points[0].X
	minY, maxY := hand.Points[0].Y, hand.Points[0].Y
	for _, p := range hand.Points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	rangeX := maxX - minX
	rangeY := maxY - minY

	for _, p := range hand.Points {
		x, y := 0.0, 0.0
		if rangeX > 0 {
			x = (p.X - minX) / rangeX
		}
		if rangeY > 0 {
			y = (p.Y - minY) / rangeY
		}
		features = append(features, x, y, p.Z)
	}

	handedness := 0.0
	if hand.Handedness == "Right" {
		handedness = 1.0
	}
	return append(features, handedness)
}
