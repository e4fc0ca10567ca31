// Package sign provides the recognition result type and the per-language
// sign dictionaries that map internal classification keys to displayable
// signs.
package sign

import "time"

// Type represents the category of a recognized sign.
type Type string

const (
	// TypeAlphabet is a single fingerspelled letter.
	TypeAlphabet Type = "alphabet"
	// TypeWord is a single-pose word sign.
	TypeWord Type = "word"
	// TypePhrase is a single-pose phrase sign.
	TypePhrase Type = "phrase"
	// TypeDynamic is a motion-based sign recognized over multiple frames.
	TypeDynamic Type = "dynamic"
)

// RecognizedSign is the pipeline's output unit. Instances are immutable
// once created; the engine retains only the most recent one.
type RecognizedSign struct {
	Type       Type      `json:"type"`
	Value      string    `json:"value"`
	Confidence float64   `json:"confidence"`
	Language   string    `json:"language"`
	Timestamp  time.Time `json:"timestamp"`
}
