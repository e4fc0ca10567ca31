// Package classify provides feature extraction and the static and dynamic
// sign classifiers.
package classify

import "github.com/ayusman/mudra/internal/detector"

// DefaultHistorySize is the default bound of the tracking buffer.
const DefaultHistorySize = 30

// TrackingBuffer is a bounded FIFO of per-frame hand snapshots, consumed
// by the dynamic recognizer for motion analysis. It is owned by the
// engine, which guarantees a single mutator, so the buffer itself carries
// no locking.
type TrackingBuffer struct {
	snapshots [][]detector.HandLandmarks
	limit     int
}

// NewTrackingBuffer creates a buffer bounded to limit snapshots.
func NewTrackingBuffer(limit int) *TrackingBuffer {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &TrackingBuffer{
		snapshots: make([][]detector.HandLandmarks, 0, limit),
		limit:     limit,
	}
}

// Push appends a snapshot, evicting the oldest entry when the buffer is
// full.
func (b *TrackingBuffer) Push(hands []detector.HandLandmarks) {
	if len(b.snapshots) >= b.limit {
		copy(b.snapshots, b.snapshots[1:])
		b.snapshots = b.snapshots[:b.limit-1]
	}
	b.snapshots = append(b.snapshots, hands)
}

// Clear removes all snapshots.
func (b *TrackingBuffer) Clear() {
	b.snapshots = b.snapshots[:0]
}

// Len returns the number of buffered snapshots.
func (b *TrackingBuffer) Len() int {
	return len(b.snapshots)
}

// Oldest returns the oldest buffered snapshot, or nil when empty.
func (b *TrackingBuffer) Oldest() []detector.HandLandmarks {
	if len(b.snapshots) == 0 {
		return nil
	}
	return b.snapshots[0]
}

// Newest returns the most recent snapshot, or nil when empty.
func (b *TrackingBuffer) Newest() []detector.HandLandmarks {
	if len(b.snapshots) == 0 {
		return nil
	}
	return b.snapshots[len(b.snapshots)-1]
}

// SetLimit changes the bound, dropping the oldest snapshots if the buffer
// currently exceeds the new limit.
func (b *TrackingBuffer) SetLimit(limit int) {
	if limit <= 0 {
		return
	}
	b.limit = limit
	if overflow := len(b.snapshots) - limit; overflow > 0 {
		copy(b.snapshots, b.snapshots[overflow:])
		b.snapshots = b.snapshots[:limit]
	}
}
