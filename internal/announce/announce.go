// Package announce delivers recognized signs to the external speech and
// haptic output channel. Delivery is fire-and-forget: the recognition
// pipeline never waits for, or depends on, the outcome.
package announce

import "golang.org/x/text/language"

// Announcer sends a recognized sign's text to the speech output channel.
type Announcer interface {
	// Announce queues text for speaking with a spoken-language hint.
	// It never blocks the caller; delivery is best effort.
	Announce(text string, lang language.Tag)

	// Close releases the announcer's resources.
	Close() error
}

// NopAnnouncer discards all announcements. Used when no output channel is
// configured.
type NopAnnouncer struct{}

// Announce discards the announcement.
func (NopAnnouncer) Announce(text string, lang language.Tag) {}

// Close is a no-op.
func (NopAnnouncer) Close() error { return nil }
