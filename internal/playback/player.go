package playback

import "errors"

// ErrNoPlayer is returned by backends when no player is being followed.
var ErrNoPlayer = errors.New("no active player")

// Controls is the transport surface driven by notification actions.
type Controls interface {
	Play() error
	Pause() error
	Rewind() error
	FastForward() error
	SkipToPrevious() error
	SkipToNext() error
	Stop() error
}

// Player is a media player whose state can be read and controlled.
type Player interface {
	Controls

	// Snapshot returns the current state. Called fresh on every read.
	Snapshot() Snapshot
	// MediaSource returns the loaded item, or nil if nothing is loaded.
	MediaSource() *MediaSource
}

// Raiser is implemented by players that can bring their UI to the front.
type Raiser interface {
	Raise() error
}

// PlayerSource provides the player currently being followed.
type PlayerSource interface {
	// ActivePlayer returns nil when no player is active.
	ActivePlayer() Player
}
