// Package playback describes the player state read by the now playing
// notification and the control surface its buttons drive.
package playback

// State represents the player's transport state.
type State int

const (
	StateIdle State = iota
	StateBuffering
	StateReady
	StateEnded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateBuffering:
		return "Buffering"
	case StateReady:
		return "Ready"
	case StateEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// Projectable returns true if a notification can be shown for this state.
func (s State) Projectable() bool {
	return s == StateReady || s == StateBuffering
}

// Snapshot is a point-in-time read of the player state.
type Snapshot struct {
	State         State
	PlayWhenReady bool
	HasPrevious   bool
	HasNext       bool
	IsPlaying     bool
}

// SourceKind tells where the current item is played from.
type SourceKind int

const (
	SourceRemote SourceKind = iota
	SourceLocal
)

// String returns the source kind name.
func (k SourceKind) String() string {
	switch k {
	case SourceRemote:
		return "Remote"
	case SourceLocal:
		return "Local"
	default:
		return "Unknown"
	}
}

// MediaSource identifies the currently playing item.
type MediaSource struct {
	Kind     SourceKind
	ItemID   string
	ImageTag string // remote only, empty when unknown
	Name     string
	Artists  []string
}
