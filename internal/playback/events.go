package playback

// ChangeKind tells what part of the player changed.
type ChangeKind int

const (
	// ChangeState covers status, play intent and queue adjacency.
	ChangeState ChangeKind = iota
	// ChangeMedia is emitted when a different item is loaded.
	ChangeMedia
	// ChangePlayer is emitted when the followed player appears or vanishes.
	ChangePlayer
)

// Change is emitted by a player backend whenever something the
// notification depends on may have changed. Consumers read fresh state
// from the player instead of relying on the event payload.
type Change struct {
	Kind ChangeKind
}

func (k ChangeKind) String() string {
	switch k {
	case ChangeState:
		return "state"
	case ChangeMedia:
		return "media"
	case ChangePlayer:
		return "player"
	default:
		return "unknown"
	}
}
