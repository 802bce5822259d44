// Package notify posts the now playing desktop notification and delivers
// taps on its action buttons back to the process.
package notify

import "image"

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Action is a user-invokable command shown as a notification button.
type Action int

const (
	ActionPlay Action = iota
	ActionPause
	ActionRewind
	ActionFastForward
	ActionPrevious
	ActionNext
	ActionStop
)

type actionInfo struct {
	name  string // routing key
	label string
	icon  string // freedesktop icon name
}

var actionTable = [...]actionInfo{
	ActionPlay:        {name: "play", label: "Play", icon: "media-playback-start"},
	ActionPause:       {name: "pause", label: "Pause", icon: "media-playback-pause"},
	ActionRewind:      {name: "rewind", label: "Rewind", icon: "media-seek-backward"},
	ActionFastForward: {name: "fast_forward", label: "Fast Forward", icon: "media-seek-forward"},
	ActionPrevious:    {name: "previous", label: "Previous", icon: "media-skip-backward"},
	ActionNext:        {name: "next", label: "Next", icon: "media-skip-forward"},
	ActionStop:        {name: "stop", label: "Stop", icon: "media-playback-stop"},
}

// ContentActionName is the routing key delivered when the notification body
// is clicked. It is the freedesktop "default" action.
const ContentActionName = "default"

// Name returns the routing key of the action.
func (a Action) Name() string {
	if !a.valid() {
		return ""
	}
	return actionTable[a].name
}

// Label returns the human-readable button label.
func (a Action) Label() string {
	if !a.valid() {
		return ""
	}
	return actionTable[a].label
}

// Icon returns the icon name of the button.
func (a Action) Icon() string {
	if !a.valid() {
		return ""
	}
	return actionTable[a].icon
}

// String returns the button label, or "Unknown".
func (a Action) String() string {
	if !a.valid() {
		return "Unknown"
	}
	return actionTable[a].label
}

func (a Action) valid() bool {
	return a >= 0 && int(a) < len(actionTable)
}

// Actions returns every action in declaration order.
func Actions() []Action {
	out := make([]Action, len(actionTable))
	for i := range actionTable {
		out[i] = Action(i)
	}
	return out
}

// ActionNames returns the routing keys of every action.
func ActionNames() []string {
	names := make([]string, len(actionTable))
	for i, info := range actionTable {
		names[i] = info.name
	}
	return names
}

// ParseAction resolves a routing key. Returns false for unknown keys.
func ParseAction(name string) (Action, bool) {
	for i, info := range actionTable {
		if info.name == name {
			return Action(i), true
		}
	}
	return 0, false
}

// Slot identifies a notification display position. Posting to a slot
// replaces whatever the slot currently shows.
type Slot uint32

// NowPlayingSlot is the single slot owned by the now playing notification.
const NowPlayingSlot Slot = 1

// Payload is the complete description of a notification.
type Payload struct {
	Title         string
	Subtitle      string // empty means no subtitle
	Actions       [3]Action
	Thumbnail     image.Image // nil means no artwork
	ContentAction string      // routing key for a tap on the body
	DismissAction Action      // routed when the user dismisses the notification
	Ongoing       bool        // resists casual dismissal
}

// Notifier is the platform notification facility.
type Notifier interface {
	// EnsureChannel prepares the notification category. Idempotent.
	EnsureChannel() error
	// Post displays p in slot, replacing any prior payload.
	Post(slot Slot, p Payload) error
	// Cancel clears slot. No-op if nothing is posted.
	Cancel(slot Slot) error
}

// Handler receives routed action names.
type Handler interface {
	HandleAction(name string)
}

// Dispatcher delivers named actions to registered handlers.
type Dispatcher interface {
	Register(names []string, h Handler) error
	Unregister(h Handler) error
}
