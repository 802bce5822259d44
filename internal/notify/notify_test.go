package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUrgencyValues(t *testing.T) {
	// Verify urgency constants match D-Bus spec
	if UrgencyLow != 0 {
		t.Errorf("UrgencyLow = %d, want 0", UrgencyLow)
	}
	if UrgencyNormal != 1 {
		t.Errorf("UrgencyNormal = %d, want 1", UrgencyNormal)
	}
	if UrgencyCritical != 2 {
		t.Errorf("UrgencyCritical = %d, want 2", UrgencyCritical)
	}
}

func TestActions_FixedTable(t *testing.T) {
	tests := []struct {
		action Action
		name   string
		label  string
		icon   string
	}{
		{ActionPlay, "play", "Play", "media-playback-start"},
		{ActionPause, "pause", "Pause", "media-playback-pause"},
		{ActionRewind, "rewind", "Rewind", "media-seek-backward"},
		{ActionFastForward, "fast_forward", "Fast Forward", "media-seek-forward"},
		{ActionPrevious, "previous", "Previous", "media-skip-backward"},
		{ActionNext, "next", "Next", "media-skip-forward"},
		{ActionStop, "stop", "Stop", "media-playback-stop"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.action.Name())
			assert.Equal(t, tt.label, tt.action.Label())
			assert.Equal(t, tt.icon, tt.action.Icon())
		})
	}
}

func TestActions_AllDistinct(t *testing.T) {
	all := Actions()
	assert.Len(t, all, 7)

	seen := make(map[string]bool)
	for _, name := range ActionNames() {
		assert.False(t, seen[name], "duplicate routing name %q", name)
		seen[name] = true
	}
	assert.NotContains(t, seen, ContentActionName)
}

func TestParseAction(t *testing.T) {
	for _, a := range Actions() {
		got, ok := ParseAction(a.Name())
		assert.True(t, ok, "ParseAction(%q)", a.Name())
		assert.Equal(t, a, got)
	}

	_, ok := ParseAction("shuffle")
	assert.False(t, ok)
}

func TestAction_Invalid(t *testing.T) {
	a := Action(42)
	assert.Empty(t, a.Name())
	assert.Empty(t, a.Label())
	assert.Empty(t, a.Icon())
	assert.Equal(t, "Unknown", a.String())
}

func TestPayloadZeroValue(t *testing.T) {
	var p Payload
	if p.Thumbnail != nil {
		t.Error("zero value Thumbnail should be nil (no artwork)")
	}
	if p.Subtitle != "" {
		t.Error("zero value Subtitle should be empty (omitted)")
	}
	if p.Ongoing {
		t.Error("zero value Ongoing should be false")
	}
}
