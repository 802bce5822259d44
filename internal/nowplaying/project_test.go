package nowplaying

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/nowplaying/internal/notify"
	"github.com/llehouerou/nowplaying/internal/playback"
)

// allSnapshots enumerates every flag combination for state.
func allSnapshots(state playback.State) []playback.Snapshot {
	var out []playback.Snapshot
	for i := range 16 {
		out = append(out, playback.Snapshot{
			State:         state,
			PlayWhenReady: i&1 != 0,
			HasPrevious:   i&2 != 0,
			HasNext:       i&4 != 0,
			IsPlaying:     i&8 != 0,
		})
	}
	return out
}

func TestProject_NotApplicable(t *testing.T) {
	src := playback.MediaSource{Name: "Song"}
	for _, state := range []playback.State{playback.StateIdle, playback.StateEnded} {
		for _, snap := range allSnapshots(state) {
			_, ok := Project(snap, src)
			assert.False(t, ok, "%+v", snap)
		}
	}
}

func TestProject_ActionSlots(t *testing.T) {
	src := playback.MediaSource{Name: "Song"}
	for _, state := range []playback.State{playback.StateReady, playback.StateBuffering} {
		for _, snap := range allSnapshots(state) {
			c, ok := Project(snap, src)
			require.True(t, ok, "%+v", snap)

			wantFirst := notify.ActionRewind
			if snap.HasPrevious {
				wantFirst = notify.ActionPrevious
			}
			wantToggle := notify.ActionPlay
			if snap.PlayWhenReady {
				wantToggle = notify.ActionPause
			}
			wantLast := notify.ActionFastForward
			if snap.HasNext {
				wantLast = notify.ActionNext
			}

			assert.Equal(t, [3]notify.Action{wantFirst, wantToggle, wantLast}, c.Actions, "%+v", snap)
			assert.Equal(t, snap.IsPlaying, c.Ongoing, "%+v", snap)
		}
	}
}

func TestProject_ToggleIgnoresIsPlaying(t *testing.T) {
	src := playback.MediaSource{Name: "Song"}

	buffering, _ := Project(playback.Snapshot{State: playback.StateBuffering, PlayWhenReady: true}, src)
	assert.Equal(t, notify.ActionPause, buffering.Actions[1])
	assert.False(t, buffering.Ongoing)

	paused, _ := Project(playback.Snapshot{State: playback.StateReady, IsPlaying: true}, src)
	assert.Equal(t, notify.ActionPlay, paused.Actions[1])
	assert.True(t, paused.Ongoing)
}

func TestProject_Subtitle(t *testing.T) {
	snap := playback.Snapshot{State: playback.StateReady}
	tests := []struct {
		name    string
		artists []string
		want    string
	}{
		{"none", nil, ""},
		{"single", []string{"X"}, "X"},
		{"several", []string{"X", "Y", "Z"}, "X, Y, Z"},
		{"blank entries dropped", []string{"", " X ", "  "}, "X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := Project(snap, playback.MediaSource{Name: "Song", Artists: tt.artists})
			require.True(t, ok)
			assert.Equal(t, tt.want, c.Subtitle)
		})
	}
}

func TestProject_SongAScenario(t *testing.T) {
	snap := playback.Snapshot{
		State:         playback.StateReady,
		PlayWhenReady: true,
		HasNext:       true,
		IsPlaying:     true,
	}
	src := playback.MediaSource{
		Kind:    playback.SourceRemote,
		ItemID:  "a1",
		Name:    "Song A",
		Artists: []string{"X"},
	}

	c, ok := Project(snap, src)
	require.True(t, ok)

	p := c.Payload(nil)
	assert.Equal(t, "Song A", p.Title)
	assert.Equal(t, "X", p.Subtitle)
	assert.Equal(t, [3]notify.Action{notify.ActionRewind, notify.ActionPause, notify.ActionNext}, p.Actions)
	assert.True(t, p.Ongoing)
	assert.Nil(t, p.Thumbnail)
}

func TestContentPayload(t *testing.T) {
	thumb := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	c := Content{Title: "T", Subtitle: "S", Ongoing: true}

	p := c.Payload(thumb)

	assert.Equal(t, thumb, p.Thumbnail)
	assert.Equal(t, notify.ContentActionName, p.ContentAction)
	assert.Equal(t, notify.ActionStop, p.DismissAction)
}
