// Package nowplaying keeps the now playing notification in sync with the
// player and routes its buttons back to the player.
package nowplaying

import (
	"image"
	"strings"

	"github.com/llehouerou/nowplaying/internal/notify"
	"github.com/llehouerou/nowplaying/internal/playback"
)

// Content is everything in a notification except the artwork.
type Content struct {
	Title    string
	Subtitle string
	Actions  [3]notify.Action
	Ongoing  bool
}

// Project derives the notification content from the player state.
// It returns false when no notification applies (idle or ended playback).
func Project(snap playback.Snapshot, src playback.MediaSource) (Content, bool) {
	if !snap.State.Projectable() {
		return Content{}, false
	}

	c := Content{
		Title:    src.Name,
		Subtitle: joinArtists(src.Artists),
		Ongoing:  snap.IsPlaying,
	}

	c.Actions[0] = notify.ActionRewind
	if snap.HasPrevious {
		c.Actions[0] = notify.ActionPrevious
	}

	// Toggle follows the intent to play, not IsPlaying.
	c.Actions[1] = notify.ActionPlay
	if snap.PlayWhenReady {
		c.Actions[1] = notify.ActionPause
	}

	c.Actions[2] = notify.ActionFastForward
	if snap.HasNext {
		c.Actions[2] = notify.ActionNext
	}

	return c, true
}

func joinArtists(artists []string) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if a = strings.TrimSpace(a); a != "" {
			names = append(names, a)
		}
	}
	return strings.Join(names, ", ")
}

// Payload assembles the final notification with an optional thumbnail.
func (c Content) Payload(thumb image.Image) notify.Payload {
	return notify.Payload{
		Title:         c.Title,
		Subtitle:      c.Subtitle,
		Actions:       c.Actions,
		Thumbnail:     thumb,
		ContentAction: notify.ContentActionName,
		DismissAction: notify.ActionStop,
		Ongoing:       c.Ongoing,
	}
}
