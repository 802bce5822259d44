package nowplaying

import (
	"context"

	"github.com/llehouerou/nowplaying/internal/playback"
)

// Sync posts or dismisses the notification according to the active
// player's current state.
func (c *Controller) Sync() {
	p := c.players.ActivePlayer()
	if p == nil {
		c.Dismiss()
		return
	}
	if p.Snapshot().State.Projectable() && p.MediaSource() != nil {
		c.Post()
		return
	}
	c.Dismiss()
}

// Follow syncs the notification once, then again on every change
// published by sub, until ctx is done or sub closes.
func (c *Controller) Follow(ctx context.Context, sub *playback.Subscription) {
	c.Sync()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case change := <-sub.Changed:
			c.log.Debug().Stringer("change", change.Kind).Msg("player changed")
			c.Sync()
		}
	}
}
