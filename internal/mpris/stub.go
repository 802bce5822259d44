//go:build !linux

package mpris

import (
	"github.com/godbus/dbus/v5"

	"github.com/llehouerou/nowplaying/internal/playback"
)

// Client is a no-op on non-Linux platforms: no player is ever active.
type Client struct {
	sub *playback.Subscription
}

// NewClient returns a no-op client on non-Linux platforms.
func NewClient(_ *dbus.Conn, _ ...Option) *Client {
	return &Client{}
}

// Start returns a subscription that never fires.
func (c *Client) Start() (*playback.Subscription, error) {
	c.sub = playback.NewSubscription()
	return c.sub, nil
}

// Close closes the subscription.
func (c *Client) Close() error {
	if c.sub != nil {
		c.sub.Close()
	}
	return nil
}

// ActivePlayer always returns nil on non-Linux platforms.
func (c *Client) ActivePlayer() playback.Player {
	return nil
}
