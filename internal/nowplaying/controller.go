package nowplaying

import (
	"context"
	"image"
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/nowplaying/internal/notify"
	"github.com/llehouerou/nowplaying/internal/playback"
)

// ThumbnailResolver resolves artwork for a media source. Resolve may block
// and returns nil when no thumbnail is available.
type ThumbnailResolver interface {
	Resolve(ctx context.Context, src playback.MediaSource) image.Image
}

// Controller owns the now playing notification slot and the action
// subscription that routes its buttons to the active player.
type Controller struct {
	players  playback.PlayerSource
	notifier notify.Notifier
	resolver ThumbnailResolver
	sub      *ActionSubscription
	log      zerolog.Logger

	hostRendersArtwork bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu serializes slot submissions against dismissals. gen is bumped by
	// every Post and Dismiss; a pending submission only lands if gen has
	// not moved since it was scheduled. Once closed, nothing is posted.
	mu     sync.Mutex
	gen    uint64
	closed bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithHostRendersArtwork skips artwork resolution when the notification
// host draws artwork for media sessions itself.
func WithHostRendersArtwork(v bool) Option {
	return func(c *Controller) {
		c.hostRendersArtwork = v
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// New creates a controller. resolver may be nil, in which case
// notifications never carry a thumbnail.
func New(
	players playback.PlayerSource,
	notifier notify.Notifier,
	dispatcher notify.Dispatcher,
	resolver ThumbnailResolver,
	opts ...Option,
) *Controller {
	c := &Controller{
		players:  players,
		notifier: notifier,
		resolver: resolver,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "nowplaying").Logger()
	c.sub = NewActionSubscription(dispatcher, players, c.log)
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// Subscription returns the action subscription.
func (c *Controller) Subscription() *ActionSubscription {
	return c.sub
}

// Post refreshes the notification from the active player. It returns as
// soon as artwork resolution is scheduled; the payload is submitted once
// the artwork resolves. Nothing happens when there is no active player,
// no loaded media or the playback state has no notification.
func (c *Controller) Post() {
	p := c.players.ActivePlayer()
	if p == nil {
		return
	}
	src := p.MediaSource()
	if src == nil {
		return
	}
	content, ok := Project(p.Snapshot(), *src)
	if !ok {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen
	c.wg.Add(1)
	c.mu.Unlock()

	if err := c.notifier.EnsureChannel(); err != nil {
		c.log.Warn().Err(err).Msg("ensure notification channel")
	}

	go func() {
		defer c.wg.Done()
		var thumb image.Image
		if !c.hostRendersArtwork && c.resolver != nil {
			thumb = c.resolver.Resolve(c.ctx, *src)
		}
		c.submit(gen, content.Payload(thumb))
	}()
}

func (c *Controller) submit(gen uint64, payload notify.Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.gen {
		c.log.Debug().Uint64("gen", gen).Msg("dropping stale notification")
		return
	}

	if err := c.notifier.Post(notify.NowPlayingSlot, payload); err != nil {
		c.log.Warn().Err(err).Msg("post notification")
		return
	}
	c.log.Debug().
		Str("title", payload.Title).
		Stringer("toggle", payload.Actions[1]).
		Bool("ongoing", payload.Ongoing).
		Bool("thumbnail", payload.Thumbnail != nil).
		Msg("notification posted")

	c.sub.EnsureRegistered()
}

// Dismiss clears the notification and removes the action subscription.
// Pending posts scheduled before the call are dropped.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	if err := c.notifier.Cancel(notify.NowPlayingSlot); err != nil {
		c.log.Warn().Err(err).Msg("cancel notification")
	}
	c.sub.EnsureUnregistered()
}

// Wait blocks until all scheduled posts have completed.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close dismisses the notification and aborts in-flight artwork resolution.
// Posts after Close are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.Dismiss()
	c.cancel()
	c.wg.Wait()
}
