package playback

import "sync"

const eventBufferSize = 16

// Subscription delivers change events from a player backend.
type Subscription struct {
	Changed <-chan Change
	Done    <-chan struct{}

	changeCh  chan Change
	doneCh    chan struct{}
	closeOnce sync.Once
}

// NewSubscription creates a subscription with a buffered change channel.
func NewSubscription() *Subscription {
	s := &Subscription{
		changeCh: make(chan Change, eventBufferSize),
		doneCh:   make(chan struct{}),
	}
	s.Changed = s.changeCh
	s.Done = s.doneCh
	return s
}

// Send publishes a change (non-blocking).
func (s *Subscription) Send(c Change) {
	select {
	case s.changeCh <- c:
	default:
		// Drop if buffer full; consumers re-read state anyway
	}
}

// Close signals subscribers to stop by closing Done. Safe to call twice.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.doneCh)
	})
}
