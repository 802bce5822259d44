package nowplaying

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/llehouerou/nowplaying/internal/notify"
	"github.com/llehouerou/nowplaying/internal/playback"
)

// ActionSubscription owns the single registration of the action handler
// with the dispatcher. At most one registration is outstanding at any time.
type ActionSubscription struct {
	dispatcher notify.Dispatcher
	players    playback.PlayerSource
	log        zerolog.Logger

	// mu serializes install and uninstall so that installed only changes
	// once the dispatcher call has completed.
	mu        sync.Mutex
	installed atomic.Bool
	handler   *actionHandler
}

// NewActionSubscription creates an uninstalled subscription. Actions are
// routed to whichever player is active when they arrive.
func NewActionSubscription(d notify.Dispatcher, players playback.PlayerSource, log zerolog.Logger) *ActionSubscription {
	s := &ActionSubscription{
		dispatcher: d,
		players:    players,
		log:        log,
	}
	s.handler = &actionHandler{sub: s}
	return s
}

// RoutedNames returns the action names the handler is registered for.
func RoutedNames() []string {
	return append(notify.ActionNames(), notify.ContentActionName)
}

// EnsureRegistered installs the handler unless it is already installed.
func (s *ActionSubscription) EnsureRegistered() {
	if s.installed.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.installed.Load() {
		return
	}
	if err := s.dispatcher.Register(RoutedNames(), s.handler); err != nil {
		s.log.Error().Err(err).Msg("register action handler")
		return
	}
	s.installed.Store(true)
}

// EnsureUnregistered removes the handler if it is installed.
func (s *ActionSubscription) EnsureUnregistered() {
	if !s.installed.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.installed.CompareAndSwap(true, false) {
		return
	}
	if err := s.dispatcher.Unregister(s.handler); err != nil {
		s.log.Warn().Err(err).Msg("unregister action handler")
	}
}

// Registered reports whether the handler is installed.
func (s *ActionSubscription) Registered() bool {
	return s.installed.Load()
}

type actionHandler struct {
	sub *ActionSubscription
}

// HandleAction invokes the player operation mapped to name, once.
func (h *actionHandler) HandleAction(name string) {
	log := h.sub.log
	p := h.sub.players.ActivePlayer()
	if p == nil {
		log.Debug().Str("action", name).Msg("action without active player")
		return
	}

	var err error
	if name == notify.ContentActionName {
		if r, ok := p.(playback.Raiser); ok {
			err = r.Raise()
		}
	} else {
		action, ok := notify.ParseAction(name)
		if !ok {
			return
		}
		err = dispatch(p, action)
	}

	switch {
	case errors.Is(err, playback.ErrNoPlayer):
		log.Debug().Err(err).Str("action", name).Msg("player gone")
	case err != nil:
		log.Warn().Err(err).Str("action", name).Msg("player control failed")
	}
}

func dispatch(c playback.Controls, a notify.Action) error {
	switch a {
	case notify.ActionPlay:
		return c.Play()
	case notify.ActionPause:
		return c.Pause()
	case notify.ActionRewind:
		return c.Rewind()
	case notify.ActionFastForward:
		return c.FastForward()
	case notify.ActionPrevious:
		return c.SkipToPrevious()
	case notify.ActionNext:
		return c.SkipToNext()
	case notify.ActionStop:
		return c.Stop()
	}
	return nil
}
