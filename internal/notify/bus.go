package notify

import (
	"errors"
	"slices"
	"sync"
)

// ErrAlreadyRegistered is returned when a handler is registered twice.
var ErrAlreadyRegistered = errors.New("handler already registered")

// Bus is an in-process Dispatcher. Deliver routes a name to every handler
// registered for it.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Handler][]string
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Handler][]string)}
}

// Register installs h for the given names.
func (b *Bus) Register(names []string, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.handlers[h]; ok {
		return ErrAlreadyRegistered
	}
	b.handlers[h] = slices.Clone(names)
	return nil
}

// Unregister removes h. Unknown handlers are ignored.
func (b *Bus) Unregister(h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, h)
	return nil
}

// Len returns the number of registered handlers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Deliver invokes every handler registered for name and reports how many
// handlers received it. Handlers run outside the bus lock.
func (b *Bus) Deliver(name string) int {
	b.mu.RLock()
	var targets []Handler
	for h, names := range b.handlers {
		if slices.Contains(names, name) {
			targets = append(targets, h)
		}
	}
	b.mu.RUnlock()

	for _, h := range targets {
		h.HandleAction(name)
	}
	return len(targets)
}

var _ Dispatcher = (*Bus)(nil)
