//go:build !linux

package notify

import (
	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

// DBus is a no-op notifier on non-Linux platforms. Actions are still
// routed through the embedded in-process Bus.
type DBus struct {
	*Bus
}

// NewDBus returns a no-op notifier on non-Linux platforms.
func NewDBus(_ *dbus.Conn, _ string, _ zerolog.Logger) *DBus {
	return &DBus{Bus: NewBus()}
}

func (n *DBus) EnsureChannel() error { return nil }

func (n *DBus) Post(_ Slot, _ Payload) error { return nil }

func (n *DBus) Cancel(_ Slot) error { return nil }
