//go:build linux

package notify

import (
	"fmt"
	"slices"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

const (
	dbusNotifyDest      = "org.freedesktop.Notifications"
	dbusNotifyPath      = "/org/freedesktop/Notifications"
	dbusNotifyInterface = "org.freedesktop.Notifications"

	signalActionInvoked      = dbusNotifyInterface + ".ActionInvoked"
	signalNotificationClosed = dbusNotifyInterface + ".NotificationClosed"

	// closeReasonDismissed is the NotificationClosed reason for a user dismissal.
	closeReasonDismissed uint32 = 2
)

// DBus posts notifications through org.freedesktop.Notifications and
// delivers ActionInvoked signals for the notifications it owns.
// It implements both Notifier and Dispatcher.
type DBus struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	appName string
	log     zerolog.Logger

	channelOnce sync.Once
	channelErr  error

	mu          sync.Mutex
	actionIcons bool // server draws action keys as named icons
	ids         map[Slot]uint32
	dismiss     map[uint32]Action
	handlers    map[Handler][]string
	signals     chan *dbus.Signal
	stop        chan struct{}
	loopDone    chan struct{}
}

// NewDBus creates a notifier on an established session bus connection.
// appName is used as the notification app name and desktop entry.
func NewDBus(conn *dbus.Conn, appName string, log zerolog.Logger) *DBus {
	return &DBus{
		conn:     conn,
		obj:      conn.Object(dbusNotifyDest, dbusNotifyPath),
		appName:  appName,
		log:      log.With().Str("component", "notify").Logger(),
		ids:      make(map[Slot]uint32),
		dismiss:  make(map[uint32]Action),
		handlers: make(map[Handler][]string),
	}
}

// EnsureChannel checks the notification server capabilities once.
func (n *DBus) EnsureChannel() error {
	n.channelOnce.Do(func() {
		var caps []string
		if err := n.obj.Call(dbusNotifyInterface+".GetCapabilities", 0).Store(&caps); err != nil {
			n.channelErr = fmt.Errorf("query notification capabilities: %w", err)
			return
		}
		icons := slices.Contains(caps, "action-icons")
		n.mu.Lock()
		n.actionIcons = icons
		n.mu.Unlock()
		n.log.Info().
			Bool("actions", slices.Contains(caps, "actions")).
			Bool("action_icons", icons).
			Bool("body_images", slices.Contains(caps, "body-images")).
			Msg("notification server ready")
	})
	return n.channelErr
}

// Post sends p, replacing the notification currently shown in slot.
func (n *DBus) Post(slot Slot, p Payload) error {
	n.mu.Lock()
	replaces := n.ids[slot]
	icons := n.actionIcons
	n.mu.Unlock()

	// Notify(app_name, replaces_id, icon, summary, body, actions, hints, timeout) -> id
	call := n.obj.Call(
		dbusNotifyInterface+".Notify",
		0,
		n.appName,
		replaces,
		"",
		p.Title,
		p.Subtitle,
		buildActions(p, icons),
		n.buildHints(p, icons),
		int32(0), // never expire; the slot is replaced or closed explicitly
	)
	if call.Err != nil {
		return fmt.Errorf("notify: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	n.mu.Lock()
	if replaces != 0 && replaces != id {
		delete(n.dismiss, replaces)
	}
	n.ids[slot] = id
	n.dismiss[id] = p.DismissAction
	n.mu.Unlock()
	return nil
}

// Cancel closes the notification shown in slot, if any.
func (n *DBus) Cancel(slot Slot) error {
	n.mu.Lock()
	id, ok := n.ids[slot]
	delete(n.ids, slot)
	delete(n.dismiss, id)
	n.mu.Unlock()

	if !ok {
		return nil
	}
	if err := n.obj.Call(dbusNotifyInterface+".CloseNotification", 0, id).Err; err != nil {
		return fmt.Errorf("close notification %d: %w", id, err)
	}
	return nil
}

// buildActions lists key/label pairs. With icons, button keys are icon names
// and the label only annotates the icon.
func buildActions(p Payload, icons bool) []string {
	actions := make([]string, 0, 2*(len(p.Actions)+1))
	if p.ContentAction != "" {
		actions = append(actions, p.ContentAction, "Open")
	}
	for _, a := range p.Actions {
		key := a.Name()
		if icons {
			key = a.Icon()
		}
		actions = append(actions, key, a.Label())
	}
	return actions
}

// routingKey maps an invoked action key back to its routing name.
func routingKey(key string) string {
	for _, a := range Actions() {
		if a.Icon() == key {
			return a.Name()
		}
	}
	return key
}

func (n *DBus) buildHints(p Payload, icons bool) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		"urgency":        dbus.MakeVariant(byte(UrgencyLow)),
		"desktop-entry":  dbus.MakeVariant(n.appName),
		"category":       dbus.MakeVariant("x-nowplaying"),
		"resident":       dbus.MakeVariant(p.Ongoing),
		"transient":      dbus.MakeVariant(!p.Ongoing),
		"suppress-sound": dbus.MakeVariant(true),
	}
	if icons {
		hints["action-icons"] = dbus.MakeVariant(true)
	}
	if p.Thumbnail != nil {
		hints["image-data"] = dbus.MakeVariant(NewImageData(p.Thumbnail))
	}
	return hints
}

// Register installs h for names. The first registration subscribes to the
// notification signals.
func (n *DBus) Register(names []string, h Handler) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.handlers[h]; ok {
		return ErrAlreadyRegistered
	}
	if len(n.handlers) == 0 {
		if err := n.subscribeLocked(); err != nil {
			return err
		}
	}
	n.handlers[h] = slices.Clone(names)
	return nil
}

// Unregister removes h. The last unregistration drops the signal subscription.
func (n *DBus) Unregister(h Handler) error {
	n.mu.Lock()
	if _, ok := n.handlers[h]; !ok {
		n.mu.Unlock()
		return nil
	}
	delete(n.handlers, h)
	if len(n.handlers) > 0 {
		n.mu.Unlock()
		return nil
	}
	err := n.unsubscribeLocked()
	loopDone := n.loopDone
	n.mu.Unlock()

	if loopDone != nil {
		<-loopDone
	}
	return err
}

func (n *DBus) matchOptions() []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchObjectPath(dbusNotifyPath),
		dbus.WithMatchInterface(dbusNotifyInterface),
	}
}

func (n *DBus) subscribeLocked() error {
	if err := n.conn.AddMatchSignal(n.matchOptions()...); err != nil {
		return fmt.Errorf("subscribe to notification signals: %w", err)
	}
	n.signals = make(chan *dbus.Signal, 16)
	n.stop = make(chan struct{})
	n.loopDone = make(chan struct{})
	n.conn.Signal(n.signals)
	go n.loop(n.signals, n.stop, n.loopDone)
	return nil
}

func (n *DBus) unsubscribeLocked() error {
	err := n.conn.RemoveMatchSignal(n.matchOptions()...)
	n.conn.RemoveSignal(n.signals)
	close(n.stop)
	n.signals = nil
	n.stop = nil
	if err != nil {
		return fmt.Errorf("unsubscribe from notification signals: %w", err)
	}
	return nil
}

func (n *DBus) loop(ch <-chan *dbus.Signal, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case sig, ok := <-ch:
			if !ok {
				return
			}
			n.handleSignal(sig)
		}
	}
}

func (n *DBus) handleSignal(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}
	id, ok := sig.Body[0].(uint32)
	if !ok {
		return
	}

	switch sig.Name {
	case signalActionInvoked:
		key, ok := sig.Body[1].(string)
		if !ok || !n.owns(id) {
			return
		}
		n.deliver(routingKey(key))

	case signalNotificationClosed:
		reason, _ := sig.Body[1].(uint32)
		n.mu.Lock()
		action, owned := n.dismiss[id]
		delete(n.dismiss, id)
		for slot, sid := range n.ids {
			if sid == id {
				delete(n.ids, slot)
			}
		}
		n.mu.Unlock()
		if owned && reason == closeReasonDismissed {
			n.deliver(action.Name())
		}
	}
}

func (n *DBus) owns(id uint32) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.dismiss[id]
	return ok
}

func (n *DBus) deliver(name string) {
	n.mu.Lock()
	var targets []Handler
	for h, names := range n.handlers {
		if slices.Contains(names, name) {
			targets = append(targets, h)
		}
	}
	n.mu.Unlock()

	n.log.Debug().Str("action", name).Int("handlers", len(targets)).Msg("action invoked")
	for _, h := range targets {
		h.HandleAction(name)
	}
}

var (
	_ Notifier   = (*DBus)(nil)
	_ Dispatcher = (*DBus)(nil)
)
