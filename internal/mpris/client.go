//go:build linux

package mpris

import (
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/llehouerou/nowplaying/internal/playback"
)

const (
	dbusDest                = "org.freedesktop.DBus"
	dbusPath                = dbus.ObjectPath("/org/freedesktop/DBus")
	dbusInterface           = "org.freedesktop.DBus"
	propertiesInterface     = "org.freedesktop.DBus.Properties"
	signalPropertiesChanged = propertiesInterface + ".PropertiesChanged"
	signalNameOwnerChanged  = dbusInterface + ".NameOwnerChanged"
	errServiceUnknown       = dbusInterface + ".Error.ServiceUnknown"
)

// Client follows one MPRIS player on the session bus.
type Client struct {
	conn *dbus.Conn
	cfg  settings
	log  zerolog.Logger

	mu    sync.RWMutex
	name  string // well-known bus name of the followed player
	owner string // its unique name, the sender of its signals

	sub      *playback.Subscription
	signals  chan *dbus.Signal
	stop     chan struct{}
	loopDone chan struct{}
}

// NewClient creates a client on an established session bus connection.
func NewClient(conn *dbus.Conn, opts ...Option) *Client {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{
		conn: conn,
		cfg:  cfg,
		log:  cfg.log.With().Str("component", "mpris").Logger(),
	}
}

// Start finds the player and begins publishing changes. The returned
// subscription closes when the client is closed.
func (c *Client) Start() (*playback.Subscription, error) {
	if c.sub != nil {
		return nil, errors.New("mpris client already started")
	}

	if err := c.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(objectPath),
		dbus.WithMatchInterface(propertiesInterface),
		dbus.WithMatchMember("PropertiesChanged"),
	); err != nil {
		return nil, fmt.Errorf("match properties: %w", err)
	}
	if err := c.conn.AddMatchSignal(
		dbus.WithMatchSender(dbusDest),
		dbus.WithMatchInterface(dbusInterface),
		dbus.WithMatchMember("NameOwnerChanged"),
		dbus.WithMatchArg0Namespace("org.mpris.MediaPlayer2"),
	); err != nil {
		return nil, fmt.Errorf("match name owner: %w", err)
	}

	c.sub = playback.NewSubscription()
	c.signals = make(chan *dbus.Signal, 32)
	c.stop = make(chan struct{})
	c.loopDone = make(chan struct{})
	c.conn.Signal(c.signals)

	if err := c.discover(); err != nil {
		c.log.Warn().Err(err).Msg("list players")
	}

	go c.loop()
	return c.sub, nil
}

// Close stops following the player.
func (c *Client) Close() error {
	if c.sub == nil {
		return nil
	}
	c.conn.RemoveSignal(c.signals)
	close(c.stop)
	<-c.loopDone
	c.sub.Close()

	err := errors.Join(
		c.conn.RemoveMatchSignal(
			dbus.WithMatchObjectPath(objectPath),
			dbus.WithMatchInterface(propertiesInterface),
			dbus.WithMatchMember("PropertiesChanged"),
		),
		c.conn.RemoveMatchSignal(
			dbus.WithMatchSender(dbusDest),
			dbus.WithMatchInterface(dbusInterface),
			dbus.WithMatchMember("NameOwnerChanged"),
			dbus.WithMatchArg0Namespace("org.mpris.MediaPlayer2"),
		),
	)
	c.sub = nil
	return err
}

// discover picks the player to follow among the names on the bus.
func (c *Client) discover() error {
	var names []string
	err := c.conn.Object(dbusDest, dbusPath).Call(dbusInterface+".ListNames", 0).Store(&names)
	if err != nil {
		return err
	}

	name := pickPlayer(names, c.cfg.player)
	var owner string
	if name != "" {
		if err := c.conn.Object(dbusDest, dbusPath).
			Call(dbusInterface+".GetNameOwner", 0, name).Store(&owner); err != nil {
			return fmt.Errorf("owner of %s: %w", name, err)
		}
	}

	c.mu.Lock()
	changed := name != c.name
	c.name, c.owner = name, owner
	c.mu.Unlock()

	if changed {
		if name == "" {
			c.log.Info().Msg("no player")
		} else {
			c.log.Info().Str("player", name).Msg("following player")
		}
	}
	return nil
}

func (c *Client) loop() {
	defer close(c.loopDone)
	for {
		select {
		case <-c.stop:
			return
		case sig, ok := <-c.signals:
			if !ok {
				return
			}
			c.handleSignal(sig)
		}
	}
}

func (c *Client) handleSignal(sig *dbus.Signal) {
	switch sig.Name {
	case signalNameOwnerChanged:
		if len(sig.Body) < 1 {
			return
		}
		if name, _ := sig.Body[0].(string); pickPlayer([]string{name}, c.cfg.player) == "" {
			return
		}
		if err := c.discover(); err != nil {
			c.log.Warn().Err(err).Msg("rediscover players")
		}
		c.sub.Send(playback.Change{Kind: playback.ChangePlayer})

	case signalPropertiesChanged:
		if sig.Path != objectPath || len(sig.Body) < 2 {
			return
		}
		c.mu.RLock()
		owner := c.owner
		c.mu.RUnlock()
		if owner == "" || sig.Sender != owner {
			return
		}
		if iface, _ := sig.Body[0].(string); iface != playerIface {
			return
		}
		changed, _ := sig.Body[1].(map[string]dbus.Variant)
		kind := playback.ChangeState
		if _, ok := changed["Metadata"]; ok {
			kind = playback.ChangeMedia
		}
		c.sub.Send(playback.Change{Kind: kind})
	}
}

// ActivePlayer returns the followed player, or nil when none is on the bus.
func (c *Client) ActivePlayer() playback.Player {
	c.mu.RLock()
	name := c.name
	c.mu.RUnlock()
	if name == "" {
		return nil
	}
	return &player{c: c, obj: c.conn.Object(name, objectPath), name: name}
}

// player is a handle on one MPRIS bus name. State is read on every call.
type player struct {
	c    *Client
	obj  dbus.BusObject
	name string
}

func (p *player) props() map[string]dbus.Variant {
	var props map[string]dbus.Variant
	err := p.obj.Call(propertiesInterface+".GetAll", 0, playerIface).Store(&props)
	if err != nil {
		p.c.log.Debug().Err(err).Str("player", p.name).Msg("read player properties")
		return nil
	}
	return props
}

func (p *player) Snapshot() playback.Snapshot {
	return snapshotFrom(p.props())
}

func (p *player) MediaSource() *playback.MediaSource {
	return sourceFrom(metadataFrom(p.props()))
}

func (p *player) call(method string, args ...any) error {
	return p.wrap(method, p.obj.Call(playerIface+"."+method, 0, args...).Err)
}

// wrap reports calls to a player that left the bus as playback.ErrNoPlayer.
func (p *player) wrap(method string, err error) error {
	if err == nil {
		return nil
	}
	if isServiceUnknown(err) {
		return fmt.Errorf("%s %s: %w", p.name, method, playback.ErrNoPlayer)
	}
	return fmt.Errorf("%s %s: %w", p.name, method, err)
}

func isServiceUnknown(err error) bool {
	var e dbus.Error
	if errors.As(err, &e) {
		return e.Name == errServiceUnknown
	}
	var pe *dbus.Error
	if errors.As(err, &pe) {
		return pe.Name == errServiceUnknown
	}
	return false
}

func (p *player) Play() error           { return p.call("Play") }
func (p *player) Pause() error          { return p.call("Pause") }
func (p *player) SkipToPrevious() error { return p.call("Previous") }
func (p *player) SkipToNext() error     { return p.call("Next") }
func (p *player) Stop() error           { return p.call("Stop") }

func (p *player) Rewind() error {
	return p.call("Seek", int64(-seekOffset(p.c.cfg.rewind)))
}

func (p *player) FastForward() error {
	return p.call("Seek", int64(seekOffset(p.c.cfg.forward)))
}

// Raise brings the player window to the front.
func (p *player) Raise() error {
	return p.wrap("Raise", p.obj.Call(rootInterface+".Raise", 0).Err)
}

var (
	_ playback.PlayerSource = (*Client)(nil)
	_ playback.Player       = (*player)(nil)
	_ playback.Raiser       = (*player)(nil)
)
