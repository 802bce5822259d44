// Package mpris follows a media player over the MPRIS D-Bus interface and
// exposes it as a playback.Player.
package mpris

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/rs/zerolog"

	"github.com/llehouerou/nowplaying/internal/playback"
)

const (
	busPrefix     = "org.mpris.MediaPlayer2."
	objectPath    = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	rootInterface = "org.mpris.MediaPlayer2"
	playerIface   = "org.mpris.MediaPlayer2.Player"
	noTrack       = "/org/mpris/MediaPlayer2/TrackList/NoTrack"
)

// Default seek distances for the rewind and fast forward actions.
const (
	DefaultRewind      = 10 * time.Second
	DefaultFastForward = 30 * time.Second
)

type settings struct {
	player  string
	rewind  time.Duration
	forward time.Duration
	log     zerolog.Logger
}

func defaultSettings() settings {
	return settings{
		rewind:  DefaultRewind,
		forward: DefaultFastForward,
		log:     zerolog.Nop(),
	}
}

// Option configures a Client.
type Option func(*settings)

// WithPlayer restricts the client to org.mpris.MediaPlayer2.<name>
// (or an instance of it). Empty follows the first player found.
func WithPlayer(name string) Option {
	return func(s *settings) {
		s.player = name
	}
}

// WithSeekOffsets sets the rewind and fast forward distances.
// Non-positive values keep the defaults.
func WithSeekOffsets(rewind, forward time.Duration) Option {
	return func(s *settings) {
		if rewind > 0 {
			s.rewind = rewind
		}
		if forward > 0 {
			s.forward = forward
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) {
		s.log = l
	}
}

// pickPlayer chooses the bus name to follow among names. With want set,
// only org.mpris.MediaPlayer2.<want> or one of its instances
// (<want>.instanceNNN) qualifies. Returns "" when nothing matches.
func pickPlayer(names []string, want string) string {
	var candidates []string
	for _, n := range names {
		if !strings.HasPrefix(n, busPrefix) {
			continue
		}
		suffix := strings.TrimPrefix(n, busPrefix)
		if want != "" && suffix != want && !strings.HasPrefix(suffix, want+".") {
			continue
		}
		candidates = append(candidates, n)
	}
	if len(candidates) == 0 {
		return ""
	}
	slices.Sort(candidates)
	return candidates[0]
}

// snapshotFrom maps MPRIS player properties to a playback snapshot.
func snapshotFrom(props map[string]dbus.Variant) playback.Snapshot {
	var snap playback.Snapshot

	status, _ := variantString(props["PlaybackStatus"])
	switch types.PlaybackStatus(status) {
	case types.PlaybackStatusPlaying:
		snap.State = playback.StateReady
		snap.PlayWhenReady = true
		snap.IsPlaying = true
	case types.PlaybackStatusPaused:
		snap.State = playback.StateReady
	case types.PlaybackStatusStopped:
		snap.State = playback.StateIdle
		if hasTrack(metadataFrom(props)) {
			snap.State = playback.StateEnded
		}
	default:
		snap.State = playback.StateIdle
	}

	snap.HasPrevious, _ = props["CanGoPrevious"].Value().(bool)
	snap.HasNext, _ = props["CanGoNext"].Value().(bool)
	return snap
}

func metadataFrom(props map[string]dbus.Variant) map[string]dbus.Variant {
	md, _ := props["Metadata"].Value().(map[string]dbus.Variant)
	return md
}

func hasTrack(md map[string]dbus.Variant) bool {
	id := trackID(md)
	return id != "" && id != noTrack
}

func trackID(md map[string]dbus.Variant) string {
	s, _ := variantString(md["mpris:trackid"])
	return s
}

// sourceFrom maps MPRIS metadata to a media source. Returns nil when no
// track is loaded.
func sourceFrom(md map[string]dbus.Variant) *playback.MediaSource {
	if !hasTrack(md) {
		return nil
	}

	id := trackID(md)
	src := &playback.MediaSource{
		Kind:   playback.SourceRemote,
		ItemID: id[strings.LastIndex(id, "/")+1:],
	}
	src.Name, _ = variantString(md["xesam:title"])
	src.Artists, _ = md["xesam:artist"].Value().([]string)

	if raw, ok := variantString(md["xesam:url"]); ok {
		if u, err := url.Parse(raw); err == nil && u.Scheme == "file" {
			src.Kind = playback.SourceLocal
		}
	}
	if src.Kind == playback.SourceRemote {
		if raw, ok := variantString(md["mpris:artUrl"]); ok {
			if u, err := url.Parse(raw); err == nil {
				src.ImageTag = u.Query().Get("tag")
			}
		}
	}
	return src
}

// variantString accepts both strings and object paths.
func variantString(v dbus.Variant) (string, bool) {
	switch s := v.Value().(type) {
	case string:
		return s, true
	case dbus.ObjectPath:
		return string(s), true
	}
	return "", false
}

// seekOffset converts a seek distance to the MPRIS offset unit.
func seekOffset(d time.Duration) types.Microseconds {
	return types.Microseconds(d.Microseconds())
}
