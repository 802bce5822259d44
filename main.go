package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/llehouerou/nowplaying/internal/artwork"
	"github.com/llehouerou/nowplaying/internal/config"
	"github.com/llehouerou/nowplaying/internal/downloads"
	"github.com/llehouerou/nowplaying/internal/errmsg"
	"github.com/llehouerou/nowplaying/internal/logging"
	"github.com/llehouerou/nowplaying/internal/mpris"
	"github.com/llehouerou/nowplaying/internal/notify"
	"github.com/llehouerou/nowplaying/internal/nowplaying"
)

const appName = "nowplaying"

// startupError carries a user-facing message for a failed startup step.
type startupError struct {
	msg string
}

func (e *startupError) Error() string { return e.msg }

func fail(op errmsg.Op, err error) error {
	return &startupError{msg: errmsg.Format(op, err)}
}

func failWith(op errmsg.Op, context string, err error) error {
	return &startupError{msg: errmsg.FormatWith(op, context, err)}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fail(errmsg.OpConfigLoad, err)
	}

	log, logCloser, err := logging.New(cfg.GetLogLevel(), cfg.Log.File)
	if err != nil {
		return fail(errmsg.OpLogOpen, err)
	}
	defer logCloser.Close()

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fail(errmsg.OpBusConnect, err)
	}
	defer conn.Close()

	resolver, closeIndex, err := newResolver(cfg, log)
	if err != nil {
		return err
	}
	defer closeIndex()

	rewind, forward := cfg.GetSeekOffsets()
	client := mpris.NewClient(conn,
		mpris.WithPlayer(cfg.Player),
		mpris.WithSeekOffsets(rewind, forward),
		mpris.WithLogger(log),
	)
	sub, err := client.Start()
	if err != nil {
		return fail(errmsg.OpPlayerFollow, err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg(errmsg.Format(errmsg.OpPlayerClose, err))
		}
	}()

	notifier := notify.NewDBus(conn, appName, log)
	ctrl := nowplaying.New(client, notifier, notifier, resolver,
		nowplaying.WithHostRendersArtwork(cfg.HostRendersArtwork),
		nowplaying.WithLogger(log),
	)
	defer ctrl.Close()

	log.Info().Str("player", cfg.Player).Msg("nowplaying started")
	ctrl.Follow(ctx, sub)
	log.Info().Msg("nowplaying stopping")
	return nil
}

// newResolver wires the local download index and the media server
// fetcher. A missing server configuration only disables remote artwork.
func newResolver(cfg *config.Config, log zerolog.Logger) (*artwork.Resolver, func(), error) {
	dbPath, err := cfg.DownloadsDBPath()
	if err != nil {
		return nil, nil, fail(errmsg.OpIndexLookupPath, err)
	}
	index, err := downloads.Open(dbPath)
	if err != nil {
		return nil, nil, failWith(errmsg.OpIndexOpen, dbPath, err)
	}
	closeIndex := func() {
		if err := index.Close(); err != nil {
			log.Warn().Err(err).Msg("close downloads index")
		}
	}

	art := cfg.GetArtworkConfig()
	var fetcher artwork.Fetcher
	if cfg.HasArtworkServer() {
		f, err := artwork.NewHTTPFetcher(artwork.FetcherConfig{
			ServerURL: art.ServerURL,
			APIKey:    art.APIKey,
			RetryMax:  *art.RetryMax,
			Timeout:   art.Timeout(),
			Logger:    log,
		})
		if err != nil {
			closeIndex()
			return nil, nil, failWith(errmsg.OpArtworkServer, art.ServerURL, err)
		}
		fetcher = f
	} else {
		log.Info().Msg("no artwork server configured, remote items have no thumbnail")
	}

	resolver := artwork.NewResolver(index, fetcher,
		artwork.WithDensity(art.Density),
		artwork.WithLogger(log),
	)
	return resolver, closeIndex, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		var se *startupError
		if errors.As(err, &se) {
			fmt.Fprintln(os.Stderr, se.msg)
		} else {
			fmt.Fprintf(os.Stderr, "Error running nowplaying: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
