// Package artwork resolves the thumbnail shown in the now playing
// notification, from the local download storage or the media server.
package artwork

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder for thumbnails
	_ "image/png"  // PNG decoder for thumbnails
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog"

	"github.com/llehouerou/nowplaying/internal/downloads"
	"github.com/llehouerou/nowplaying/internal/playback"
)

const (
	// ThumbnailFileName is the thumbnail stored next to each downloaded item.
	ThumbnailFileName = "thumbnail.jpg"
	// ThumbnailHeightDP is the notification thumbnail height in density-independent pixels.
	ThumbnailHeightDP = 64

	// maxSourcePixels bounds the declared size of an image before it is decoded.
	maxSourcePixels = 4096 * 4096
)

// Index looks up locally stored items.
type Index interface {
	Lookup(ctx context.Context, itemID string) (*downloads.Item, error)
}

// Fetcher retrieves a primary image for a remote item. It may block.
type Fetcher interface {
	FetchImage(ctx context.Context, itemID, imageTag string, height int) ([]byte, error)
}

// Resolver produces notification thumbnails. Resolution never fails
// outward: any problem yields a nil image.
type Resolver struct {
	index   Index
	fetcher Fetcher
	density float64
	log     zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDensity sets the display density used to size remote requests.
func WithDensity(d float64) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.density = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

// NewResolver creates a resolver. Either collaborator may be nil, in which
// case sources of that kind resolve to no thumbnail.
func NewResolver(index Index, fetcher Fetcher, opts ...Option) *Resolver {
	r := &Resolver{
		index:   index,
		fetcher: fetcher,
		density: 1,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With().Str("component", "artwork").Logger()
	return r
}

// TargetHeight returns the thumbnail height in physical pixels.
func (r *Resolver) TargetHeight() int {
	return int(math.Round(ThumbnailHeightDP * r.density))
}

// Resolve returns the thumbnail for src, or nil. It blocks on disk and
// network I/O and must not run on the caller's event loop.
func (r *Resolver) Resolve(ctx context.Context, src playback.MediaSource) image.Image {
	var (
		img image.Image
		err error
	)
	switch src.Kind {
	case playback.SourceLocal:
		img, err = r.resolveLocal(ctx, src.ItemID)
	case playback.SourceRemote:
		img, err = r.resolveRemote(ctx, src)
	default:
		err = fmt.Errorf("unknown source kind %v", src.Kind)
	}

	if err != nil {
		ev := r.log.Debug()
		if errors.Is(err, downloads.ErrNotFound) {
			// The player reports a local item the index does not know about.
			ev = r.log.Error()
		}
		ev.Err(err).Str("item", src.ItemID).Stringer("kind", src.Kind).Msg("no thumbnail")
		return nil
	}
	return img
}

func (r *Resolver) resolveLocal(ctx context.Context, itemID string) (image.Image, error) {
	if r.index == nil {
		return nil, errors.New("no downloads index")
	}
	item, err := r.index.Lookup(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", itemID, err)
	}

	data, err := os.ReadFile(item.ThumbnailPath(ThumbnailFileName))
	if err != nil {
		return nil, err
	}
	return r.decode(data)
}

func (r *Resolver) resolveRemote(ctx context.Context, src playback.MediaSource) (image.Image, error) {
	if r.fetcher == nil {
		return nil, errors.New("no image fetcher")
	}
	data, err := r.fetcher.FetchImage(ctx, src.ItemID, src.ImageTag, r.TargetHeight())
	if err != nil {
		return nil, err
	}
	return r.decode(data)
}

// decode decodes data and scales it down to the target height.
func (r *Resolver) decode(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode thumbnail header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxSourcePixels {
		return nil, fmt.Errorf("thumbnail of %dx%d pixels exceeds %s pixels",
			cfg.Width, cfg.Height, humanize.Comma(maxSourcePixels))
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode thumbnail: %w", err)
	}

	h := uint(r.TargetHeight()) //nolint:gosec // target height is small and positive
	return resize.Thumbnail(2*h, h, img, resize.Lanczos3), nil
}
