package artwork

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

const (
	imageQuality      = 90
	maxImageBytes     = 8 << 20
	defaultTimeout    = 10 * time.Second
	fetchDialTimeout  = 5 * time.Second
	fetchTLSTimeout   = 5 * time.Second
	fetchIdleConnTime = 90 * time.Second
)

// ErrNoServer is returned when no media server URL is configured.
var ErrNoServer = errors.New("no media server configured")

// HTTPFetcher fetches primary images from a Jellyfin-compatible server.
type HTTPFetcher struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// FetcherConfig configures an HTTPFetcher.
type FetcherConfig struct {
	ServerURL string
	APIKey    string
	RetryMax  int
	Timeout   time.Duration
	Logger    zerolog.Logger
}

// NewHTTPFetcher creates a fetcher. An empty ServerURL yields a fetcher
// that always fails with ErrNoServer.
func NewHTTPFetcher(cfg FetcherConfig) (*HTTPFetcher, error) {
	f := &HTTPFetcher{
		apiKey: cfg.APIKey,
		client: newRetryableHTTPClient(cfg.RetryMax, cfg.Timeout),
		log:    cfg.Logger.With().Str("component", "fetcher").Logger(),
	}
	if cfg.ServerURL != "" {
		u, err := url.Parse(cfg.ServerURL)
		if err != nil {
			return nil, fmt.Errorf("parse server url: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("server url %q: missing scheme or host", cfg.ServerURL)
		}
		f.baseURL = u
	}
	return f, nil
}

func newRetryableHTTPClient(retryMax int, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retryMax
	retryClient.Logger = nil
	retryClient.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: fetchDialTimeout,
			}).DialContext,
			TLSHandshakeTimeout: fetchTLSTimeout,
			IdleConnTimeout:     fetchIdleConnTime,
		},
	}
	return retryClient.StandardClient()
}

// ImageURL returns the primary image URL for itemID scaled to height.
// The tag, when known, keys the server cache so a re-tagged item is not
// served a stale image.
func (f *HTTPFetcher) ImageURL(itemID, tag string, height int) (string, error) {
	if f.baseURL == nil {
		return "", ErrNoServer
	}
	if itemID == "" {
		return "", errors.New("empty item id")
	}

	u := f.baseURL.JoinPath("Items", itemID, "Images", "Primary")
	q := url.Values{}
	q.Set("maxHeight", strconv.Itoa(height))
	q.Set("quality", strconv.Itoa(imageQuality))
	if tag != "" {
		q.Set("tag", tag)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchImage downloads the image bytes. It blocks until the response body
// is read or ctx is done.
func (f *HTTPFetcher) FetchImage(ctx context.Context, itemID, tag string, height int) ([]byte, error) {
	imageURL, err := f.ImageURL(itemID, tag, height)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/jpeg, image/png")
	if f.apiKey != "" {
		req.Header.Set("X-Emby-Token", f.apiKey)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %s", humanize.Bytes(maxImageBytes))
	}

	f.log.Debug().
		Str("item", itemID).
		Int("height", height).
		Str("size", humanize.Bytes(uint64(len(data)))).
		Msg("image fetched")
	return data, nil
}

var _ Fetcher = (*HTTPFetcher)(nil)
