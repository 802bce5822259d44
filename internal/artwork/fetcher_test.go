package artwork

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T, serverURL string) *HTTPFetcher {
	t.Helper()
	f, err := NewHTTPFetcher(FetcherConfig{
		ServerURL: serverURL,
		APIKey:    "secret",
		RetryMax:  0,
		Timeout:   2 * time.Second,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	return f
}

func TestImageURL(t *testing.T) {
	f := newTestFetcher(t, "https://media.example.com/jellyfin")

	got, err := f.ImageURL("abc123", "tag9", 96)
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "/jellyfin/Items/abc123/Images/Primary", u.Path)
	assert.Equal(t, "96", u.Query().Get("maxHeight"))
	assert.Equal(t, "90", u.Query().Get("quality"))
	assert.Equal(t, "tag9", u.Query().Get("tag"))
}

func TestImageURL_NoTag(t *testing.T) {
	f := newTestFetcher(t, "https://media.example.com")

	got, err := f.ImageURL("abc123", "", 64)
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.False(t, u.Query().Has("tag"))
}

func TestImageURL_Errors(t *testing.T) {
	f := newTestFetcher(t, "")
	_, err := f.ImageURL("abc", "", 64)
	assert.ErrorIs(t, err, ErrNoServer)

	f = newTestFetcher(t, "https://media.example.com")
	_, err = f.ImageURL("", "", 64)
	assert.Error(t, err)
}

func TestNewHTTPFetcher_InvalidURL(t *testing.T) {
	_, err := NewHTTPFetcher(FetcherConfig{ServerURL: "media.example.com"})
	assert.Error(t, err)
}

func TestFetchImage_Success(t *testing.T) {
	payload := []byte("image-bytes")
	var gotToken, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Emby-Token")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv.URL)
	data, err := f.FetchImage(context.Background(), "abc", "", 64)

	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, "secret", gotToken)
	assert.Equal(t, "/Items/abc/Images/Primary", gotPath)
}

func TestFetchImage_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := newTestFetcher(t, srv.URL)
	_, err := f.FetchImage(context.Background(), "abc", "", 64)

	assert.Error(t, err)
}

func TestFetchImage_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv.URL)
	_, err := f.FetchImage(context.Background(), "abc", "", 64)

	assert.Error(t, err)
}

func TestFetchImage_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newTestFetcher(t, srv.URL)
	_, err := f.FetchImage(ctx, "abc", "", 64)

	assert.Error(t, err)
}
