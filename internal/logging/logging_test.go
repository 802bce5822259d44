package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "np.log")

	log, closer, err := New("warn", path)
	require.NoError(t, err)

	log.Info().Msg("hidden")
	log.Warn().Str("player", "vlc").Msg("shown")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"player":"vlc"`)
	assert.Contains(t, out, `"time":`)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestNew_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "np.log")

	for _, msg := range []string{"first", "second"} {
		log, closer, err := New("info", path)
		require.NoError(t, err)
		log.Info().Msg(msg)
		require.NoError(t, closer.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}

func TestNew_DefaultLevel(t *testing.T) {
	log, closer, err := New("", filepath.Join(t.TempDir(), "np.log"))
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestNew_Stderr(t *testing.T) {
	log, closer, err := New("debug", Stderr)
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
	assert.NoError(t, closer.Close())
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New("loud", Stderr)
	assert.Error(t, err)
}

func TestDefaultPath(t *testing.T) {
	state := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_STATE_HOME", state)
	xdg.Reload()

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(state, "nowplaying", "nowplaying.log"), path)
	assert.DirExists(t, filepath.Dir(path))
}
