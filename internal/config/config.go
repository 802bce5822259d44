package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	appName         = "nowplaying"
	dbFileName      = "downloads.db"
	defaultRetryMax = 2
)

type Config struct {
	Player             string `koanf:"player"`               // MPRIS name suffix, e.g. "jellyfin"; empty follows the first player
	HostRendersArtwork bool   `koanf:"host_renders_artwork"` // skip thumbnail resolution

	Artwork   ArtworkConfig   `koanf:"artwork"`
	Downloads DownloadsConfig `koanf:"downloads"`
	Seek      SeekConfig      `koanf:"seek"`
	Log       LogConfig       `koanf:"log"`
}

// ArtworkConfig holds the media server used for remote thumbnails.
type ArtworkConfig struct {
	ServerURL string  `koanf:"server_url"` // e.g., "https://jellyfin.example.com"
	APIKey    string  `koanf:"api_key"`
	Density   float64 `koanf:"density"`    // display density (default: 1.0)
	TimeoutMS int     `koanf:"timeout_ms"` // per request (default: 10000)
	RetryMax  *int    `koanf:"retry_max"`  // retries after the first attempt (default: 2)
}

// DownloadsConfig locates the local download index.
type DownloadsConfig struct {
	DBPath string `koanf:"db_path"`
}

// SeekConfig holds the rewind and fast forward distances.
type SeekConfig struct {
	RewindMS      int `koanf:"rewind_ms"`       // default: 10000
	FastForwardMS int `koanf:"fast_forward_ms"` // default: 30000
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `koanf:"level"` // "debug", "info", "warn", "error" (default: "info")
	File  string `koanf:"file"`  // "-" logs to stderr; empty uses the state directory
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Artwork.ServerURL = strings.TrimSuffix(cfg.Artwork.ServerURL, "/")
	cfg.Downloads.DBPath = expandPath(cfg.Downloads.DBPath)
	if cfg.Log.File != "-" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/nowplaying/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasArtworkServer returns true if remote thumbnails can be fetched.
func (c *Config) HasArtworkServer() bool {
	return c.Artwork.ServerURL != ""
}

// GetArtworkConfig returns the artwork configuration with defaults applied.
func (c *Config) GetArtworkConfig() ArtworkConfig {
	cfg := c.Artwork

	if cfg.Density <= 0 {
		cfg.Density = 1.0
	}
	if cfg.TimeoutMS <= 0 {
		cfg.TimeoutMS = 10000
	}
	if cfg.RetryMax == nil || *cfg.RetryMax < 0 {
		n := defaultRetryMax
		cfg.RetryMax = &n
	}

	return cfg
}

// Timeout returns the per-request timeout.
func (a ArtworkConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutMS) * time.Millisecond
}

// GetSeekOffsets returns the rewind and fast forward distances.
func (c *Config) GetSeekOffsets() (rewind, forward time.Duration) {
	rewind, forward = 10*time.Second, 30*time.Second
	if c.Seek.RewindMS > 0 {
		rewind = time.Duration(c.Seek.RewindMS) * time.Millisecond
	}
	if c.Seek.FastForwardMS > 0 {
		forward = time.Duration(c.Seek.FastForwardMS) * time.Millisecond
	}
	return rewind, forward
}

// GetLogLevel returns the configured log level, "info" when unset.
func (c *Config) GetLogLevel() string {
	if c.Log.Level == "" {
		return "info"
	}
	return strings.ToLower(c.Log.Level)
}

// DownloadsDBPath returns the download index location, creating its
// parent directory under the XDG data home when not configured.
func (c *Config) DownloadsDBPath() (string, error) {
	if c.Downloads.DBPath != "" {
		return c.Downloads.DBPath, nil
	}
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
