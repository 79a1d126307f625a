package config

import "time"

// Config holds runtime settings for the tracklite client.
type Config struct {
	// DatabasePath is the local SQLite file.
	DatabasePath string
	// RemoteDSN is the shared backend connection string.
	RemoteDSN string
	// SyncInterval is the scheduled sync cadence.
	SyncInterval time.Duration
	// RetentionWindow is the age past which raw logs are consolidated and
	// become prunable.
	RetentionWindow time.Duration
	// PageSize is the pull read window.
	PageSize int
	// SessionTokenPath stores the login token between runs.
	SessionTokenPath string
	// SessionSecret verifies session tokens.
	SessionSecret string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "tracklite.db"
	c.RemoteDSN = ""
	c.SyncInterval = 60 * time.Second
	c.RetentionWindow = 90 * 24 * time.Hour
	c.PageSize = 1000
	c.SessionTokenPath = ".tracklite-session"
	c.SessionSecret = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
