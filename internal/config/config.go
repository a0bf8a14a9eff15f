// Package config defines the uniqorn configuration and how it is layered.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pable/uniqorn/internal/nbastats"
	"github.com/pable/uniqorn/internal/rarity"
	"github.com/pable/uniqorn/internal/season"
	"github.com/pable/uniqorn/internal/storage"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Backend selects the index store: json or sqlite.
	Backend string `koanf:"backend"`

	IndexPath   string `koanf:"index_path"`
	SummaryPath string `koanf:"summary_path"`

	// InputPath is the raw box-score CSV used by rebuild and file-based updates.
	InputPath string `koanf:"input_path"`

	// MinDate drops rows before this YYYY-MM-DD date. Empty keeps everything.
	MinDate string `koanf:"min_date"`

	// CurrentSeason is the default season label for season-scoped reports.
	CurrentSeason string `koanf:"current_season"`

	Alpha            float64 `koanf:"alpha"`
	MinGames         int     `koanf:"min_games"`
	FrontendMaxGames int     `koanf:"frontend_max_games"`

	APIBaseURL        string `koanf:"api_base_url"`
	APITimeoutSeconds int    `koanf:"api_timeout_seconds"`
	APIMaxRetries     int    `koanf:"api_max_retries"`

	// RedisAddr enables publishing of the frontend export when set.
	RedisAddr       string `koanf:"redis_addr"`
	RedisPassword   string `koanf:"redis_password"`
	RedisKey        string `koanf:"redis_key"`
	RedisTTLSeconds int    `koanf:"redis_ttl_seconds"`

	// MetricsTextfile is written after each run when set.
	MetricsTextfile string `koanf:"metrics_textfile"`

	SnapshotPath string `koanf:"snapshot_path"`
	ChangesPath  string `koanf:"changes_path"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Backend:           storage.BackendJSON,
		IndexPath:         "data/bucket_index.json",
		SummaryPath:       "data/summary.json",
		InputPath:         "data/PlayerStatistics.csv",
		CurrentSeason:     season.Latest().Label,
		Alpha:             rarity.DefaultAlpha,
		MinGames:          rarity.DefaultMinGames,
		FrontendMaxGames:  rarity.DefaultFrontendGames,
		APIBaseURL:        nbastats.DefaultBaseURL,
		APITimeoutSeconds: 30,
		APIMaxRetries:     3,
		RedisKey:          "uniqorn:frontend",
		RedisTTLSeconds:   86400,
		SnapshotPath:      "data/uniqorn_snapshot.json",
		ChangesPath:       "data/uniqorn_changes.json",
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.IndexPath == "":
		return fmt.Errorf("%w: index_path must not be empty", ErrInvalidConfig)
	case c.SummaryPath == "":
		return fmt.Errorf("%w: summary_path must not be empty", ErrInvalidConfig)
	case c.Alpha <= 0:
		return fmt.Errorf("%w: alpha must be positive, got %v", ErrInvalidConfig, c.Alpha)
	case c.MinGames < 0:
		return fmt.Errorf("%w: min_games must not be negative", ErrInvalidConfig)
	case c.APIMaxRetries < 0:
		return fmt.Errorf("%w: api_max_retries must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Backend) {
	case storage.BackendJSON, storage.BackendSQLite:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.MinDate != "" {
		if _, err := time.Parse("2006-01-02", c.MinDate); err != nil {
			return fmt.Errorf("%w: min_date %q: %v", ErrInvalidConfig, c.MinDate, err)
		}
	}
	if c.CurrentSeason != "" && !season.Known(c.CurrentSeason) {
		return fmt.Errorf("%w: unknown current_season %q", ErrInvalidConfig, c.CurrentSeason)
	}
	return nil
}

// Rarity returns the scoring options derived from the config.
func (c *Config) Rarity() rarity.Options {
	return rarity.Options{Alpha: c.Alpha, MinGames: c.MinGames}
}

// APITimeout returns the per-request timeout of the stats client.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSeconds) * time.Second
}

// RedisTTL returns the expiration of published payloads.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.RedisTTLSeconds) * time.Second
}
