package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	yaml "go.yaml.in/yaml/v3"
)

// Config keeps runtime settings for the daemon, CLI and bot.
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Telegram    TelegramConfig    `yaml:"telegram"`
	Log         LogConfig         `yaml:"log"`

	// Timezone is an IANA zone name used for all reminder arithmetic. Empty means local.
	Timezone string `yaml:"timezone"`
	// ResyncInterval is how often serve re-reads routines and preferences ("15m").
	ResyncInterval string `yaml:"resync_interval"`

	Location *time.Location `yaml:"-"`
	Resync   time.Duration  `yaml:"-"`
	Path     string         `yaml:"-"`
}

type DatabaseConfig struct {
	// Driver is "sqlite3" (cgo, default) or "sqlite" (pure Go).
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type PreferencesConfig struct {
	// Backend is one of "sql" (default), "badger", "file", "charm" or "memory".
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type TelegramConfig struct {
	Token      string `yaml:"token"`
	ChatID     int64  `yaml:"chat_id"`
	RatePerSec int    `yaml:"rate_per_sec"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	defaultDatabasePath   = "routines.db"
	defaultResyncInterval = 15 * time.Minute
)

// Load reads the optional YAML file at path, then applies environment overrides and defaults.
// An empty path falls back to $ROUTINES_CONFIG. A missing file is not an error.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		path = strings.TrimSpace(os.Getenv("ROUTINES_CONFIG"))
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decodeStrict(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
			cfg.Path = path
		case errors.Is(err, os.ErrNotExist):
		default:
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	applyEnv(&cfg)
	if err := cfg.finish(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decodeStrict(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Database.Driver, "ROUTINES_DB_DRIVER")
	setString(&cfg.Database.Path, "ROUTINES_DB_PATH")
	setString(&cfg.Preferences.Backend, "ROUTINES_PREFS_BACKEND")
	setString(&cfg.Preferences.Path, "ROUTINES_PREFS_PATH")
	setString(&cfg.Timezone, "ROUTINES_TZ")
	setString(&cfg.ResyncInterval, "ROUTINES_RESYNC_INTERVAL")
	setString(&cfg.Log.Level, "ROUTINES_LOG_LEVEL")
	setString(&cfg.Log.Format, "ROUTINES_LOG_FORMAT")
	setString(&cfg.Telegram.Token, "TELEGRAM_TOKEN")
	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_RATE_PER_SEC")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			cfg.Telegram.RatePerSec = n
		}
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func (c *Config) finish() error {
	if c.Database.Path == "" {
		c.Database.Path = defaultDatabasePath
	}
	switch strings.ToLower(c.Database.Driver) {
	case "", "sqlite3":
		c.Database.Driver = "sqlite3"
	case "sqlite", "modernc":
		c.Database.Driver = "sqlite"
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	c.Preferences.Backend = strings.ToLower(c.Preferences.Backend)
	switch c.Preferences.Backend {
	case "":
		c.Preferences.Backend = "sql"
	case "sql", "memory", "charm":
	case "badger", "file":
		if c.Preferences.Path == "" {
			c.Preferences.Path = defaultPrefsPath(c.Database.Path, c.Preferences.Backend)
		}
	default:
		return fmt.Errorf("unknown preferences backend %q", c.Preferences.Backend)
	}

	loc := time.Local
	if c.Timezone != "" {
		l, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("timezone %q: %w", c.Timezone, err)
		}
		loc = l
	}
	c.Location = loc

	c.Resync = parseInterval(c.ResyncInterval)
	if c.Resync == 0 {
		c.Resync = defaultResyncInterval
	}

	if c.Telegram.RatePerSec <= 0 {
		c.Telegram.RatePerSec = 20
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	return nil
}

// TelegramEnabled reports whether a bot token and target chat are configured.
func (c Config) TelegramEnabled() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != 0
}

func defaultPrefsPath(dbPath, backend string) string {
	dir := filepath.Dir(dbPath)
	if backend == "badger" {
		return filepath.Join(dir, "preferences.badger")
	}
	return filepath.Join(dir, "preferences.yaml")
}

func parseInterval(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}
