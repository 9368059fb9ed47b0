package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ROUTINES_CONFIG", "ROUTINES_DB_DRIVER", "ROUTINES_DB_PATH", "ROUTINES_PREFS_BACKEND",
		"ROUTINES_PREFS_PATH", "ROUTINES_TZ", "ROUTINES_RESYNC_INTERVAL", "ROUTINES_LOG_LEVEL",
		"ROUTINES_LOG_FORMAT", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "TELEGRAM_RATE_PER_SEC",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "routines.db" || cfg.Database.Driver != "sqlite3" {
		t.Fatalf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Preferences.Backend != "sql" {
		t.Fatalf("Backend = %q, want sql", cfg.Preferences.Backend)
	}
	if cfg.Resync != 15*time.Minute {
		t.Fatalf("Resync = %v, want 15m", cfg.Resync)
	}
	if cfg.Location != time.Local {
		t.Fatalf("Location = %v, want Local", cfg.Location)
	}
	if cfg.TelegramEnabled() {
		t.Fatal("telegram must be disabled without token")
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "routines.yaml")
	body := `
database:
  driver: modernc
  path: /var/lib/routines/data.db
preferences:
  backend: file
timezone: Europe/Warsaw
resync_interval: 5m
telegram:
  token: from-file
  chat_id: 42
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TELEGRAM_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Preferences.Path != "/var/lib/routines/preferences.yaml" {
		t.Fatalf("prefs path = %q", cfg.Preferences.Path)
	}
	if cfg.Location.String() != "Europe/Warsaw" {
		t.Fatalf("Location = %v", cfg.Location)
	}
	if cfg.Resync != 5*time.Minute {
		t.Fatalf("Resync = %v", cfg.Resync)
	}
	if cfg.Telegram.Token != "from-env" || cfg.Telegram.ChatID != 42 {
		t.Fatalf("telegram = %+v", cfg.Telegram)
	}
	if !cfg.TelegramEnabled() {
		t.Fatal("telegram should be enabled")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("databse:\n  path: x.db\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"driver", "ROUTINES_DB_DRIVER", "postgres"},
		{"backend", "ROUTINES_PREFS_BACKEND", "redis"},
		{"timezone", "ROUTINES_TZ", "Mars/Olympus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			if _, err := Load(""); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestMissingFileIsIgnored(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != "" {
		t.Fatalf("Path = %q, want empty", cfg.Path)
	}
}
