// Package preferences persists UserPreferences and publishes changes to subscribers.
//
// Backends:
//   - "sql": a single row in the application database (default)
//   - "badger": a local badger key-value directory
//   - "file": a YAML file, reloaded when edited externally
//   - "charm": Charm Cloud KV, synced across machines
//   - "memory": process-local, for tests and dry runs
package preferences

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"routine-tracker/internal/config"
	"routine-tracker/internal/model"
)

// Store is the persistence API a backend implements.
type Store interface {
	Load(ctx context.Context) (model.UserPreferences, error)
	Save(ctx context.Context, prefs model.UserPreferences) error
	Close() error
}

// Open initializes the configured backend. db is only used by the "sql" backend.
func Open(cfg config.PreferencesConfig, db *gorm.DB, log zerolog.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "sql":
		if db == nil {
			return nil, fmt.Errorf("sql preferences need a database")
		}
		return NewSQLStore(db)
	case "memory":
		return NewMemoryStore(model.DefaultPreferences()), nil
	case "badger":
		return OpenBadgerStore(cfg.Path, log)
	case "file":
		return NewFileStore(cfg.Path, log), nil
	case "charm":
		return OpenCharmStore(charmDBName)
	default:
		return nil, fmt.Errorf("unknown preferences backend: %s", cfg.Backend)
	}
}

// normalize fills zero or out-of-range fields with defaults.
func normalize(p model.UserPreferences) model.UserPreferences {
	if p.SpecifiedTimeOption == "" {
		p.SpecifiedTimeOption = model.DefaultLeadTime
	}
	if p.UnspecifiedReminderHour < 0 || p.UnspecifiedReminderHour > 23 {
		p.UnspecifiedReminderHour = model.DefaultDailyReminderHour
	}
	if p.UnspecifiedReminderMinute < 0 || p.UnspecifiedReminderMinute > 59 {
		p.UnspecifiedReminderMinute = model.DefaultDailyReminderMin
	}
	return p
}
