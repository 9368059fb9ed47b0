package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"routine-tracker/internal/model"
)

const prefsRowID = 1

type preferencesRow struct {
	ID                uint `gorm:"primaryKey"`
	RemindersEnabled  bool
	SpecifiedOption   string
	UnspecifiedHour   int
	UnspecifiedMinute int
	UpdatedAt         time.Time
}

func (preferencesRow) TableName() string { return "user_preferences" }

// SQLStore keeps preferences as a single row next to the routines.
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&preferencesRow{}); err != nil {
		return nil, fmt.Errorf("migrate preferences: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Load(ctx context.Context) (model.UserPreferences, error) {
	var row preferencesRow
	err := s.db.WithContext(ctx).First(&row, prefsRowID).Error
	switch {
	case err == nil:
		return normalize(model.UserPreferences{
			RemindersEnabled:          row.RemindersEnabled,
			SpecifiedTimeOption:       model.LeadTime(row.SpecifiedOption),
			UnspecifiedReminderHour:   row.UnspecifiedHour,
			UnspecifiedReminderMinute: row.UnspecifiedMinute,
		}), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.DefaultPreferences(), nil
	default:
		return model.UserPreferences{}, fmt.Errorf("load preferences: %w", err)
	}
}

func (s *SQLStore) Save(ctx context.Context, prefs model.UserPreferences) error {
	row := preferencesRow{
		ID:                prefsRowID,
		RemindersEnabled:  prefs.RemindersEnabled,
		SpecifiedOption:   string(prefs.SpecifiedTimeOption),
		UnspecifiedHour:   prefs.UnspecifiedReminderHour,
		UnspecifiedMinute: prefs.UnspecifiedReminderMinute,
	}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Close is a no-op; the database belongs to the caller.
func (s *SQLStore) Close() error { return nil }
