package model

import (
	"strings"
	"time"
)

// Routine is a named group of tasks the user repeats.
// Time is an optional "HH:MM" start time; nil or empty means unspecified.
type Routine struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"not null;index"`
	Time        *string `gorm:"column:time"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Tasks       []Task              `gorm:"foreignKey:RoutineID;constraint:OnDelete:CASCADE"`
	Recurrences []RoutineRecurrence `gorm:"foreignKey:RoutineID;constraint:OnDelete:CASCADE"`
}

// HasTime reports whether the routine has a specified start time.
func (r Routine) HasTime() bool {
	return r.Time != nil && strings.TrimSpace(*r.Time) != ""
}

// TimeString returns the start time or an empty string.
func (r Routine) TimeString() string {
	if r.Time == nil {
		return ""
	}
	return strings.TrimSpace(*r.Time)
}

// RoutineWithTasks joins a routine with its tasks ordered by position.
type RoutineWithTasks struct {
	Routine Routine
	Tasks   []Task
}

// RoutineWithRecurrences joins a routine with its weekly recurrence rules.
type RoutineWithRecurrences struct {
	Routine     Routine
	Recurrences []RoutineRecurrence
}
