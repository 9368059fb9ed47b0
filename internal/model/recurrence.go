package model

import "time"

// RoutineRecurrence attaches a routine to an ISO weekday, repeating every IntervalWeeks weeks.
type RoutineRecurrence struct {
	ID            uint `gorm:"primaryKey"`
	RoutineID     uint `gorm:"index;not null"`
	DayOfWeek     int  `gorm:"not null"`
	IntervalWeeks int  `gorm:"not null;default:1"`
	CreatedAt     time.Time
}

// TableName keeps the table name singular like the rest of the schema history.
func (RoutineRecurrence) TableName() string {
	return "routine_recurrence"
}

// Interval returns IntervalWeeks clamped to at least one week.
func (r RoutineRecurrence) Interval() int {
	if r.IntervalWeeks < 1 {
		return 1
	}
	return r.IntervalWeeks
}
