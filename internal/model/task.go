package model

import "time"

// Task is a single step of a routine. Position orders tasks inside their routine.
type Task struct {
	ID        uint   `gorm:"primaryKey"`
	RoutineID uint   `gorm:"index;not null"`
	Name      string `gorm:"not null"`
	Duration  *int   // seconds
	Position  int    `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
