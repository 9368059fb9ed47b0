package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"routine-tracker/internal/model"
)

// RecurrenceRepository stores weekly recurrence rules.
type RecurrenceRepository struct {
	db *gorm.DB
}

func NewRecurrenceRepository(db *gorm.DB) *RecurrenceRepository {
	return &RecurrenceRepository{db: db}
}

func (r *RecurrenceRepository) CreateBatch(ctx context.Context, recurrences []model.RoutineRecurrence) error {
	if len(recurrences) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&recurrences).Error; err != nil {
		return fmt.Errorf("create recurrences: %w", err)
	}
	return nil
}

func (r *RecurrenceRepository) ListForRoutine(ctx context.Context, routineID uint) ([]model.RoutineRecurrence, error) {
	var recs []model.RoutineRecurrence
	if err := r.db.WithContext(ctx).Where("routine_id = ?", routineID).
		Order("day_of_week ASC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list recurrences: %w", err)
	}
	return recs, nil
}

// ListAll returns every recurrence grouped by routine id.
func (r *RecurrenceRepository) ListAll(ctx context.Context) (map[uint][]model.RoutineRecurrence, error) {
	var recs []model.RoutineRecurrence
	if err := r.db.WithContext(ctx).Order("routine_id ASC, day_of_week ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list recurrences: %w", err)
	}
	out := make(map[uint][]model.RoutineRecurrence)
	for _, rec := range recs {
		out[rec.RoutineID] = append(out[rec.RoutineID], rec)
	}
	return out, nil
}

func (r *RecurrenceRepository) DeleteForRoutine(ctx context.Context, routineID uint) error {
	if err := r.db.WithContext(ctx).Where("routine_id = ?", routineID).
		Delete(&model.RoutineRecurrence{}).Error; err != nil {
		return fmt.Errorf("delete recurrences: %w", err)
	}
	return nil
}

func (r *RecurrenceRepository) RemoveAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.RoutineRecurrence{}).Error; err != nil {
		return fmt.Errorf("remove recurrences: %w", err)
	}
	return nil
}
