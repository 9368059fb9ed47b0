package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"routine-tracker/internal/model"
)

// RoutineRepository handles CRUD for routines.
type RoutineRepository struct {
	db *gorm.DB
}

func NewRoutineRepository(db *gorm.DB) *RoutineRepository {
	return &RoutineRepository{db: db}
}

func (r *RoutineRepository) Create(ctx context.Context, routine *model.Routine) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(routine).Error; err != nil {
		return fmt.Errorf("create routine: %w", err)
	}
	return nil
}

func (r *RoutineRepository) List(ctx context.Context) ([]model.Routine, error) {
	var routines []model.Routine
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&routines).Error; err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	return routines, nil
}

func (r *RoutineRepository) FindByID(ctx context.Context, id uint) (*model.Routine, error) {
	var routine model.Routine
	if err := r.db.WithContext(ctx).First(&routine, id).Error; err != nil {
		return nil, notFound("routine", id, err)
	}
	return &routine, nil
}

func (r *RoutineRepository) Update(ctx context.Context, routine *model.Routine) error {
	res := r.db.WithContext(ctx).Model(routine).
		Select("name", "time").
		Updates(map[string]any{"name": routine.Name, "time": routine.Time})
	if res.Error != nil {
		return fmt.Errorf("update routine: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("routine %d: %w", routine.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a routine together with its tasks and recurrences.
func (r *RoutineRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("routine_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return fmt.Errorf("delete routine tasks: %w", err)
		}
		if err := tx.Where("routine_id = ?", id).Delete(&model.RoutineRecurrence{}).Error; err != nil {
			return fmt.Errorf("delete routine recurrences: %w", err)
		}
		res := tx.Delete(&model.Routine{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete routine: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("routine %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// CountWithoutTime counts routines whose time is NULL or empty.
func (r *RoutineRepository) CountWithoutTime(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Routine{}).
		Where("time IS NULL OR time = ''").
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count routines without time: %w", err)
	}
	return n, nil
}

func (r *RoutineRepository) RemoveAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.Routine{}).Error; err != nil {
		return fmt.Errorf("remove routines: %w", err)
	}
	return nil
}
