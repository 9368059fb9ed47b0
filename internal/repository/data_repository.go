package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"routine-tracker/internal/model"
)

// DataRepository is the facade the services use. It groups the per-table
// repositories and owns the multi-table transactions.
type DataRepository struct {
	db          *gorm.DB
	routines    *RoutineRepository
	tasks       *TaskRepository
	recurrences *RecurrenceRepository
}

func NewDataRepository(db *gorm.DB) *DataRepository {
	return &DataRepository{
		db:          db,
		routines:    NewRoutineRepository(db),
		tasks:       NewTaskRepository(db),
		recurrences: NewRecurrenceRepository(db),
	}
}

// withTx returns a facade bound to tx.
func (d *DataRepository) withTx(tx *gorm.DB) *DataRepository {
	return NewDataRepository(tx)
}

func (d *DataRepository) GetAllRoutines(ctx context.Context) ([]model.Routine, error) {
	return d.routines.List(ctx)
}

func (d *DataRepository) GetRoutine(ctx context.Context, id uint) (*model.Routine, error) {
	return d.routines.FindByID(ctx, id)
}

func (d *DataRepository) GetAllRoutinesWithTasks(ctx context.Context) ([]model.RoutineWithTasks, error) {
	routines, err := d.routines.List(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := d.tasks.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byRoutine := make(map[uint][]model.Task)
	for _, t := range tasks {
		byRoutine[t.RoutineID] = append(byRoutine[t.RoutineID], t)
	}
	out := make([]model.RoutineWithTasks, 0, len(routines))
	for _, r := range routines {
		out = append(out, model.RoutineWithTasks{Routine: r, Tasks: byRoutine[r.ID]})
	}
	return out, nil
}

func (d *DataRepository) GetRoutineWithTasks(ctx context.Context, id uint) (*model.RoutineWithTasks, error) {
	routine, err := d.routines.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tasks, err := d.tasks.ListForRoutine(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.RoutineWithTasks{Routine: *routine, Tasks: tasks}, nil
}

// GetAllRoutinesWithRecurrences lists every routine (ordered by name) with its recurrence rules.
func (d *DataRepository) GetAllRoutinesWithRecurrences(ctx context.Context) ([]model.RoutineWithRecurrences, error) {
	routines, err := d.routines.List(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := d.recurrences.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.RoutineWithRecurrences, 0, len(routines))
	for _, r := range routines {
		out = append(out, model.RoutineWithRecurrences{Routine: r, Recurrences: recs[r.ID]})
	}
	return out, nil
}

func (d *DataRepository) GetRoutineWithRecurrences(ctx context.Context, id uint) (*model.RoutineWithRecurrences, error) {
	routine, err := d.routines.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	recs, err := d.recurrences.ListForRoutine(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.RoutineWithRecurrences{Routine: *routine, Recurrences: recs}, nil
}

func (d *DataRepository) GetRecurrencesForRoutine(ctx context.Context, routineID uint) ([]model.RoutineRecurrence, error) {
	return d.recurrences.ListForRoutine(ctx, routineID)
}

// CountRoutinesMissingTime counts routines without a specified start time.
func (d *DataRepository) CountRoutinesMissingTime(ctx context.Context) (int64, error) {
	return d.routines.CountWithoutTime(ctx)
}

// CreateRoutineWithRecurrences inserts the routine, its recurrences and its tasks atomically
// and returns the new routine id. Child RoutineID fields are overwritten.
func (d *DataRepository) CreateRoutineWithRecurrences(ctx context.Context, routine *model.Routine, recurrences []model.RoutineRecurrence, tasks []model.Task) (uint, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := d.withTx(tx)
		if err := txRepo.routines.Create(ctx, routine); err != nil {
			return err
		}
		for i := range recurrences {
			recurrences[i].ID = 0
			recurrences[i].RoutineID = routine.ID
		}
		if err := txRepo.recurrences.CreateBatch(ctx, recurrences); err != nil {
			return err
		}
		for i := range tasks {
			tasks[i].ID = 0
			tasks[i].RoutineID = routine.ID
		}
		return txRepo.tasks.CreateBatch(ctx, tasks)
	})
	if err != nil {
		return 0, err
	}
	return routine.ID, nil
}

// UpdateRoutine saves name and time and, when recurrences is non-nil, replaces the recurrence rules.
func (d *DataRepository) UpdateRoutine(ctx context.Context, routine *model.Routine, recurrences []model.RoutineRecurrence) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := d.withTx(tx)
		if err := txRepo.routines.Update(ctx, routine); err != nil {
			return err
		}
		if recurrences == nil {
			return nil
		}
		if err := txRepo.recurrences.DeleteForRoutine(ctx, routine.ID); err != nil {
			return err
		}
		for i := range recurrences {
			recurrences[i].ID = 0
			recurrences[i].RoutineID = routine.ID
		}
		return txRepo.recurrences.CreateBatch(ctx, recurrences)
	})
}

func (d *DataRepository) DeleteRoutine(ctx context.Context, id uint) error {
	return d.routines.Delete(ctx, id)
}

// AddTaskToRoutine appends a task. A negative Position places it after the last task.
func (d *DataRepository) AddTaskToRoutine(ctx context.Context, routineID uint, task *model.Task) (uint, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := d.withTx(tx)
		if _, err := txRepo.routines.FindByID(ctx, routineID); err != nil {
			return err
		}
		task.ID = 0
		task.RoutineID = routineID
		if task.Position < 0 {
			pos, err := txRepo.tasks.NextPosition(ctx, routineID)
			if err != nil {
				return err
			}
			task.Position = pos
		}
		return txRepo.tasks.Create(ctx, task)
	})
	if err != nil {
		return 0, err
	}
	return task.ID, nil
}

func (d *DataRepository) GetTasksForRoutine(ctx context.Context, routineID uint) ([]model.Task, error) {
	return d.tasks.ListForRoutine(ctx, routineID)
}

func (d *DataRepository) GetTask(ctx context.Context, taskID uint) (*model.Task, error) {
	return d.tasks.FindByID(ctx, taskID)
}

func (d *DataRepository) UpdateTask(ctx context.Context, task *model.Task) error {
	return d.tasks.Update(ctx, task)
}

func (d *DataRepository) DeleteTask(ctx context.Context, taskID uint) error {
	return d.tasks.Delete(ctx, taskID)
}

// ReorderTasks assigns positions 0..n-1 following taskIDs. Every id must belong to the routine.
func (d *DataRepository) ReorderTasks(ctx context.Context, routineID uint, taskIDs []uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := d.withTx(tx)
		current, err := txRepo.tasks.ListForRoutine(ctx, routineID)
		if err != nil {
			return err
		}
		owned := make(map[uint]bool, len(current))
		for _, t := range current {
			owned[t.ID] = true
		}
		for pos, id := range taskIDs {
			if !owned[id] {
				return fmt.Errorf("task %d in routine %d: %w", id, routineID, ErrNotFound)
			}
			if err := txRepo.tasks.UpdatePosition(ctx, id, pos); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveAll wipes routines, tasks and recurrences.
func (d *DataRepository) RemoveAll(ctx context.Context) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := d.withTx(tx)
		if err := txRepo.tasks.RemoveAll(ctx); err != nil {
			return err
		}
		if err := txRepo.recurrences.RemoveAll(ctx); err != nil {
			return err
		}
		return txRepo.routines.RemoveAll(ctx)
	})
}
