package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"routine-tracker/internal/config"
	"routine-tracker/internal/logging"
	"routine-tracker/internal/model"
)

func TestCreateRoutineWithRecurrencesAndTasks(t *testing.T) {
	ctx := context.Background()
	repo := NewDataRepository(setupTestDB(t))

	routine := &model.Routine{Name: "Morning", Time: strPtr("07:30")}
	recs := []model.RoutineRecurrence{
		{DayOfWeek: 1, IntervalWeeks: 1},
		{DayOfWeek: 3, IntervalWeeks: 2},
	}
	tasks := []model.Task{
		{Name: "Stretch", Duration: intPtr(300), Position: 0},
		{Name: "Coffee", Position: 1},
	}

	id, err := repo.CreateRoutineWithRecurrences(ctx, routine, recs, tasks)
	require.NoError(t, err)
	require.NotZero(t, id)

	withRecs, err := repo.GetRoutineWithRecurrences(ctx, id)
	require.NoError(t, err)
	require.Len(t, withRecs.Recurrences, 2)
	for _, rec := range withRecs.Recurrences {
		require.Equal(t, id, rec.RoutineID)
	}
	require.Equal(t, 3, withRecs.Recurrences[1].DayOfWeek)
	require.Equal(t, 2, withRecs.Recurrences[1].IntervalWeeks)

	withTasks, err := repo.GetRoutineWithTasks(ctx, id)
	require.NoError(t, err)
	require.Len(t, withTasks.Tasks, 2)
	require.Equal(t, "Stretch", withTasks.Tasks[0].Name)
	require.Equal(t, 300, *withTasks.Tasks[0].Duration)
	require.Nil(t, withTasks.Tasks[1].Duration)
}

func TestRoutinesOrderedByName(t *testing.T) {
	ctx := context.Background()
	repo := NewDataRepository(setupTestDB(t))

	for _, name := range []string{"Workout", "Evening", "Morning"} {
		_, err := repo.CreateRoutineWithRecurrences(ctx, &model.Routine{Name: name}, nil, nil)
		require.NoError(t, err)
	}

	all, err := repo.GetAllRoutinesWithRecurrences(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "Evening", all[0].Routine.Name)
	require.Equal(t, "Morning", all[1].Routine.Name)
	require.Equal(t, "Workout", all[2].Routine.Name)
	require.Empty(t, all[0].Recurrences)
}

func TestCountRoutinesMissingTime(t *testing.T) {
	ctx := context.Background()
	repo := NewDataRepository(setupTestDB(t))

	inputs := []*model.Routine{
		{Name: "no time"},
		{Name: "empty time", Time: strPtr("")},
		{Name: "timed", Time: strPtr("18:00")},
	}
	for _, r := range inputs {
		_, err := repo.CreateRoutineWithRecurrences(ctx, r, nil, nil)
		require.NoError(t, err)
	}

	n, err := repo.CountRoutinesMissingTime(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestDeleteRoutineCascades(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewDataRepository(db)

	id, err := repo.CreateRoutineWithRecurrences(ctx,
		&model.Routine{Name: "Evening", Time: strPtr("21:00")},
		[]model.RoutineRecurrence{{DayOfWeek: 7, IntervalWeeks: 1}},
		[]model.Task{{Name: "Read"}},
	)
	require.NoError(t, err)
	keep, err := repo.CreateRoutineWithRecurrences(ctx,
		&model.Routine{Name: "Other"},
		[]model.RoutineRecurrence{{DayOfWeek: 1, IntervalWeeks: 1}},
		[]model.Task{{Name: "Keep"}},
	)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteRoutine(ctx, id))

	_, err = repo.GetRoutine(ctx, id)
	require.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	var tasks, recs int64
	require.NoError(t, db.Model(&model.Task{}).Where("routine_id = ?", id).Count(&tasks).Error)
	require.NoError(t, db.Model(&model.RoutineRecurrence{}).Where("routine_id = ?", id).Count(&recs).Error)
	require.Zero(t, tasks)
	require.Zero(t, recs)

	left, err := repo.GetTasksForRoutine(ctx, keep)
	require.NoError(t, err)
	require.Len(t, left, 1)

	err = repo.DeleteRoutine(ctx, id)
	require.True(t, errors.Is(err, ErrNotFound), "second delete: %v", err)
}

func TestUpdateRoutineReplacesRecurrences(t *testing.T) {
	ctx := context.Background()
	repo := NewDataRepository(setupTestDB(t))

	id, err := repo.CreateRoutineWithRecurrences(ctx,
		&model.Routine{Name: "Gym", Time: strPtr("18:00")},
		[]model.RoutineRecurrence{{DayOfWeek: 1}, {DayOfWeek: 4}},
		nil,
	)
	require.NoError(t, err)

	routine, err := repo.GetRoutine(ctx, id)
	require.NoError(t, err)
	routine.Name = "Gym (heavy)"
	routine.Time = nil
	require.NoError(t, repo.UpdateRoutine(ctx, routine, []model.RoutineRecurrence{{DayOfWeek: 6, IntervalWeeks: 3}}))

	got, err := repo.GetRoutineWithRecurrences(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Gym (heavy)", got.Routine.Name)
	require.False(t, got.Routine.HasTime())
	require.Len(t, got.Recurrences, 1)
	require.Equal(t, 6, got.Recurrences[0].DayOfWeek)
	require.Equal(t, 3, got.Recurrences[0].IntervalWeeks)

	// nil keeps the current rules
	got.Routine.Name = "Gym"
	require.NoError(t, repo.UpdateRoutine(ctx, &got.Routine, nil))
	recs, err := repo.GetRecurrencesForRoutine(ctx, id)
	require.NoError(t, err)
	require.Len(t, recs, 1)
}

func TestAddTaskAppendsAndReorder(t *testing.T) {
	ctx := context.Background()
	repo := NewDataRepository(setupTestDB(t))

	id, err := repo.CreateRoutineWithRecurrences(ctx, &model.Routine{Name: "Morning"}, nil,
		[]model.Task{{Name: "A", Position: 0}, {Name: "B", Position: 1}})
	require.NoError(t, err)

	taskID, err := repo.AddTaskToRoutine(ctx, id, &model.Task{Name: "C", Position: -1})
	require.NoError(t, err)
	task, err := repo.GetTask(ctx, taskID)
	require.NoError(t, err)
	require.Equal(t, 2, task.Position)

	tasks, err := repo.GetTasksForRoutine(ctx, id)
	require.NoError(t, err)
	order := []uint{tasks[2].ID, tasks[0].ID, tasks[1].ID}
	require.NoError(t, repo.ReorderTasks(ctx, id, order))

	tasks, err = repo.GetTasksForRoutine(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []string{"C", "A", "B"}, []string{tasks[0].Name, tasks[1].Name, tasks[2].Name})

	err = repo.ReorderTasks(ctx, id, []uint{9999})
	require.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	_, err = repo.AddTaskToRoutine(ctx, 4242, &model.Task{Name: "orphan", Position: -1})
	require.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestUpdateAndDeleteTask(t *testing.T) {
	ctx := context.Background()
	repo := NewDataRepository(setupTestDB(t))

	id, err := repo.CreateRoutineWithRecurrences(ctx, &model.Routine{Name: "R"}, nil, []model.Task{{Name: "old"}})
	require.NoError(t, err)
	tasks, err := repo.GetTasksForRoutine(ctx, id)
	require.NoError(t, err)

	task := tasks[0]
	task.Name = "new"
	task.Duration = intPtr(90)
	require.NoError(t, repo.UpdateTask(ctx, &task))

	got, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, "new", got.Name)
	require.Equal(t, 90, *got.Duration)

	require.NoError(t, repo.DeleteTask(ctx, task.ID))
	require.True(t, errors.Is(repo.DeleteTask(ctx, task.ID), ErrNotFound))
}

func TestRemoveAll(t *testing.T) {
	ctx := context.Background()
	repo := NewDataRepository(setupTestDB(t))

	_, err := repo.CreateRoutineWithRecurrences(ctx, &model.Routine{Name: "R"},
		[]model.RoutineRecurrence{{DayOfWeek: 2}}, []model.Task{{Name: "T"}})
	require.NoError(t, err)

	require.NoError(t, repo.RemoveAll(ctx))
	all, err := repo.GetAllRoutinesWithTasks(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestPureGoDriver(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "routines.db")
	db, err := NewDB(config.DatabaseConfig{Driver: "sqlite", Path: path}, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	repo := NewDataRepository(db)
	id, err := repo.CreateRoutineWithRecurrences(ctx, &model.Routine{Name: "Pure"}, nil, nil)
	require.NoError(t, err)
	got, err := repo.GetRoutine(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Pure", got.Name)
}
