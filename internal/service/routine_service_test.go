package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"routine-tracker/internal/config"
	"routine-tracker/internal/logging"
	"routine-tracker/internal/model"
	"routine-tracker/internal/repository"
)

type recordingHook struct {
	scheduled []uint
	cancelled []uint
	err       error
}

func (h *recordingHook) ScheduleRoutine(_ context.Context, id uint) error {
	h.scheduled = append(h.scheduled, id)
	return h.err
}

func (h *recordingHook) CancelRoutine(_ context.Context, id uint) error {
	h.cancelled = append(h.cancelled, id)
	return h.err
}

func newTestRepo(t *testing.T) *repository.DataRepository {
	t.Helper()
	db, err := repository.NewDB(config.DatabaseConfig{
		Driver: "sqlite3",
		Path:   filepath.Join(t.TempDir(), "routines.db"),
	}, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close(db) })
	return repository.NewDataRepository(db)
}

func seconds(n int) *int { return &n }

func TestCreateRoutineValidation(t *testing.T) {
	svc := NewRoutineService(newTestRepo(t), nil, logging.Nop())
	ctx := context.Background()

	tests := []struct {
		name  string
		input RoutineInput
		want  error
	}{
		{"blank name", RoutineInput{Name: "   "}, ErrNameRequired},
		{"bad time", RoutineInput{Name: "Run", Time: "25:00"}, ErrInvalidTime},
		{"bad weekday", RoutineInput{Name: "Run", Days: []model.DayOfWeek{0}}, ErrInvalidWeekday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateRoutine(ctx, tt.input)
			require.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, err := svc.CreateRoutine(ctx, RoutineInput{Name: "Run", Tasks: []TaskInput{{Name: ""}}})
	require.Error(t, err)
}

func TestCreateRoutineStoresEverything(t *testing.T) {
	repo := newTestRepo(t)
	hook := &recordingHook{}
	svc := NewRoutineService(repo, hook, logging.Nop())
	ctx := context.Background()

	got, err := svc.CreateRoutine(ctx, RoutineInput{
		Name:          "  Morning ",
		Time:          "7:05",
		Days:          []model.DayOfWeek{model.Monday, model.Friday, model.Monday},
		IntervalWeeks: 0,
		Tasks: []TaskInput{
			{Name: "Stretch", DurationSeconds: seconds(300)},
			{Name: "Shower"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Morning", got.Routine.Name)
	require.Equal(t, "07:05", got.Routine.TimeString())
	require.Len(t, got.Tasks, 2)
	require.Equal(t, "Stretch", got.Tasks[0].Name)
	require.Equal(t, 1, got.Tasks[1].Position)
	require.Equal(t, []uint{got.Routine.ID}, hook.scheduled)

	recs, err := svc.Recurrences(ctx, got.Routine.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, 1, recs[0].DayOfWeek)
	require.Equal(t, 5, recs[1].DayOfWeek)
	require.Equal(t, 1, recs[0].IntervalWeeks)
}

func TestUpdateRoutineKeepsOrReplacesDays(t *testing.T) {
	repo := newTestRepo(t)
	hook := &recordingHook{}
	svc := NewRoutineService(repo, hook, logging.Nop())
	ctx := context.Background()

	created, err := svc.CreateRoutine(ctx, RoutineInput{Name: "Gym", Time: "18:00", Days: []model.DayOfWeek{model.Tuesday}})
	require.NoError(t, err)
	id := created.Routine.ID

	updated, err := svc.UpdateRoutine(ctx, id, RoutineInput{Name: "Gym+", Time: ""})
	require.NoError(t, err)
	require.Equal(t, "Gym+", updated.Routine.Name)
	require.False(t, updated.Routine.HasTime())
	recs, err := svc.Recurrences(ctx, id)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	_, err = svc.UpdateRoutine(ctx, id, RoutineInput{Name: "Gym+", Days: []model.DayOfWeek{model.Saturday}, IntervalWeeks: 3})
	require.NoError(t, err)
	recs, err = svc.Recurrences(ctx, id)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, 6, recs[0].DayOfWeek)
	require.Equal(t, 3, recs[0].IntervalWeeks)

	_, err = svc.UpdateRoutine(ctx, 999, RoutineInput{Name: "Nope"})
	require.True(t, errors.Is(err, repository.ErrNotFound))
	require.Len(t, hook.scheduled, 3)
}

func TestDeleteRoutineCallsHook(t *testing.T) {
	hook := &recordingHook{}
	svc := NewRoutineService(newTestRepo(t), hook, logging.Nop())
	ctx := context.Background()

	created, err := svc.CreateRoutine(ctx, RoutineInput{Name: "Read"})
	require.NoError(t, err)

	// Hook failures are logged, not returned.
	hook.err = errors.New("scheduler down")
	require.NoError(t, svc.DeleteRoutine(ctx, created.Routine.ID))
	require.Equal(t, []uint{created.Routine.ID}, hook.cancelled)

	err = svc.DeleteRoutine(ctx, created.Routine.ID)
	require.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestTaskServiceLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	routines := NewRoutineService(repo, nil, logging.Nop())
	tasks := NewTaskService(repo)
	ctx := context.Background()

	r, err := routines.CreateRoutine(ctx, RoutineInput{Name: "Evening", Tasks: []TaskInput{{Name: "Dishes"}}})
	require.NoError(t, err)
	rid := r.Routine.ID

	b, err := tasks.AddTask(ctx, rid, TaskInput{Name: "Brush teeth", DurationSeconds: seconds(120)})
	require.NoError(t, err)
	require.Equal(t, 1, b.Position)
	c, err := tasks.AddTask(ctx, rid, TaskInput{Name: "Read"})
	require.NoError(t, err)

	require.NoError(t, tasks.MoveTask(ctx, rid, c.ID, 0))
	list, err := tasks.ListTasks(ctx, rid)
	require.NoError(t, err)
	require.Equal(t, []string{"Read", "Dishes", "Brush teeth"}, taskNames(list))

	_, err = tasks.UpdateTask(ctx, b.ID, TaskInput{Name: "Floss"})
	require.NoError(t, err)

	require.NoError(t, tasks.DeleteTask(ctx, list[1].ID))
	list, err = tasks.ListTasks(ctx, rid)
	require.NoError(t, err)
	require.Equal(t, []string{"Read", "Floss"}, taskNames(list))
	require.Equal(t, 1, list[1].Position)

	require.Error(t, tasks.ReorderTasks(ctx, rid, []uint{list[0].ID}))
	require.Error(t, tasks.ReorderTasks(ctx, rid, []uint{list[0].ID, list[0].ID}))
	require.NoError(t, tasks.ReorderTasks(ctx, rid, []uint{list[1].ID, list[0].ID}))

	_, err = tasks.AddTask(ctx, 999, TaskInput{Name: "x"})
	require.True(t, errors.Is(err, repository.ErrNotFound))
	_, err = tasks.AddTask(ctx, rid, TaskInput{Name: "x", DurationSeconds: seconds(-1)})
	require.Error(t, err)
}

func taskNames(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Name
	}
	return out
}
