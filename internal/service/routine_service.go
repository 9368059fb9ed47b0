package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"routine-tracker/internal/model"
	"routine-tracker/internal/repository"
)

// RoutineInput is the data a user submits to create or edit a routine.
type RoutineInput struct {
	Name string
	// Time is "HH:MM" or empty for an unspecified time.
	Time string
	// Days nil keeps the current days on update; an empty slice clears them.
	Days          []model.DayOfWeek
	IntervalWeeks int
	Tasks         []TaskInput
}

// ReminderHook keeps reminders in step with routine changes.
type ReminderHook interface {
	ScheduleRoutine(ctx context.Context, routineID uint) error
	CancelRoutine(ctx context.Context, routineID uint) error
}

// RoutineService wraps routine-related business logic.
type RoutineService struct {
	repo  *repository.DataRepository
	hooks ReminderHook
	log   zerolog.Logger
}

func NewRoutineService(repo *repository.DataRepository, hooks ReminderHook, log zerolog.Logger) *RoutineService {
	return &RoutineService{repo: repo, hooks: hooks, log: log}
}

func (s *RoutineService) CreateRoutine(ctx context.Context, input RoutineInput) (*model.RoutineWithTasks, error) {
	routine, recs, err := input.normalize()
	if err != nil {
		return nil, err
	}
	tasks := make([]model.Task, 0, len(input.Tasks))
	for i, ti := range input.Tasks {
		task, err := ti.toTask()
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		task.Position = i
		tasks = append(tasks, task)
	}

	id, err := s.repo.CreateRoutineWithRecurrences(ctx, routine, recs, tasks)
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("routine_id", id).Str("name", routine.Name).Int("days", len(recs)).Msg("routine created")
	s.afterChange(ctx, id)
	return s.repo.GetRoutineWithTasks(ctx, id)
}

// UpdateRoutine replaces name, time and recurrence days. Tasks are edited separately.
func (s *RoutineService) UpdateRoutine(ctx context.Context, id uint, input RoutineInput) (*model.RoutineWithTasks, error) {
	routine, recs, err := input.normalize()
	if err != nil {
		return nil, err
	}
	routine.ID = id
	if err := s.repo.UpdateRoutine(ctx, routine, recs); err != nil {
		return nil, err
	}
	s.log.Info().Uint("routine_id", id).Msg("routine updated")
	s.afterChange(ctx, id)
	return s.repo.GetRoutineWithTasks(ctx, id)
}

func (s *RoutineService) DeleteRoutine(ctx context.Context, id uint) error {
	if err := s.repo.DeleteRoutine(ctx, id); err != nil {
		return err
	}
	s.log.Info().Uint("routine_id", id).Msg("routine deleted")
	if s.hooks != nil {
		if err := s.hooks.CancelRoutine(ctx, id); err != nil {
			s.log.Warn().Err(err).Uint("routine_id", id).Msg("cancel reminders failed")
		}
	}
	return nil
}

func (s *RoutineService) ListRoutines(ctx context.Context) ([]model.RoutineWithTasks, error) {
	return s.repo.GetAllRoutinesWithTasks(ctx)
}

func (s *RoutineService) GetRoutine(ctx context.Context, id uint) (*model.RoutineWithTasks, error) {
	return s.repo.GetRoutineWithTasks(ctx, id)
}

func (s *RoutineService) Recurrences(ctx context.Context, id uint) ([]model.RoutineRecurrence, error) {
	return s.repo.GetRecurrencesForRoutine(ctx, id)
}

// RecurrenceMap returns every routine's recurrences keyed by routine id.
func (s *RoutineService) RecurrenceMap(ctx context.Context) (map[uint][]model.RoutineRecurrence, error) {
	all, err := s.repo.GetAllRoutinesWithRecurrences(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[uint][]model.RoutineRecurrence, len(all))
	for _, rwr := range all {
		out[rwr.Routine.ID] = rwr.Recurrences
	}
	return out, nil
}

// afterChange reschedules reminders; the routine is already saved, so failures are only logged.
func (s *RoutineService) afterChange(ctx context.Context, id uint) {
	if s.hooks == nil {
		return
	}
	if err := s.hooks.ScheduleRoutine(ctx, id); err != nil {
		s.log.Warn().Err(err).Uint("routine_id", id).Msg("reschedule reminders failed")
	}
}

func (in RoutineInput) normalize() (*model.Routine, []model.RoutineRecurrence, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil, ErrNameRequired
	}
	routine := &model.Routine{Name: name}
	if raw := strings.TrimSpace(in.Time); raw != "" {
		t, err := ValidateTimeOfDay(raw)
		if err != nil {
			return nil, nil, err
		}
		routine.Time = &t
	}

	if in.Days == nil {
		return routine, nil, nil
	}
	interval := in.IntervalWeeks
	if interval < 1 {
		interval = 1
	}
	seen := make(map[model.DayOfWeek]bool, len(in.Days))
	recs := make([]model.RoutineRecurrence, 0, len(in.Days))
	for _, d := range in.Days {
		if !d.Valid() {
			return nil, nil, fmt.Errorf("%w: %d", ErrInvalidWeekday, d)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		recs = append(recs, model.RoutineRecurrence{DayOfWeek: int(d), IntervalWeeks: interval})
	}
	return routine, recs, nil
}
