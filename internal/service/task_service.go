package service

import (
	"context"
	"fmt"
	"strings"

	"routine-tracker/internal/model"
	"routine-tracker/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Name string
	// DurationSeconds is optional.
	DurationSeconds *int
}

func (in TaskInput) toTask() (model.Task, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Task{}, fmt.Errorf("task name is required")
	}
	if in.DurationSeconds != nil && *in.DurationSeconds < 0 {
		return model.Task{}, fmt.Errorf("task duration must not be negative")
	}
	return model.Task{Name: name, Duration: in.DurationSeconds}, nil
}

// TaskService wraps task-related business logic.
type TaskService struct {
	repo *repository.DataRepository
}

func NewTaskService(repo *repository.DataRepository) *TaskService {
	return &TaskService{repo: repo}
}

// AddTask appends a task to the end of the routine.
func (s *TaskService) AddTask(ctx context.Context, routineID uint, input TaskInput) (*model.Task, error) {
	task, err := input.toTask()
	if err != nil {
		return nil, err
	}
	task.Position = -1
	if _, err := s.repo.AddTaskToRoutine(ctx, routineID, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, routineID uint) ([]model.Task, error) {
	if _, err := s.repo.GetRoutine(ctx, routineID); err != nil {
		return nil, err
	}
	return s.repo.GetTasksForRoutine(ctx, routineID)
}

// UpdateTask renames a task and sets its duration. Position is kept.
func (s *TaskService) UpdateTask(ctx context.Context, taskID uint, input TaskInput) (*model.Task, error) {
	next, err := input.toTask()
	if err != nil {
		return nil, err
	}
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	task.Name = next.Name
	task.Duration = next.Duration
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task and closes the gap in positions.
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint) error {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	rest, err := s.repo.GetTasksForRoutine(ctx, task.RoutineID)
	if err != nil {
		return err
	}
	ids := make([]uint, len(rest))
	for i, t := range rest {
		ids[i] = t.ID
	}
	return s.repo.ReorderTasks(ctx, task.RoutineID, ids)
}

// ReorderTasks applies a full ordering. Every task of the routine must be listed exactly once.
func (s *TaskService) ReorderTasks(ctx context.Context, routineID uint, taskIDs []uint) error {
	current, err := s.ListTasks(ctx, routineID)
	if err != nil {
		return err
	}
	if len(taskIDs) != len(current) {
		return fmt.Errorf("reorder needs all %d tasks, got %d", len(current), len(taskIDs))
	}
	seen := make(map[uint]bool, len(taskIDs))
	for _, id := range taskIDs {
		if seen[id] {
			return fmt.Errorf("task %d listed twice", id)
		}
		seen[id] = true
	}
	return s.repo.ReorderTasks(ctx, routineID, taskIDs)
}

// MoveTask moves one task to a new 0-based index.
func (s *TaskService) MoveTask(ctx context.Context, routineID, taskID uint, to int) error {
	current, err := s.ListTasks(ctx, routineID)
	if err != nil {
		return err
	}
	ids := make([]uint, 0, len(current))
	found := false
	for _, t := range current {
		if t.ID == taskID {
			found = true
			continue
		}
		ids = append(ids, t.ID)
	}
	if !found {
		return fmt.Errorf("task %d in routine %d: %w", taskID, routineID, repository.ErrNotFound)
	}
	if to < 0 {
		to = 0
	}
	if to > len(ids) {
		to = len(ids)
	}
	ids = append(ids[:to], append([]uint{taskID}, ids[to:]...)...)
	return s.repo.ReorderTasks(ctx, routineID, ids)
}
