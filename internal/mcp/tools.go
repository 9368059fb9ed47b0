package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"routine-tracker/internal/model"
	"routine-tracker/internal/service"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_routines",
		Description: "List all routines with their time, days and task count",
	}, s.handleListRoutines)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_routine",
		Description: "Get one routine with its ordered tasks and recurrence days",
	}, s.handleGetRoutine)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "create_routine",
		Description: "Create a routine with optional start time, weekdays and tasks",
	}, s.handleCreateRoutine)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_routine",
		Description: "Delete a routine together with its tasks and recurrences",
	}, s.handleDeleteRoutine)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_task",
		Description: "Append a task to a routine",
	}, s.handleAddTask)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_reminders",
		Description: "Turn reminders on or off and optionally change the lead time or the daily reminder time",
	}, s.handleSetReminders)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "next_reminders",
		Description: "List the upcoming reminder notifications",
	}, s.handleNextReminders)
}

// Input types

type emptyInput struct{}

type routineIDInput struct {
	ID uint `json:"id" jsonschema:"Routine ID"`
}

type taskInput struct {
	Name            string `json:"name" jsonschema:"Task name"`
	DurationMinutes int    `json:"duration_minutes,omitempty" jsonschema:"Optional duration in minutes"`
}

type createRoutineInput struct {
	Name          string      `json:"name" jsonschema:"Routine name"`
	Time          string      `json:"time,omitempty" jsonschema:"Start time HH:MM (24-hour); omit for no fixed time"`
	Days          []string    `json:"days,omitempty" jsonschema:"Weekdays as names (mon, tue) or ISO numbers (1=Monday..7=Sunday)"`
	IntervalWeeks int         `json:"interval_weeks,omitempty" jsonschema:"Repeat every N weeks (default 1)"`
	Tasks         []taskInput `json:"tasks,omitempty" jsonschema:"Tasks in order"`
}

type addTaskInput struct {
	RoutineID       uint   `json:"routine_id" jsonschema:"Routine ID"`
	Name            string `json:"name" jsonschema:"Task name"`
	DurationMinutes int    `json:"duration_minutes,omitempty" jsonschema:"Optional duration in minutes"`
}

type setRemindersInput struct {
	Enabled   bool   `json:"enabled" jsonschema:"Whether reminders are on"`
	LeadTime  string `json:"lead_time,omitempty" jsonschema:"Lead time before timed routines: 5 min, 15 min, 30 min, 1 hour or 4 hours"`
	DailyTime string `json:"daily_time,omitempty" jsonschema:"Daily reminder time HH:MM for routines without a time"`
}

// Output types

type taskOutput struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Duration string `json:"duration,omitempty"`
}

type routineOutput struct {
	ID            uint         `json:"id"`
	Name          string       `json:"name"`
	Time          string       `json:"time,omitempty"`
	Days          []string     `json:"days,omitempty"`
	IntervalWeeks int          `json:"interval_weeks,omitempty"`
	TaskCount     int          `json:"task_count"`
	Tasks         []taskOutput `json:"tasks,omitempty"`
}

type routineListOutput struct {
	Routines []routineOutput `json:"routines"`
	Message  string          `json:"message,omitempty"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type reminderOutput struct {
	ID   string `json:"id"`
	Body string `json:"body"`
	At   string `json:"at"`
}

type remindersOutput struct {
	Enabled   bool             `json:"enabled"`
	LeadTime  string           `json:"lead_time"`
	DailyTime string           `json:"daily_time"`
	Upcoming  []reminderOutput `json:"upcoming"`
	Message   string           `json:"message,omitempty"`
}

// Tool handlers

func (s *Server) handleListRoutines(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, routineListOutput, error) {
	routines, err := s.routines.ListRoutines(ctx)
	if err != nil {
		return nil, routineListOutput{}, fmt.Errorf("failed to list routines: %w", err)
	}
	recs, err := s.routines.RecurrenceMap(ctx)
	if err != nil {
		return nil, routineListOutput{}, fmt.Errorf("failed to list routines: %w", err)
	}
	out := routineListOutput{Routines: make([]routineOutput, 0, len(routines))}
	for _, r := range routines {
		out.Routines = append(out.Routines, toRoutineOutput(r, recs[r.Routine.ID], false))
	}
	if len(out.Routines) == 0 {
		out.Message = "No routines found."
	}
	return nil, out, nil
}

func (s *Server) handleGetRoutine(ctx context.Context, req *mcp.CallToolRequest, input routineIDInput) (*mcp.CallToolResult, routineOutput, error) {
	r, err := s.routines.GetRoutine(ctx, input.ID)
	if err != nil {
		return nil, routineOutput{}, fmt.Errorf("failed to get routine: %w", err)
	}
	recs, err := s.routines.Recurrences(ctx, input.ID)
	if err != nil {
		return nil, routineOutput{}, fmt.Errorf("failed to get routine: %w", err)
	}
	return nil, toRoutineOutput(*r, recs, true), nil
}

func (s *Server) handleCreateRoutine(ctx context.Context, req *mcp.CallToolRequest, input createRoutineInput) (*mcp.CallToolResult, routineOutput, error) {
	ri := service.RoutineInput{
		Name:          input.Name,
		Time:          input.Time,
		IntervalWeeks: input.IntervalWeeks,
		Days:          []model.DayOfWeek{},
	}
	for _, raw := range input.Days {
		d, err := model.ParseDayOfWeek(raw)
		if err != nil {
			return nil, routineOutput{}, err
		}
		ri.Days = append(ri.Days, d)
	}
	for _, t := range input.Tasks {
		ri.Tasks = append(ri.Tasks, toTaskInput(t.Name, t.DurationMinutes))
	}

	created, err := s.routines.CreateRoutine(ctx, ri)
	if err != nil {
		return nil, routineOutput{}, fmt.Errorf("failed to create routine: %w", err)
	}
	recs, err := s.routines.Recurrences(ctx, created.Routine.ID)
	if err != nil {
		return nil, routineOutput{}, err
	}
	return nil, toRoutineOutput(*created, recs, true), nil
}

func (s *Server) handleDeleteRoutine(ctx context.Context, req *mcp.CallToolRequest, input routineIDInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.routines.DeleteRoutine(ctx, input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete routine: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Deleted routine %d", input.ID)}, nil
}

func (s *Server) handleAddTask(ctx context.Context, req *mcp.CallToolRequest, input addTaskInput) (*mcp.CallToolResult, taskOutput, error) {
	task, err := s.tasks.AddTask(ctx, input.RoutineID, toTaskInput(input.Name, input.DurationMinutes))
	if err != nil {
		return nil, taskOutput{}, fmt.Errorf("failed to add task: %w", err)
	}
	return nil, toTaskOutput(*task), nil
}

func (s *Server) handleSetReminders(ctx context.Context, req *mcp.CallToolRequest, input setRemindersInput) (*mcp.CallToolResult, remindersOutput, error) {
	if input.LeadTime != "" {
		if err := s.settings.SetLeadTime(ctx, model.LeadTime(input.LeadTime)); err != nil {
			return nil, remindersOutput{}, err
		}
	}
	if input.DailyTime != "" {
		normalized, err := service.ValidateTimeOfDay(input.DailyTime)
		if err != nil {
			return nil, remindersOutput{}, err
		}
		hour, minute := service.ParseHourMinute(normalized)
		if err := s.settings.SetDailyReminderTime(ctx, hour, minute); err != nil {
			return nil, remindersOutput{}, err
		}
	}
	if err := s.settings.ToggleReminders(ctx, input.Enabled); err != nil {
		return nil, remindersOutput{}, fmt.Errorf("failed to update reminders: %w", err)
	}
	out := s.remindersSnapshot()
	if input.Enabled {
		out.Message = fmt.Sprintf("Reminders on, %d scheduled", len(out.Upcoming))
	} else {
		out.Message = "Reminders off"
	}
	return nil, out, nil
}

func (s *Server) handleNextReminders(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, remindersOutput, error) {
	out := s.remindersSnapshot()
	if !out.Enabled {
		out.Message = "Reminders are off."
	}
	return nil, out, nil
}

func (s *Server) remindersSnapshot() remindersOutput {
	state := s.settings.State()
	out := remindersOutput{
		Enabled:   state.RemindersEnabled,
		LeadTime:  string(state.SelectedLead),
		DailyTime: service.FormatTime(state.DailyHour, state.DailyMinute),
		Upcoming:  []reminderOutput{},
	}
	loc := s.clock.Location()
	for _, u := range s.settings.Upcoming() {
		out.Upcoming = append(out.Upcoming, reminderOutput{ID: u.ID, Body: u.Body, At: u.At.In(loc).Format(time.RFC3339)})
	}
	return out
}

func toTaskInput(name string, minutes int) service.TaskInput {
	in := service.TaskInput{Name: name}
	if minutes > 0 {
		secs := minutes * 60
		in.DurationSeconds = &secs
	}
	return in
}

func toTaskOutput(t model.Task) taskOutput {
	out := taskOutput{ID: t.ID, Name: t.Name, Position: t.Position}
	if t.Duration != nil {
		out.Duration = service.FormatDuration(*t.Duration)
	}
	return out
}

func toRoutineOutput(r model.RoutineWithTasks, recs []model.RoutineRecurrence, withTasks bool) routineOutput {
	out := routineOutput{
		ID:        r.Routine.ID,
		Name:      r.Routine.Name,
		Time:      r.Routine.TimeString(),
		TaskCount: len(r.Tasks),
	}
	for _, rec := range recs {
		out.Days = append(out.Days, model.DayOfWeek(rec.DayOfWeek).String())
		if rec.Interval() > out.IntervalWeeks {
			out.IntervalWeeks = rec.Interval()
		}
	}
	if withTasks {
		for _, t := range r.Tasks {
			out.Tasks = append(out.Tasks, toTaskOutput(t))
		}
	}
	return out
}
