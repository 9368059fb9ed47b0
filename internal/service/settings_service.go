package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"routine-tracker/internal/model"
	"routine-tracker/internal/notify"
	"routine-tracker/internal/repository"
)

// Clock supplies the current instant and the zone used for calendar math.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type systemClock struct {
	loc *time.Location
}

func NewSystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time           { return time.Now().In(c.loc) }
func (c systemClock) Location() *time.Location { return c.loc }

// RoutineSource is the read side of the repository the reminders need.
type RoutineSource interface {
	GetAllRoutinesWithRecurrences(ctx context.Context) ([]model.RoutineWithRecurrences, error)
	GetRoutineWithRecurrences(ctx context.Context, id uint) (*model.RoutineWithRecurrences, error)
	CountRoutinesMissingTime(ctx context.Context) (int64, error)
}

type NotificationScheduler interface {
	Schedule(ctx context.Context, n notify.Notification) error
	Cancel(id string) bool
	Next(id string) (time.Time, bool)
}

type PreferenceStore interface {
	Get() model.UserPreferences
	SetRemindersEnabled(ctx context.Context, enabled bool) error
	SetLeadTime(ctx context.Context, lead model.LeadTime) error
	SetDailyReminderTime(ctx context.Context, hour, minute int) error
}

// SettingsState is a snapshot for settings surfaces.
type SettingsState struct {
	RemindersEnabled bool
	LeadOptions      []model.LeadTime
	SelectedLead     model.LeadTime
	DailyHour        int
	DailyMinute      int
}

// Upcoming is a scheduled reminder and its next fire instant.
type Upcoming struct {
	ID        string
	RoutineID uint
	Body      string
	At        time.Time
}

type tracked struct {
	routineID uint
	body      string
}

// SettingsService owns reminder preferences and keeps the scheduler in step with them.
type SettingsService struct {
	prefs     PreferenceStore
	routines  RoutineSource
	scheduler NotificationScheduler
	clock     Clock
	log       zerolog.Logger

	mu      sync.Mutex
	tracked map[string]tracked
}

func NewSettingsService(prefs PreferenceStore, routines RoutineSource, scheduler NotificationScheduler, clock Clock, log zerolog.Logger) *SettingsService {
	return &SettingsService{
		prefs:     prefs,
		routines:  routines,
		scheduler: scheduler,
		clock:     clock,
		log:       log,
		tracked:   make(map[string]tracked),
	}
}

func (s *SettingsService) State() SettingsState {
	p := s.prefs.Get()
	return SettingsState{
		RemindersEnabled: p.RemindersEnabled,
		LeadOptions:      model.LeadTimeOptions(),
		SelectedLead:     selectedLead(p),
		DailyHour:        p.UnspecifiedReminderHour,
		DailyMinute:      p.UnspecifiedReminderMinute,
	}
}

func selectedLead(p model.UserPreferences) model.LeadTime {
	if p.SpecifiedTimeOption == "" {
		return model.LeadTimeOptions()[0]
	}
	return p.SpecifiedTimeOption
}

// ToggleReminders persists the flag, then schedules or cancels every reminder.
func (s *SettingsService) ToggleReminders(ctx context.Context, enabled bool) error {
	if err := s.prefs.SetRemindersEnabled(ctx, enabled); err != nil {
		return fmt.Errorf("save reminders flag: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !enabled {
		s.cancelAllLocked()
		s.log.Info().Msg("reminders disabled")
		return nil
	}
	err := s.scheduleAllLocked(ctx)
	s.log.Info().Int("scheduled", len(s.tracked)).Msg("reminders enabled")
	return err
}

func (s *SettingsService) SetLeadTime(ctx context.Context, lead model.LeadTime) error {
	if !lead.Valid() {
		return fmt.Errorf("%w: %q (options: %s)", ErrUnknownLeadTime, lead, joinLeadOptions())
	}
	if err := s.prefs.SetLeadTime(ctx, lead); err != nil {
		return fmt.Errorf("save lead time: %w", err)
	}
	if !s.prefs.Get().RemindersEnabled {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.tracked {
		if id != DailyReminderID {
			s.cancelLocked(id)
		}
	}
	return s.scheduleSpecifiedLocked(ctx)
}

func (s *SettingsService) SetDailyReminderTime(ctx context.Context, hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("%w: %d:%d", ErrInvalidReminderTime, hour, minute)
	}
	if err := s.prefs.SetDailyReminderTime(ctx, hour, minute); err != nil {
		return fmt.Errorf("save daily reminder time: %w", err)
	}
	if !s.prefs.Get().RemindersEnabled {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(DailyReminderID)
	return s.refreshDailyLocked(ctx)
}

// ScheduleRoutine (re)schedules one routine's reminders after it was created or edited.
func (s *SettingsService) ScheduleRoutine(ctx context.Context, routineID uint) error {
	if !s.prefs.Get().RemindersEnabled {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelRoutineLocked(routineID)

	rwr, err := s.routines.GetRoutineWithRecurrences(ctx, routineID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.refreshDailyLocked(ctx)
	case err != nil:
		return fmt.Errorf("load routine %d: %w", routineID, err)
	}
	lead := selectedLead(s.prefs.Get()).Duration()
	return errors.Join(
		s.scheduleRoutineLocked(ctx, *rwr, lead, s.clock.Now()),
		s.refreshDailyLocked(ctx),
	)
}

// CancelRoutine drops one routine's reminders after it was deleted.
func (s *SettingsService) CancelRoutine(ctx context.Context, routineID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelRoutineLocked(routineID)
	if !s.prefs.Get().RemindersEnabled {
		return nil
	}
	return s.refreshDailyLocked(ctx)
}

// Resync rebuilds every reminder from storage and the current preferences.
func (s *SettingsService) Resync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelAllLocked()
	if !s.prefs.Get().RemindersEnabled {
		return nil
	}
	return s.scheduleAllLocked(ctx)
}

// Upcoming lists scheduled reminders ordered by next fire time.
func (s *SettingsService) Upcoming() []Upcoming {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Upcoming, 0, len(s.tracked))
	for id, t := range s.tracked {
		at, ok := s.scheduler.Next(id)
		if !ok {
			continue
		}
		out = append(out, Upcoming{ID: id, RoutineID: t.routineID, Body: t.body, At: at})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].At.Equal(out[j].At) {
			return out[i].ID < out[j].ID
		}
		return out[i].At.Before(out[j].At)
	})
	return out
}

func (s *SettingsService) scheduleAllLocked(ctx context.Context) error {
	return errors.Join(
		s.refreshDailyLocked(ctx),
		s.scheduleSpecifiedLocked(ctx),
	)
}

func (s *SettingsService) refreshDailyLocked(ctx context.Context) error {
	missing, err := s.routines.CountRoutinesMissingTime(ctx)
	if err != nil {
		return fmt.Errorf("count routines without time: %w", err)
	}
	if missing == 0 {
		s.cancelLocked(DailyReminderID)
		return nil
	}
	p := s.prefs.Get()
	fireAt := NextDailyOccurrence(p.UnspecifiedReminderHour, p.UnspecifiedReminderMinute, s.clock.Now(), s.clock.Location())
	return s.scheduleLocked(ctx, dailyNotification(missing, fireAt), 0)
}

func (s *SettingsService) scheduleSpecifiedLocked(ctx context.Context) error {
	routines, err := s.routines.GetAllRoutinesWithRecurrences(ctx)
	if err != nil {
		return fmt.Errorf("load routines: %w", err)
	}
	lead := selectedLead(s.prefs.Get()).Duration()
	now := s.clock.Now()
	var errs []error
	for _, rwr := range routines {
		if err := s.scheduleRoutineLocked(ctx, rwr, lead, now); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *SettingsService) scheduleRoutineLocked(ctx context.Context, rwr model.RoutineWithRecurrences, lead time.Duration, now time.Time) error {
	r := rwr.Routine
	if !r.HasTime() {
		return nil
	}
	if len(rwr.Recurrences) == 0 {
		s.log.Debug().Uint("routine_id", r.ID).Msg("timed routine has no recurrences; no reminder")
		return nil
	}
	hour, minute := ParseHourMinute(r.TimeString())
	var errs []error
	for _, rec := range rwr.Recurrences {
		fireAt := NextSpecifiedOccurrence(rec.DayOfWeek, rec.Interval(), hour, minute, lead, now, s.clock.Location())
		if err := s.scheduleLocked(ctx, specifiedNotification(r, rec, fireAt), r.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *SettingsService) scheduleLocked(ctx context.Context, n notify.Notification, routineID uint) error {
	if err := s.scheduler.Schedule(ctx, n); err != nil {
		return fmt.Errorf("schedule %s: %w", n.ID, err)
	}
	s.tracked[n.ID] = tracked{routineID: routineID, body: n.Body}
	return nil
}

func (s *SettingsService) cancelLocked(id string) {
	s.scheduler.Cancel(id)
	delete(s.tracked, id)
}

func (s *SettingsService) cancelRoutineLocked(routineID uint) {
	prefix := fmt.Sprintf("%s%d-", specifiedReminderPrefix, routineID)
	for id := range s.tracked {
		if strings.HasPrefix(id, prefix) {
			s.cancelLocked(id)
		}
	}
}

func (s *SettingsService) cancelAllLocked() {
	for id := range s.tracked {
		s.cancelLocked(id)
	}
	// The daily id may have been scheduled before this process started tracking.
	s.scheduler.Cancel(DailyReminderID)
}

func joinLeadOptions() string {
	opts := model.LeadTimeOptions()
	names := make([]string, len(opts))
	for i, o := range opts {
		names[i] = string(o)
	}
	return strings.Join(names, ", ")
}
