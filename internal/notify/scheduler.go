package notify

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const defaultSendTimeout = 30 * time.Second

var specParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduled is a registered notification and its next fire time.
type Scheduled struct {
	ID   string
	Next time.Time
}

// Scheduler keeps one cron entry per notification id.
type Scheduler struct {
	cron   *cron.Cron
	loc    *time.Location
	sender Sender
	log    zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]entry

	sendTimeout time.Duration
}

type entry struct {
	id       cron.EntryID
	schedule cron.Schedule
}

func NewScheduler(loc *time.Location, sender Sender, log zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		loc:         loc,
		sender:      sender,
		log:         log,
		now:         time.Now,
		entries:     make(map[string]entry),
		sendTimeout: defaultSendTimeout,
	}
}

// SetClock replaces the time source used by Next. Call it before scheduling.
func (s *Scheduler) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running deliveries to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Schedule registers n, replacing any notification with the same id.
func (s *Scheduler) Schedule(_ context.Context, n Notification) error {
	if n.ID == "" {
		return fmt.Errorf("notification id is required")
	}
	if n.FireAt.IsZero() {
		return fmt.Errorf("notification %s has no fire time", n.ID)
	}
	sched, err := s.buildSchedule(n)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.entries[n.ID]; ok {
		s.cron.Remove(old.id)
	}
	id := new(cron.EntryID)
	*id = s.cron.Schedule(sched, cron.FuncJob(func() { s.deliver(n, id) }))
	s.entries[n.ID] = entry{id: *id, schedule: sched}

	s.log.Debug().
		Str("id", n.ID).
		Time("fire_at", n.FireAt).
		Int("repeat", int(n.Repeat.Kind)).
		Msg("notification scheduled")
	return nil
}

func (s *Scheduler) buildSchedule(n Notification) (cron.Schedule, error) {
	switch n.Repeat.Kind {
	case RepeatNone:
		return onceSchedule{at: n.FireAt}, nil
	case RepeatDaily:
		local := n.FireAt.In(s.loc)
		spec, err := buildDailySpec(fmt.Sprintf("%02d:%02d", local.Hour(), local.Minute()))
		if err != nil {
			return nil, err
		}
		daily, err := specParser.Parse(spec)
		if err != nil {
			return nil, fmt.Errorf("parse daily spec: %w", err)
		}
		return delayedSchedule{first: n.FireAt, then: daily}, nil
	case RepeatEvery:
		if n.Repeat.Every <= 0 {
			return nil, fmt.Errorf("repeat interval must be positive")
		}
		return periodSchedule{first: n.FireAt, period: n.Repeat.Every}, nil
	default:
		return nil, fmt.Errorf("unknown repeat kind %d", n.Repeat.Kind)
	}
}

// RunEvery registers a maintenance job (not a notification) that runs every interval.
func (s *Scheduler) RunEvery(interval time.Duration, job func()) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), job); err != nil {
		return fmt.Errorf("schedule interval job: %w", err)
	}
	return nil
}

// Cancel removes the notification with id. It reports whether one existed.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return false
	}
	s.cron.Remove(e.id)
	delete(s.entries, id)
	s.log.Debug().Str("id", id).Msg("notification cancelled")
	return true
}

func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		s.cron.Remove(e.id)
		delete(s.entries, id)
	}
}

// Next reports when id fires next, computed from the scheduler's clock.
func (s *Scheduler) Next(id string) (time.Time, bool) {
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	next := e.schedule.Next(s.now().In(s.loc))
	if next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}

// Entries lists every pending notification ordered by next fire time.
func (s *Scheduler) Entries() []Scheduled {
	s.mu.Lock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	out := make([]Scheduled, 0, len(ids))
	for _, id := range ids {
		if next, ok := s.Next(id); ok {
			out = append(out, Scheduled{ID: id, Next: next})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Next.Equal(out[j].Next) {
			return out[i].ID < out[j].ID
		}
		return out[i].Next.Before(out[j].Next)
	})
	return out
}

// deliver sends n. A one-shot entry is dropped only if it is still the one
// that fired; a later Schedule with the same id may have replaced it.
func (s *Scheduler) deliver(n Notification, id *cron.EntryID) {
	if n.Repeat.Kind == RepeatNone {
		s.mu.Lock()
		if e, ok := s.entries[n.ID]; ok && e.id == *id {
			s.cron.Remove(e.id)
			delete(s.entries, n.ID)
		}
		s.mu.Unlock()
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
	defer cancel()
	if err := s.sender.Send(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("id", n.ID).Msg("notification delivery failed")
		return
	}
	s.log.Info().Str("id", n.ID).Msg("notification delivered")
}

// buildDailySpec turns "HH:MM" into a seconds-enabled cron spec.
func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
