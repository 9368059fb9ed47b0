package notify

import (
	"time"

	"github.com/robfig/cron/v3"
)

// onceSchedule fires a single time.
type onceSchedule struct {
	at time.Time
}

func (s onceSchedule) Next(t time.Time) time.Time {
	if t.Before(s.at) {
		return s.at
	}
	return time.Time{}
}

// delayedSchedule fires at first, then follows then.
type delayedSchedule struct {
	first time.Time
	then  cron.Schedule
}

func (s delayedSchedule) Next(t time.Time) time.Time {
	if t.Before(s.first) {
		return s.first
	}
	return s.then.Next(t)
}

// periodSchedule fires at first + k*period.
type periodSchedule struct {
	first  time.Time
	period time.Duration
}

func (s periodSchedule) Next(t time.Time) time.Time {
	if t.Before(s.first) {
		return s.first
	}
	steps := t.Sub(s.first)/s.period + 1
	return s.first.Add(steps * s.period)
}
