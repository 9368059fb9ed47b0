// Package notify schedules reminder notifications on a cron runner and
// delivers them through a Sender.
package notify

import (
	"context"
	"time"
)

type RepeatKind int

const (
	RepeatNone RepeatKind = iota
	RepeatDaily
	RepeatEvery
)

// Repeat describes how a notification recurs after its first fire.
type Repeat struct {
	Kind  RepeatKind
	Every time.Duration
}

func Once() Repeat                 { return Repeat{Kind: RepeatNone} }
func Daily() Repeat                { return Repeat{Kind: RepeatDaily} }
func Every(d time.Duration) Repeat { return Repeat{Kind: RepeatEvery, Every: d} }

// Notification is a scheduled message. ID is stable: scheduling the same ID again replaces it.
type Notification struct {
	ID     string
	Title  string
	Body   string
	FireAt time.Time
	Repeat Repeat
}

// Sender delivers a notification when it fires.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, n Notification) error

func (f SenderFunc) Send(ctx context.Context, n Notification) error { return f(ctx, n) }
