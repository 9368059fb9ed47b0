package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestPeriodSchedule(t *testing.T) {
	first := time.Date(2024, 1, 1, 7, 45, 0, 0, time.UTC)
	s := periodSchedule{first: first, period: 14 * 24 * time.Hour}

	require.Equal(t, first, s.Next(first.Add(-time.Hour)))
	require.Equal(t, first.Add(14*24*time.Hour), s.Next(first))
	require.Equal(t, first.Add(28*24*time.Hour), s.Next(first.Add(20*24*time.Hour)))
}

func TestDelayedDailySchedule(t *testing.T) {
	spec, err := buildDailySpec("09:00")
	require.NoError(t, err)
	require.Equal(t, "0 0 9 * * *", spec)
	daily, err := specParser.Parse(spec)
	require.NoError(t, err)

	first := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	s := delayedSchedule{first: first, then: daily}
	require.Equal(t, first, s.Next(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))
	require.Equal(t, first.Add(24*time.Hour), s.Next(first))
}

func TestOnceSchedule(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := onceSchedule{at: at}
	require.Equal(t, at, s.Next(at.Add(-time.Second)))
	require.True(t, s.Next(at).IsZero())
}

func TestBuildDailySpecRejectsBadInput(t *testing.T) {
	for _, bad := range []string{"", "9", "25:00", "12:61", "ab:cd"} {
		_, err := buildDailySpec(bad)
		require.Error(t, err, bad)
	}
}

func TestSchedulerReplaceCancelAndEntries(t *testing.T) {
	s := NewScheduler(time.UTC, NewLogSender(zerolog.Nop()), zerolog.Nop())
	ctx := context.Background()
	far := time.Now().Add(48 * time.Hour).Truncate(time.Second)

	require.NoError(t, s.Schedule(ctx, Notification{ID: "a", FireAt: far, Repeat: Every(7 * 24 * time.Hour)}))
	require.NoError(t, s.Schedule(ctx, Notification{ID: "b", FireAt: far.Add(time.Hour), Repeat: Daily()}))
	require.NoError(t, s.Schedule(ctx, Notification{ID: "a", FireAt: far.Add(2 * time.Hour), Repeat: Once()}))

	entries := s.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "b", entries[0].ID)
	require.Equal(t, "a", entries[1].ID)
	require.True(t, far.Add(2*time.Hour).Equal(entries[1].Next))
	require.Len(t, s.cron.Entries(), 2)

	require.True(t, s.Cancel("a"))
	require.False(t, s.Cancel("a"))
	_, ok := s.Next("a")
	require.False(t, ok)

	s.CancelAll()
	require.Empty(t, s.Entries())
	require.Empty(t, s.cron.Entries())
}

func TestSchedulerNextUsesClock(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	s := NewScheduler(time.UTC, NewLogSender(zerolog.Nop()), zerolog.Nop())
	s.SetClock(func() time.Time { return now })

	first := time.Date(2024, 1, 1, 7, 45, 0, 0, time.UTC)
	require.NoError(t, s.Schedule(context.Background(), Notification{ID: "w", FireAt: first, Repeat: Every(7 * 24 * time.Hour)}))

	next, ok := s.Next("w")
	require.True(t, ok)
	require.Equal(t, time.Date(2024, 1, 8, 7, 45, 0, 0, time.UTC), next)
}

func TestSchedulerDeliverKeepsReplacedOneShot(t *testing.T) {
	s := NewScheduler(time.UTC, SenderFunc(func(context.Context, Notification) error { return nil }), zerolog.Nop())
	ctx := context.Background()
	n := Notification{ID: "once", FireAt: time.Now().Add(time.Hour), Repeat: Once()}

	require.NoError(t, s.Schedule(ctx, n))
	stale := s.entries["once"].id
	require.NoError(t, s.Schedule(ctx, n))
	current := s.entries["once"].id
	require.NotEqual(t, stale, current)

	s.deliver(n, &stale)
	_, ok := s.Next("once")
	require.True(t, ok, "replacement must survive the old entry firing")

	s.deliver(n, &current)
	_, ok = s.Next("once")
	require.False(t, ok)
	require.Empty(t, s.cron.Entries())
}

func TestSchedulerRejectsInvalid(t *testing.T) {
	s := NewScheduler(time.UTC, NewLogSender(zerolog.Nop()), zerolog.Nop())
	ctx := context.Background()
	require.Error(t, s.Schedule(ctx, Notification{FireAt: time.Now()}))
	require.Error(t, s.Schedule(ctx, Notification{ID: "x"}))
	require.Error(t, s.Schedule(ctx, Notification{ID: "x", FireAt: time.Now(), Repeat: Every(0)}))
}

func TestSchedulerDeliversOnce(t *testing.T) {
	got := make(chan Notification, 1)
	sender := SenderFunc(func(_ context.Context, n Notification) error {
		got <- n
		return nil
	})
	s := NewScheduler(time.UTC, sender, zerolog.Nop())
	s.Start()
	defer s.Stop()

	n := Notification{ID: "soon", Title: "Routine Reminder", Body: "Soon: Morning", FireAt: time.Now().Add(300 * time.Millisecond)}
	require.NoError(t, s.Schedule(context.Background(), n))

	select {
	case delivered := <-got:
		require.Equal(t, "Soon: Morning", delivered.Body)
	case <-time.After(5 * time.Second):
		t.Fatal("notification was not delivered")
	}
	require.Eventually(t, func() bool {
		_, ok := s.Next("soon")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func TestTelegramSender(t *testing.T) {
	bot := &fakeBot{}
	s := NewTelegramSender(bot, 42, 5)
	err := s.Send(context.Background(), Notification{Title: "Routine Reminder", Body: "Soon: <Gym>"})
	require.NoError(t, err)
	require.Len(t, bot.sent, 1)
	require.Equal(t, int64(42), bot.sent[0].ChatID)
	require.Equal(t, tgbotapi.ModeHTML, bot.sent[0].ParseMode)
	require.True(t, strings.Contains(bot.sent[0].Text, "Soon: &lt;Gym&gt;"))

	bot.err = errors.New("boom")
	require.Error(t, s.Send(context.Background(), Notification{Title: "x"}))
}

func TestFanoutJoinsErrors(t *testing.T) {
	var calls int
	ok := SenderFunc(func(context.Context, Notification) error { calls++; return nil })
	bad := SenderFunc(func(context.Context, Notification) error { calls++; return errors.New("down") })
	err := Fanout{ok, bad, ok}.Send(context.Background(), Notification{})
	require.Error(t, err)
	require.Equal(t, 3, calls)
}
