package preferences

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"routine-tracker/internal/model"
)

// Repository is the observable holder of the current preferences.
// Every setter persists through the Store before publishing.
type Repository struct {
	store Store
	log   zerolog.Logger

	mu      sync.RWMutex
	current model.UserPreferences

	subsMu sync.Mutex
	subs   map[chan model.UserPreferences]struct{}
}

func NewRepository(ctx context.Context, store Store, log zerolog.Logger) (*Repository, error) {
	prefs, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Repository{
		store:   store,
		log:     log,
		current: prefs,
		subs:    make(map[chan model.UserPreferences]struct{}),
	}, nil
}

// Get returns the current snapshot.
func (r *Repository) Get() model.UserPreferences {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *Repository) SetRemindersEnabled(ctx context.Context, enabled bool) error {
	return r.update(ctx, func(p *model.UserPreferences) { p.RemindersEnabled = enabled })
}

func (r *Repository) SetLeadTime(ctx context.Context, lead model.LeadTime) error {
	if !lead.Valid() {
		return fmt.Errorf("unknown lead time %q", lead)
	}
	return r.update(ctx, func(p *model.UserPreferences) { p.SpecifiedTimeOption = lead })
}

func (r *Repository) SetDailyReminderTime(ctx context.Context, hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid daily reminder time %02d:%02d", hour, minute)
	}
	return r.update(ctx, func(p *model.UserPreferences) {
		p.UnspecifiedReminderHour = hour
		p.UnspecifiedReminderMinute = minute
	})
}

func (r *Repository) update(ctx context.Context, mutate func(*model.UserPreferences)) error {
	r.mu.Lock()
	next := r.current
	mutate(&next)
	if err := r.store.Save(ctx, next); err != nil {
		r.mu.Unlock()
		return err
	}
	r.current = next
	r.mu.Unlock()

	r.publish(next)
	return nil
}

// Reload re-reads the store and publishes when the value changed.
func (r *Repository) Reload(ctx context.Context) (bool, error) {
	prefs, err := r.store.Load(ctx)
	if err != nil {
		return false, err
	}
	r.mu.Lock()
	changed := prefs != r.current
	r.current = prefs
	r.mu.Unlock()

	if changed {
		r.log.Debug().
			Bool("reminders_enabled", prefs.RemindersEnabled).
			Str("lead", string(prefs.SpecifiedTimeOption)).
			Msg("preferences changed externally")
		r.publish(prefs)
	}
	return changed, nil
}

// Subscribe returns a channel that receives every new snapshot. A slow
// subscriber only sees the latest value.
func (r *Repository) Subscribe(buffer int) chan model.UserPreferences {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan model.UserPreferences, buffer)
	r.subsMu.Lock()
	r.subs[ch] = struct{}{}
	r.subsMu.Unlock()
	return ch
}

func (r *Repository) Unsubscribe(ch chan model.UserPreferences) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	if _, ok := r.subs[ch]; ok {
		delete(r.subs, ch)
		close(ch)
	}
}

func (r *Repository) publish(prefs model.UserPreferences) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	for ch := range r.subs {
		select {
		case ch <- prefs:
		default:
			// drop oldest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- prefs:
			default:
			}
		}
	}
}

// Close releases the backing store and closes all subscriptions.
func (r *Repository) Close() error {
	r.subsMu.Lock()
	for ch := range r.subs {
		delete(r.subs, ch)
		close(ch)
	}
	r.subsMu.Unlock()
	return r.store.Close()
}
