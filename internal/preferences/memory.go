package preferences

import (
	"context"
	"sync"

	"routine-tracker/internal/model"
)

// MemoryStore keeps preferences in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	prefs model.UserPreferences
}

func NewMemoryStore(initial model.UserPreferences) *MemoryStore {
	return &MemoryStore{prefs: normalize(initial)}
}

func (m *MemoryStore) Load(context.Context) (model.UserPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs, nil
}

func (m *MemoryStore) Save(_ context.Context, prefs model.UserPreferences) error {
	m.mu.Lock()
	m.prefs = prefs
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }
