package preferences

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"

	"routine-tracker/internal/model"
)

const charmDBName = "routine-tracker"

// charmKV is the part of *kv.KV the store uses.
type charmKV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Sync() error
	Close() error
}

// CharmStore keeps preferences in Charm Cloud KV so every machine on the
// account shares them. Load pulls remote changes before reading.
type CharmStore struct {
	mu sync.RWMutex
	kv charmKV
}

func OpenCharmStore(name string) (*CharmStore, error) {
	db, err := kv.OpenWithDefaults(name)
	if err != nil {
		return nil, fmt.Errorf("open charm kv: %w", err)
	}
	return &CharmStore{kv: db}, nil
}

func (c *CharmStore) Load(context.Context) (model.UserPreferences, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	// A failed sync means offline; the local replica is still readable.
	_ = c.kv.Sync()
	prefs, err := decodeKV(func(key string) (string, bool, error) {
		val, err := c.kv.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return string(val), true, nil
	})
	if err != nil {
		return model.UserPreferences{}, fmt.Errorf("load preferences: %w", err)
	}
	return prefs, nil
}

func (c *CharmStore) Save(_ context.Context, prefs model.UserPreferences) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range encodeKV(prefs) {
		if err := c.kv.Set([]byte(k), []byte(v)); err != nil {
			return fmt.Errorf("save preferences: %w", err)
		}
	}
	if err := c.kv.Sync(); err != nil {
		return fmt.Errorf("sync preferences: %w", err)
	}
	return nil
}

func (c *CharmStore) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Close()
}
