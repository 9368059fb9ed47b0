package preferences

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
	"github.com/rs/zerolog"

	"routine-tracker/internal/model"
)

const badgerKeyPrefix = "prefs:"

// BadgerStore keeps preferences in a local badger directory.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) the badger directory at path.
// An empty path opens an in-memory database.
func OpenBadgerStore(path string, log zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{log: log})
	if path == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create badger dir: %w", err)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Load(context.Context) (model.UserPreferences, error) {
	var prefs model.UserPreferences
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		prefs, err = decodeKV(func(key string) (string, bool, error) {
			item, err := txn.Get([]byte(badgerKeyPrefix + key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				return "", false, nil
			}
			if err != nil {
				return "", false, err
			}
			val, err := item.ValueCopy(nil)
			if err != nil {
				return "", false, err
			}
			return string(val), true, nil
		})
		return err
	})
	if err != nil {
		return model.UserPreferences{}, fmt.Errorf("load preferences: %w", err)
	}
	return prefs, nil
}

func (b *BadgerStore) Save(_ context.Context, prefs model.UserPreferences) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		for k, v := range encodeKV(prefs) {
			if err := txn.Set([]byte(badgerKeyPrefix+k), []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func (b *BadgerStore) Close() error { return b.db.Close() }

// badgerLogger routes badger's internal logging into zerolog at reduced levels.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.log.Error().Msgf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.log.Warn().Msgf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.log.Debug().Msgf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.log.Trace().Msgf(f, v...) }
