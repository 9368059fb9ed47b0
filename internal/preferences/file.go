package preferences

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	yaml "go.yaml.in/yaml/v3"

	"routine-tracker/internal/model"
)

const watchDebounce = 250 * time.Millisecond

// FileStore keeps preferences in a YAML file that users may edit by hand.
type FileStore struct {
	path string
	log  zerolog.Logger
	mu   sync.Mutex
}

func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load(context.Context) (model.UserPreferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.DefaultPreferences(), nil
	}
	if err != nil {
		return model.UserPreferences{}, fmt.Errorf("read preferences: %w", err)
	}

	prefs := model.DefaultPreferences()
	if len(bytes.TrimSpace(raw)) == 0 {
		return prefs, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&prefs); err != nil {
		return model.UserPreferences{}, fmt.Errorf("parse preferences %s: %w", f.path, err)
	}
	return normalize(prefs), nil
}

// Save writes to a temp file and renames it over the target so readers never see a partial file.
func (f *FileStore) Save(_ context.Context, prefs model.UserPreferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	out, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".prefs-*.yaml")
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	if _, err := tmp.Write(out); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("save preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("save preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

// Watch calls onChange (debounced) whenever the file is written, created,
// renamed or removed. It blocks until ctx is done.
func (f *FileStore) Watch(ctx context.Context, onChange func()) error {
	dir := filepath.Dir(f.path)
	file := filepath.Base(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("preferences watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	f.log.Debug().Str("path", f.path).Msg("preferences watcher started")

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, onChange)
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Base(ev.Name), file) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				debounce()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				f.log.Warn().Err(err).Str("path", f.path).Msg("preferences watcher error")
				// Events may have been dropped.
				debounce()
			}
		}
	}
}
