package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"routine-tracker/internal/config"
	"routine-tracker/internal/logging"
	"routine-tracker/internal/notify"
	"routine-tracker/internal/preferences"
	"routine-tracker/internal/repository"
	"routine-tracker/internal/service"
)

// app is the wired object graph shared by every command.
type app struct {
	cfg config.Config
	log zerolog.Logger

	db         *gorm.DB
	prefsStore preferences.Store
	prefs      *preferences.Repository
	scheduler  *notify.Scheduler
	clock      service.Clock
	sender     notify.Sender

	settings *service.SettingsService
	routines *service.RoutineService
	tasks    *service.TaskService
}

func openApp(ctx context.Context, configPath string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg.Log.Level, logging.Format(cfg.Log.Format), logOut)

	db, err := repository.NewDB(cfg.Database, logging.Component(log, "db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &app{cfg: cfg, log: log, db: db}

	store, err := preferences.Open(cfg.Preferences, db, logging.Component(log, "prefs"))
	if err != nil {
		_ = repository.Close(db)
		return nil, fmt.Errorf("open preferences: %w", err)
	}
	a.prefsStore = store
	prefs, err := preferences.NewRepository(ctx, store, logging.Component(log, "prefs"))
	if err != nil {
		_ = store.Close()
		_ = repository.Close(db)
		return nil, err
	}
	a.prefs = prefs

	a.sender = notify.NewLogSender(logging.Component(log, "notify"))
	a.clock = service.NewSystemClock(cfg.Location)
	a.scheduler = notify.NewScheduler(cfg.Location, notify.SenderFunc(a.deliver), logging.Component(log, "scheduler"))
	a.scheduler.SetClock(a.clock.Now)

	data := repository.NewDataRepository(db)
	a.settings = service.NewSettingsService(prefs, data, a.scheduler, a.clock, logging.Component(log, "settings"))
	a.routines = service.NewRoutineService(data, a.settings, logging.Component(log, "routines"))
	a.tasks = service.NewTaskService(data)
	return a, nil
}

// deliver forwards to the current sender; serve swaps it before the scheduler starts.
func (a *app) deliver(ctx context.Context, n notify.Notification) error {
	return a.sender.Send(ctx, n)
}

func (a *app) Close() error {
	a.scheduler.Stop()
	return errors.Join(a.prefs.Close(), repository.Close(a.db))
}
