package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"routine-tracker/internal/bot"
	"routine-tracker/internal/logging"
	"routine-tracker/internal/notify"
	"routine-tracker/internal/preferences"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reminder daemon (and the Telegram bot when configured)",
		Long: `Serve keeps every reminder scheduled and delivers it when due.

DELIVERY:

  With telegram.token and telegram.chat_id set, reminders are sent to that
  chat and the bot answers commands there (/routines, /newroutine, /next,
  /reminders on|off, /lead, /daily). Without them reminders are logged.

SYNC:

  Routines and preferences are re-read every resync_interval (default 15m),
  so changes made with the CLI reach the daemon. The "file" preferences
  backend is also watched and applied immediately.

SYSTEMD:

  Serve reports READY=1 and STOPPING=1 when run as a Type=notify unit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, c.app)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	log := logging.Component(a.log, "serve")

	var tg *bot.Bot
	if a.cfg.TelegramEnabled() {
		api, err := bot.NewAPI(a.cfg.Telegram.Token, logging.Component(a.log, "bot"))
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		a.sender = notify.Fanout{
			notify.NewTelegramSender(api, a.cfg.Telegram.ChatID, a.cfg.Telegram.RatePerSec),
			a.sender,
		}
		tg = bot.New(api, a.cfg.Telegram.ChatID, bot.Deps{
			Routines: a.routines,
			Tasks:    a.tasks,
			Settings: a.settings,
			Clock:    a.clock,
		}, logging.Component(a.log, "bot"))
	} else {
		log.Info().Msg("telegram not configured, reminders go to the log")
	}

	a.scheduler.Start()
	resync := func(reason string) {
		if err := a.settings.Resync(ctx); err != nil {
			log.Warn().Err(err).Str("reason", reason).Msg("resync reminders")
			return
		}
		log.Debug().Str("reason", reason).Int("scheduled", len(a.settings.Upcoming())).Msg("reminders resynced")
	}
	resync("startup")

	if err := a.scheduler.RunEvery(a.cfg.Resync, func() {
		if _, err := a.prefs.Reload(ctx); err != nil {
			log.Warn().Err(err).Msg("reload preferences")
		}
		resync("interval")
	}); err != nil {
		return fmt.Errorf("schedule resync: %w", err)
	}

	var wg sync.WaitGroup
	updates := a.prefs.Subscribe(1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range updates {
			resync("preferences")
		}
	}()

	if fs, ok := a.prefsStore.(*preferences.FileStore); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := fs.Watch(ctx, func() {
				if _, err := a.prefs.Reload(ctx); err != nil {
					log.Warn().Err(err).Msg("reload preferences")
				}
			})
			if err != nil {
				log.Warn().Err(err).Msg("preferences watcher stopped")
			}
		}()
	}

	botErr := make(chan error, 1)
	if tg != nil {
		go func() { botErr <- tg.Start(ctx) }()
	}

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Warn().Err(err).Msg("sd_notify ready")
	} else if ok {
		log.Debug().Msg("notified systemd")
	}
	log.Info().Dur("resync", a.cfg.Resync).Str("timezone", a.cfg.Location.String()).Msg("routine tracker started")

	var err error
	select {
	case <-ctx.Done():
	case err = <-botErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("bot stopped")
		}
	}

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	a.scheduler.Stop()
	a.prefs.Unsubscribe(updates)
	wg.Wait()
	log.Info().Msg("shutdown complete")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
