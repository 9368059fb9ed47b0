package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// LogSender writes notifications to the log. Used when no chat is configured.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, n Notification) error {
	s.log.Info().
		Str("id", n.ID).
		Str("title", n.Title).
		Str("body", n.Body).
		Msg("reminder")
	return nil
}

// MessageSender is the part of *tgbotapi.BotAPI used for delivery.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSender posts notifications to a single chat, rate limited.
type TelegramSender struct {
	api     MessageSender
	chatID  int64
	limiter *rate.Limiter
}

func NewTelegramSender(api MessageSender, chatID int64, perSecond int) *TelegramSender {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &TelegramSender{
		api:     api,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
	}
}

func (s *TelegramSender) Send(ctx context.Context, n Notification) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit: %w", err)
	}
	msg := tgbotapi.NewMessage(s.chatID, FormatHTML(n))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// FormatHTML renders a notification as Telegram HTML.
func FormatHTML(n Notification) string {
	var b strings.Builder
	b.WriteString("⏰ <b>")
	b.WriteString(html.EscapeString(n.Title))
	b.WriteString("</b>")
	if n.Body != "" {
		b.WriteString("\n")
		b.WriteString(html.EscapeString(n.Body))
	}
	return b.String()
}

// Fanout delivers to every sender and joins their errors.
type Fanout []Sender

func (f Fanout) Send(ctx context.Context, n Notification) error {
	var errs []error
	for _, s := range f {
		if err := s.Send(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
