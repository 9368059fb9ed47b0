// Package bot is the Telegram surface: routine management and reminder
// settings for a single configured chat.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"routine-tracker/internal/service"
)

// API is the subset of *tgbotapi.BotAPI the handlers use.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Deps are the services the bot drives.
type Deps struct {
	Routines *service.RoutineService
	Tasks    *service.TaskService
	Settings *service.SettingsService
	Clock    service.Clock
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api    API
	poller *tgbotapi.BotAPI
	chatID int64
	deps   Deps
	log    zerolog.Logger

	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	mu            sync.Mutex
}

// NewAPI authorizes against Telegram.
func NewAPI(token string, log zerolog.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Info().Str("account", api.Self.UserName).Msg("bot authorized")
	return api, nil
}

func New(api *tgbotapi.BotAPI, chatID int64, deps Deps, log zerolog.Logger) *Bot {
	b := newBot(api, chatID, deps, log)
	b.poller = api
	return b
}

func newBot(api API, chatID int64, deps Deps, log zerolog.Logger) *Bot {
	return &Bot{
		api:           api,
		chatID:        chatID,
		deps:          deps,
		log:           log,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.poller == nil {
		return errors.New("bot has no polling client")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.poller.GetUpdatesChan(updateConfig)

	b.log.Info().Int64("chat_id", b.chatID).Msg("start polling updates")

	go func() {
		<-ctx.Done()
		b.poller.StopReceivingUpdates()
	}()

	for update := range updates {
		if err := b.HandleUpdate(ctx, update); err != nil {
			b.log.Warn().Err(err).Int("update_id", update.UpdateID).Msg("handle update")
		}
	}
	return nil
}

// HandleUpdate routes one update. Updates from other chats are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.Message == nil || cb.Message.Chat == nil || !b.allowed(cb.Message.Chat.ID) {
			return nil
		}
		return b.handleCallback(ctx, cb)
	case update.Message != nil:
		if update.Message.Chat == nil || !b.allowed(update.Message.Chat.ID) {
			if update.Message.Chat != nil {
				b.log.Debug().Int64("chat_id", update.Message.Chat.ID).Msg("ignoring message from unknown chat")
			}
			return nil
		}
		return b.handleMessage(ctx, update.Message)
	}
	return nil
}

func (b *Bot) allowed(chatID int64) bool {
	return chatID == b.chatID
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	}

	if msg.IsCommand() {
		b.log.Info().Int64("user_id", msg.From.ID).Str("command", msg.Command()).Str("args", msg.CommandArguments()).Msg("command")
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if state := b.getConversation(msg.From.ID); state != nil {
		b.log.Debug().Int64("user_id", msg.From.ID).Int("stage", int(state.stage)).Msg("conversation step")
		return b.handleConversation(ctx, msg, state)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	return b.sendText(msg.Chat.ID, "I didn't get that. Try /newroutine to add a routine or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "routines":
		return b.sendRoutineList(ctx, msg.Chat.ID)
	case "routine":
		return b.handleShowRoutine(ctx, msg)
	case "newroutine":
		return b.startNewRoutineConversation(msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "reminders":
		return b.handleReminders(ctx, msg)
	case "lead":
		return b.handleLead(ctx, msg)
	case "daily":
		return b.handleDaily(ctx, msg)
	case "next":
		return b.handleNext(msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	switch strings.TrimSpace(msg.Text) {
	case menuLabelNewRoutine:
		return true, b.startNewRoutineConversation(msg)
	case menuLabelRoutines:
		return true, b.sendRoutineList(ctx, msg.Chat.ID)
	case menuLabelNext:
		return true, b.handleNext(msg)
	case menuLabelHelp:
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) ack(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		b.log.Debug().Err(err).Msg("callback ack")
	}
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}
