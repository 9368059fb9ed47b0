package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"routine-tracker/internal/model"
	"routine-tracker/internal/repository"
	"routine-tracker/internal/service"
)

const (
	cbShowPrefix   = "show:"
	cbDeletePrefix = "delete:"
	cbLeadPrefix   = "lead:"
)

type confirmationAction int

const (
	actionDelete confirmationAction = iota
)

type confirmationRequest struct {
	routineID uint
	action    confirmationAction
}

const helpText = "ℹ️ <b>Commands</b>\n" +
	"• /routines — list routines\n" +
	"• /routine &lt;id&gt; — show one routine with its tasks\n" +
	"• /newroutine — add a routine step by step\n" +
	"• /delete &lt;id&gt; — delete a routine\n" +
	"• /reminders on|off — turn reminders on or off\n" +
	"• /lead [option] — how long before a timed routine to remind you\n" +
	"• /daily HH:MM — daily reminder for routines without a time\n" +
	"• /next — upcoming reminders\n" +
	"• /cancel — cancel the current input"

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := "there"
	if msg.From != nil && strings.TrimSpace(msg.From.FirstName) != "" {
		name = strings.TrimSpace(msg.From.FirstName)
	}
	text := fmt.Sprintf("👋 Hi, %s!\n<b>I keep track of your routines and remind you before they start.</b>\n\n%s", escape(name), helpText)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, helpText)
}

func (b *Bot) sendRoutineList(ctx context.Context, chatID int64) error {
	routines, err := b.deps.Routines.ListRoutines(ctx)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load routines: %s", escape(err.Error())))
	}
	if len(routines) == 0 {
		return b.sendText(chatID, "No routines yet. Add one with /newroutine.")
	}
	recs, err := b.deps.Routines.RecurrenceMap(ctx)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load routines: %s", escape(err.Error())))
	}

	var sb strings.Builder
	sb.WriteString("📋 <b>Routines</b>\n")
	buttons := make([][]tgbotapi.InlineKeyboardButton, 0, len(routines))
	for _, r := range routines {
		sb.WriteString(formatRoutineLine(r, recs[r.Routine.ID]))
		label := shortTitle(r.Routine.Name, 24)
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📖 "+label, fmt.Sprintf("%s%d", cbShowPrefix, r.Routine.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("%s%d", cbDeletePrefix, r.Routine.ID)),
		))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(sb.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleShowRoutine(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give a routine id: /routine 3")
	}
	return b.sendRoutine(ctx, msg.Chat.ID, id)
}

func (b *Bot) sendRoutine(ctx context.Context, chatID int64, id uint) error {
	r, err := b.deps.Routines.GetRoutine(ctx, id)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	recs, err := b.deps.Routines.Recurrences(ctx, id)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	return b.sendText(chatID, formatRoutineDetails(*r, recs))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give a routine id: /delete 3")
	}
	return b.askDeleteConfirmation(ctx, msg.Chat.ID, msg.From.ID, id)
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID, userID int64, id uint) error {
	r, err := b.deps.Routines.GetRoutine(ctx, id)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	b.setConfirmation(userID, confirmationRequest{routineID: id, action: actionDelete})
	text := fmt.Sprintf("🗑 Delete routine «%s» and its %d tasks?", escape(r.Routine.Name), len(r.Tasks))
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		if err := b.deps.Routines.DeleteRoutine(ctx, req.routineID); err != nil {
			return b.sendText(msg.Chat.ID, errorText(err))
		}
		if err := b.sendText(msg.Chat.ID, "✅ Routine deleted."); err != nil {
			return err
		}
		return b.sendRoutineList(ctx, msg.Chat.ID)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Kept it.")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Confirm or cancel the deletion.", confirmKeyboard())
	}
}

func (b *Bot) handleReminders(ctx context.Context, msg *tgbotapi.Message) error {
	arg := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	switch arg {
	case "":
		return b.sendText(msg.Chat.ID, formatSettings(b.deps.Settings.State()))
	case "on", "off":
		if err := b.deps.Settings.ToggleReminders(ctx, arg == "on"); err != nil {
			return b.sendText(msg.Chat.ID, errorText(err))
		}
		if arg == "off" {
			return b.sendText(msg.Chat.ID, "🔕 Reminders are off.")
		}
		return b.sendText(msg.Chat.ID, "🔔 Reminders are on.\n\n"+service.FormatUpcomingHTML(b.deps.Settings.Upcoming(), b.deps.Clock.Now()))
	default:
		return b.sendText(msg.Chat.ID, "Use /reminders on or /reminders off.")
	}
}

func (b *Bot) handleLead(ctx context.Context, msg *tgbotapi.Message) error {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		state := b.deps.Settings.State()
		text := fmt.Sprintf("⏱ Remind me before timed routines. Current: <b>%s</b>", escape(string(state.SelectedLead)))
		return b.sendWithReplyMarkup(msg.Chat.ID, text, leadKeyboard(state.LeadOptions, state.SelectedLead))
	}
	return b.setLead(ctx, msg.Chat.ID, model.LeadTime(arg))
}

func (b *Bot) setLead(ctx context.Context, chatID int64, lead model.LeadTime) error {
	if err := b.deps.Settings.SetLeadTime(ctx, lead); err != nil {
		return b.sendText(chatID, errorText(err))
	}
	return b.sendText(chatID, fmt.Sprintf("⏱ Lead time set to <b>%s</b>.", escape(string(lead))))
}

func (b *Bot) handleDaily(ctx context.Context, msg *tgbotapi.Message) error {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		state := b.deps.Settings.State()
		return b.sendText(msg.Chat.ID, fmt.Sprintf("📅 Daily reminder at <b>%s</b>. Change it with /daily HH:MM", service.FormatTime(state.DailyHour, state.DailyMinute)))
	}
	normalized, err := service.ValidateTimeOfDay(arg)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Use 24-hour time, for example /daily 08:30")
	}
	hour, minute := service.ParseHourMinute(normalized)
	if err := b.deps.Settings.SetDailyReminderTime(ctx, hour, minute); err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📅 Daily reminder set to <b>%s</b>.", normalized))
}

func (b *Bot) handleNext(msg *tgbotapi.Message) error {
	if !b.deps.Settings.State().RemindersEnabled {
		return b.sendText(msg.Chat.ID, "🔕 Reminders are off. Turn them on with /reminders on.")
	}
	return b.sendText(msg.Chat.ID, service.FormatUpcomingHTML(b.deps.Settings.Upcoming(), b.deps.Clock.Now()))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil {
		return nil
	}
	data := cb.Data
	chatID := cb.Message.Chat.ID
	b.log.Debug().Int64("user_id", cb.From.ID).Str("data", data).Msg("callback")

	switch {
	case strings.HasPrefix(data, cbShowPrefix):
		b.ack(cb, "")
		id, err := parseID(strings.TrimPrefix(data, cbShowPrefix))
		if err != nil {
			return nil
		}
		return b.sendRoutine(ctx, chatID, id)
	case strings.HasPrefix(data, cbDeletePrefix):
		b.ack(cb, "")
		id, err := parseID(strings.TrimPrefix(data, cbDeletePrefix))
		if err != nil {
			return nil
		}
		return b.askDeleteConfirmation(ctx, chatID, cb.From.ID, id)
	case strings.HasPrefix(data, cbLeadPrefix):
		lead := model.LeadTime(strings.TrimPrefix(data, cbLeadPrefix))
		b.ack(cb, string(lead))
		return b.setLead(ctx, chatID, lead)
	default:
		b.ack(cb, "")
		return nil
	}
}

func parseID(raw string) (uint, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "#")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

func errorText(err error) string {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "Routine not found."
	case errors.Is(err, service.ErrUnknownLeadTime):
		return "Unknown lead time. Pick one of: " + escape(leadOptionList())
	default:
		return "Error: " + escape(err.Error())
	}
}
