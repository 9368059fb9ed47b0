package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"routine-tracker/internal/model"
	"routine-tracker/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageName
	stageTime
	stageDays
	stageInterval
	stageTasks
)

type conversationState struct {
	stage conversationStage
	input service.RoutineInput
}

func (b *Bot) startNewRoutineConversation(msg *tgbotapi.Message) error {
	b.log.Info().Int64("user_id", msg.From.ID).Msg("start new routine conversation")
	b.clearConfirmation(msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageName})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New routine.\n<b>Step 1:</b> what is it called?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)
	chatID := msg.Chat.ID

	switch state.stage {
	case stageName:
		if text == "" {
			return b.sendWithReplyMarkup(chatID, "The name can't be empty.", cancelKeyboard())
		}
		state.input.Name = text
		state.stage = stageTime
		return b.sendWithReplyMarkup(chatID, "⏰ <b>Step 2:</b> start time as <code>HH:MM</code>, or skip if it has no fixed time.", skipKeyboard())
	case stageTime:
		if !isSkipInput(text) {
			normalized, err := service.ValidateTimeOfDay(text)
			if err != nil {
				return b.sendWithReplyMarkup(chatID, "Use 24-hour time like <code>07:30</code>, or skip.", skipKeyboard())
			}
			state.input.Time = normalized
		}
		state.stage = stageDays
		return b.sendWithReplyMarkup(chatID, "📆 <b>Step 3:</b> which days? For example <code>mon,wed,fri</code> or <code>1,3,5</code>. Skip for none.", daysKeyboard())
	case stageDays:
		if isSkipInput(text) {
			state.input.Days = []model.DayOfWeek{}
			state.stage = stageTasks
			return b.askTasks(chatID)
		}
		days, err := parseDaysInput(text)
		if err != nil {
			return b.sendWithReplyMarkup(chatID, escape(err.Error())+". Try <code>mon,thu</code>.", daysKeyboard())
		}
		state.input.Days = days
		state.stage = stageInterval
		return b.sendWithReplyMarkup(chatID, "🔁 <b>Step 4:</b> repeat every how many weeks? (1 = every week)", skipKeyboard())
	case stageInterval:
		state.input.IntervalWeeks = 1
		if !isSkipInput(text) {
			n, err := strconv.Atoi(text)
			if err != nil || n < 1 || n > 52 {
				return b.sendWithReplyMarkup(chatID, "Give a number of weeks between 1 and 52.", skipKeyboard())
			}
			state.input.IntervalWeeks = n
		}
		state.stage = stageTasks
		return b.askTasks(chatID)
	case stageTasks:
		if isDoneInput(text) || isSkipInput(text) {
			err := b.finishRoutineCreation(ctx, chatID, state.input)
			b.clearConversation(msg.From.ID)
			return err
		}
		task, err := parseTaskLine(text)
		if err != nil {
			return b.sendWithReplyMarkup(chatID, escape(err.Error()), doneKeyboard())
		}
		state.input.Tasks = append(state.input.Tasks, task)
		return b.sendWithReplyMarkup(chatID, fmt.Sprintf("➕ Added task %d. Send another or press Done.", len(state.input.Tasks)), doneKeyboard())
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(chatID, "Conversation reset. Start again with /newroutine.")
	}
}

func (b *Bot) askTasks(chatID int64) error {
	return b.sendWithReplyMarkup(chatID,
		"📝 <b>Last step:</b> send tasks one per message, optionally with a duration: <code>Stretch 10m</code>. Press Done when finished.",
		doneKeyboard())
}

func (b *Bot) finishRoutineCreation(ctx context.Context, chatID int64, input service.RoutineInput) error {
	created, err := b.deps.Routines.CreateRoutine(ctx, input)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not save the routine: %s", escape(err.Error())))
	}
	recs, err := b.deps.Routines.Recurrences(ctx, created.Routine.ID)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	return b.sendText(chatID, "✅ <b>Routine saved</b>\n\n"+formatRoutineDetails(*created, recs))
}

// parseDaysInput accepts ISO numbers, day names and "daily"/"weekdays"/"weekends".
func parseDaysInput(text string) ([]model.DayOfWeek, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "daily", "every day", "everyday":
		return model.AllDays(), nil
	case "weekdays":
		return model.AllDays()[:5], nil
	case "weekends":
		return model.AllDays()[5:], nil
	}
	return model.ParseDays(text)
}

// parseTaskLine reads "Name" or "Name <duration>" where duration is like 10m or 1h30m.
func parseTaskLine(text string) (service.TaskInput, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return service.TaskInput{}, fmt.Errorf("task name can't be empty")
	}
	fields := strings.Fields(text)
	if len(fields) > 1 {
		if d, err := time.ParseDuration(fields[len(fields)-1]); err == nil && d > 0 {
			secs := int(d.Seconds())
			return service.TaskInput{
				Name:            strings.Join(fields[:len(fields)-1], " "),
				DurationSeconds: &secs,
			}, nil
		}
	}
	return service.TaskInput{Name: text}, nil
}
