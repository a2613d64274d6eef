package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/nnamon/hippo/internal/content"
	"github.com/nnamon/hippo/internal/domain"
	"github.com/nnamon/hippo/internal/store"
)

// ensureProfile makes sure a profile row exists; if not, creates it with
// the default waking window and interval.
func (r *Router) ensureProfile(ctx context.Context, chatID int64, from *tgbotapi.User) (*domain.UserProfile, error) {
	p, err := r.repo.GetProfile(ctx, chatID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	p = &domain.UserProfile{
		UserID:          chatID,
		WakingStartHour: domain.DefaultWakingStartHour,
		WakingEndHour:   domain.DefaultWakingEndHour,
		IntervalMinutes: domain.DefaultIntervalMinutes,
		Timezone:        r.defaultTZ,
		Active:          true,
		CreatedAt:       time.Now().UTC(),
	}
	if from != nil {
		p.Username = from.UserName
		p.FirstName = from.FirstName
	}
	if err := r.repo.UpsertProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// --- Core commands ---

func (r *Router) handleStart(ctx context.Context, chatID int64, from *tgbotapi.User) {
	p, err := r.ensureProfile(ctx, chatID, from)
	if err != nil {
		r.log.Error("ensureProfile failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Profile initialization error. Please try again later.")
		return
	}
	if p.Active {
		r.timers.Start(chatID)
	}

	msg := tgbotapi.NewMessage(chatID, startText)
	msg.ReplyMarkup = mainMenuKeyboard(p.Active)
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Int64("chatID", chatID), zap.Error(err))
	}
}

func (r *Router) handleStatus(ctx context.Context, chatID int64) {
	p, err := r.ensureProfile(ctx, chatID, nil)
	if err != nil {
		r.log.Error("ensureProfile failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Error reading your settings.")
		return
	}

	activeText := "✅ On"
	if !p.Active {
		activeText = "⏸ Paused"
	}
	hours := fmt.Sprintf("%s–%s",
		domain.Clock{Hour: p.WakingStartHour, Minute: p.WakingStartMinute},
		domain.Clock{Hour: p.WakingEndHour, Minute: p.WakingEndMinute})
	if p.AlwaysActive() {
		hours = "24/7"
	}

	body := fmt.Sprintf("%s\n\n"+statusFmt,
		statusTitle,
		p.IntervalMinutes,
		hours,
		p.Timezone,
		activeText,
	)
	if local, err := domain.LocalClock(time.Now().UTC(), p.Timezone); err == nil {
		body += "• Your local time: " + local + "\n"
	}

	msg := tgbotapi.NewMessage(chatID, body)
	msg.ReplyMarkup = mainMenuKeyboard(p.Active)
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Int64("chatID", chatID), zap.Error(err))
	}
}

func (r *Router) handleStats(ctx context.Context, chatID int64) {
	if _, err := r.ensureProfile(ctx, chatID, nil); err != nil {
		r.log.Error("ensureProfile failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Error reading your stats.")
		return
	}

	level, err := r.levels.Level(ctx, chatID)
	if err != nil {
		r.log.Error("level failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Error computing your hydration level.")
		return
	}
	confirmed, missed, err := r.repo.DailyStats(ctx, chatID)
	if err != nil {
		r.log.Error("daily stats failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Error reading your stats.")
		return
	}

	body := fmt.Sprintf("📊 Hydration level: %s\nToday: %d✅ %d❌",
		content.LevelCaption(level), confirmed, missed)
	r.sendText(chatID, body)
}

func (r *Router) handleSettings(ctx context.Context, chatID int64) {
	if _, err := r.ensureProfile(ctx, chatID, nil); err != nil {
		r.log.Error("ensureProfile failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Error opening settings.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, "What do you want to configure?")
	msg.ReplyMarkup = settingsInlineKeyboard()
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Int64("chatID", chatID), zap.Error(err))
	}
}

// --- Pause / resume / reset ---

func (r *Router) handlePause(ctx context.Context, chatID int64) {
	if err := r.repo.SetActive(ctx, chatID, false); err != nil {
		r.log.Error("pause failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Failed to pause.")
		return
	}
	r.timers.Cancel(chatID)

	msg := tgbotapi.NewMessage(chatID, "Reminders paused ⏸")
	msg.ReplyMarkup = mainMenuKeyboard(false)
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleResume(ctx context.Context, chatID int64) {
	if _, err := r.ensureProfile(ctx, chatID, nil); err != nil {
		r.log.Error("ensureProfile failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Failed to resume.")
		return
	}
	if err := r.repo.SetActive(ctx, chatID, true); err != nil {
		r.log.Error("resume failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Failed to resume.")
		return
	}
	r.timers.Start(chatID)

	msg := tgbotapi.NewMessage(chatID, "Reminders resumed ✅")
	msg.ReplyMarkup = mainMenuKeyboard(true)
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleReset(_ context.Context, chatID int64) {
	msg := tgbotapi.NewMessage(chatID, resetText)
	msg.ReplyMarkup = resetConfirmKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleResetCallback(ctx context.Context, chatID int64, data string, cb *tgbotapi.CallbackQuery) {
	_ = r.answerCallback(cb.ID, "")
	if data != "reset:confirm" {
		r.sendText(chatID, "Reset cancelled.")
		return
	}

	r.timers.Cancel(chatID)
	if err := r.repo.DeleteUser(ctx, chatID); err != nil {
		r.log.Error("reset failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Failed to erase your data. Please try again.")
		return
	}
	r.clearPending(chatID)
	r.sendText(chatID, "All your data is gone. Send /start to begin again. 🦛")
}

// --- Water confirmation ---

func (r *Router) handleConfirmWater(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery) {
	reminderID := strings.TrimPrefix(cb.Data, "confirm:")

	rem, err := r.repo.GetOutstandingReminder(ctx, reminderID)
	if errors.Is(err, store.ErrNotFound) {
		// The expire sweep got there first.
		_ = r.answerCallback(cb.ID, "This reminder has already expired ⏰")
		return
	}
	if err != nil {
		r.log.Error("lookup reminder failed", zap.String("reminderID", reminderID), zap.Error(err))
		_ = r.answerCallback(cb.ID, "Something went wrong, try again.")
		return
	}

	if err := r.repo.AppendOutcome(ctx, rem.UserID, domain.OutcomeConfirmed, rem.ReminderID); err != nil {
		r.log.Error("record confirmation failed", zap.String("reminderID", reminderID), zap.Error(err))
		_ = r.answerCallback(cb.ID, "Something went wrong, try again.")
		return
	}
	if err := r.repo.DeleteOutstandingReminder(ctx, rem.ReminderID); err != nil {
		r.log.Error("delete reminder failed", zap.String("reminderID", reminderID), zap.Error(err))
	}

	// Swap the button; failure here is cosmetic.
	edit := tgbotapi.NewEditMessageReplyMarkup(rem.Handle.ChatID, rem.Handle.MessageID, confirmedReminderKeyboard())
	if _, err := r.bot.Request(edit); err != nil {
		r.log.Warn("edit confirmed markup failed", zap.String("reminderID", reminderID), zap.Error(err))
	}
	_ = r.answerCallback(cb.ID, "Nice! Keep it flowing 💧")
	r.log.Info("reminder confirmed", zap.Int64("userID", rem.UserID), zap.String("reminderID", reminderID))
}

// --- Interval flow ---

func (r *Router) askIntervalPresets(chatID int64, cbID string) {
	_ = r.answerCallback(cbID, "")
	msg := tgbotapi.NewMessage(chatID, "Choose an interval (or Custom to enter your own):")
	msg.ReplyMarkup = intervalPresetsKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleIntervalCallback(ctx context.Context, chatID int64, data, cbID string) {
	_ = r.answerCallback(cbID, "")
	if data == "interval:custom" {
		r.sendText(chatID, "Enter interval, e.g.: 30m, 1h, 1h30m, 90")
		r.setPending(chatID, pendingInterval)
		return
	}
	r.applyInterval(ctx, chatID, strings.TrimPrefix(data, "interval:"))
}

func (r *Router) applyInterval(ctx context.Context, chatID int64, raw string) {
	minutes, err := domain.ParseIntervalMinutes(raw)
	if err != nil {
		r.sendText(chatID, "Invalid interval. Examples: 30m, 1h, 1h30m.")
		return
	}
	if _, err := r.ensureProfile(ctx, chatID, nil); err != nil {
		r.log.Error("ensureProfile failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Could not save interval.")
		return
	}
	if err := r.repo.UpdateInterval(ctx, chatID, minutes); err != nil {
		r.log.Error("update interval failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Could not save interval.")
		return
	}
	r.timers.Start(chatID) // reschedule with the new interval
	r.sendText(chatID, fmt.Sprintf("Interval updated: every %d min", minutes))
}

// --- Waking hours flow ---

func (r *Router) askHoursPresets(chatID int64, cbID string) {
	_ = r.answerCallback(cbID, "")
	msg := tgbotapi.NewMessage(chatID, "Choose waking hours (or Custom):")
	msg.ReplyMarkup = hoursPresetsKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleHoursCallback(ctx context.Context, chatID int64, data, cbID string) {
	_ = r.answerCallback(cbID, "")
	switch data {
	case "hours:custom":
		r.sendText(chatID, "Enter waking hours as HH:MM-HH:MM (e.g., 07:00-22:00)")
		r.setPending(chatID, pendingHours)
		return
	case "hours:always":
		// The 24/7 sentinel window.
		r.applyHours(ctx, chatID, domain.Clock{Hour: 0}, domain.Clock{Hour: 23}, "24/7")
		return
	}
	start, end, err := domain.ParseWakingWindow(strings.TrimPrefix(data, "hours:"))
	if err != nil {
		r.sendText(chatID, "Invalid format. Example: 07:00-22:00")
		return
	}
	r.applyHours(ctx, chatID, start, end, fmt.Sprintf("%s–%s", start, end))
}

func (r *Router) applyHours(ctx context.Context, chatID int64, start, end domain.Clock, label string) {
	if _, err := r.ensureProfile(ctx, chatID, nil); err != nil {
		r.log.Error("ensureProfile failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Could not save waking hours.")
		return
	}
	if err := r.repo.UpdateWakingWindow(ctx, chatID, start, end); err != nil {
		r.log.Error("update hours failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Could not save waking hours.")
		return
	}
	r.timers.Start(chatID)
	r.sendText(chatID, "Waking hours updated: "+label)
}

// --- Timezone flow ---

func (r *Router) askTZPresets(chatID int64, cbID string) {
	_ = r.answerCallback(cbID, "")
	msg := tgbotapi.NewMessage(chatID, "Choose a timezone or enter your own (Region/City):")
	msg.ReplyMarkup = tzPresetsKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleTZCallback(ctx context.Context, chatID int64, data, cbID string) {
	_ = r.answerCallback(cbID, "")
	if data == "tz:custom" {
		r.sendText(chatID, "Enter timezone (e.g., Asia/Singapore):")
		r.setPending(chatID, pendingTZ)
		return
	}
	r.applyTimezone(ctx, chatID, strings.TrimPrefix(data, "tz:"))
}

func (r *Router) applyTimezone(ctx context.Context, chatID int64, raw string) {
	tz, err := domain.ValidateTimezone(raw)
	if err != nil {
		r.sendText(chatID, "Invalid timezone. Example: Asia/Singapore")
		return
	}
	if _, err := r.ensureProfile(ctx, chatID, nil); err != nil {
		r.log.Error("ensureProfile failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Could not save timezone.")
		return
	}
	if err := r.repo.UpdateTimezone(ctx, chatID, tz); err != nil {
		r.log.Error("update timezone failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Could not save timezone.")
		return
	}
	r.timers.Start(chatID)
	r.sendText(chatID, "Timezone updated: "+tz)
}

// --- Free-form dispatcher (Custom inputs) ---

func (r *Router) handleFreeForm(ctx context.Context, chatID int64, text string) {
	switch r.getPending(chatID) {
	case pendingInterval:
		r.clearPending(chatID)
		r.applyInterval(ctx, chatID, text)
	case pendingHours:
		r.clearPending(chatID)
		start, end, err := domain.ParseWakingWindow(text)
		if errors.Is(err, domain.ErrZeroWindow) {
			r.sendText(chatID, "Start and end can't be the same. For round-the-clock reminders pick 24/7 in settings.")
			return
		}
		if err != nil {
			r.sendText(chatID, "Invalid format. Example: 07:00-22:00")
			return
		}
		r.applyHours(ctx, chatID, start, end, fmt.Sprintf("%s–%s", start, end))
	case pendingTZ:
		r.clearPending(chatID)
		r.applyTimezone(ctx, chatID, text)
	default:
		// No pending flow: ignore free-form text.
	}
}
