package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/nnamon/hippo/internal/content"
	"github.com/nnamon/hippo/internal/domain"
	"github.com/nnamon/hippo/internal/scheduler"
	"github.com/nnamon/hippo/internal/store"
)

// Pending state keys used in conversational flows.
const (
	pendingInterval = "await_interval_text"
	pendingHours    = "await_hours_text"
	pendingTZ       = "await_tz_text"
)

// timerRegistry is the slice of the scheduler registry the chat layer
// needs: (re)start a user's timer after a preference change, cancel it on
// pause or reset.
type timerRegistry interface {
	Start(userID int64)
	Cancel(userID int64)
}

// levelSource mirrors the hydration estimator for the /stats view.
type levelSource interface {
	Level(ctx context.Context, userID int64) (int, error)
}

// Router wires Telegram updates to handlers and holds minimal in-memory
// state. It also implements scheduler.Dispatcher.
type Router struct {
	bot       *tgbotapi.BotAPI
	log       *zap.Logger
	repo      store.Repo
	timers    timerRegistry
	levels    levelSource
	defaultTZ string

	state map[int64]string // chatID -> pending input state
	mu    sync.RWMutex
}

func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, repo store.Repo, levels levelSource, defaultTZ string) *Router {
	if defaultTZ == "" {
		defaultTZ = domain.DefaultTimezone
	}
	return &Router{
		bot:       bot,
		log:       log,
		repo:      repo,
		levels:    levels,
		defaultTZ: defaultTZ,
		state:     make(map[int64]string),
	}
}

// BindTimers attaches the scheduler registry. The router and the registry
// reference each other (the router is also the dispatch port), so the timer
// side is bound after construction, before updates start flowing.
func (r *Router) BindTimers(t timerRegistry) {
	r.timers = t
}

func (r *Router) setPending(chatID int64, s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state[chatID] = s
}

func (r *Router) getPending(chatID int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state[chatID]
}

func (r *Router) clearPending(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state, chatID)
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID
		text := strings.TrimSpace(msg.Text)

		switch {
		case strings.HasPrefix(text, "/start"):
			r.handleStart(ctx, chatID, msg.From)
		case strings.HasPrefix(text, "/status"):
			r.handleStatus(ctx, chatID)
		case strings.HasPrefix(text, "/stats"):
			r.handleStats(ctx, chatID)
		case strings.HasPrefix(text, "/settings"):
			r.handleSettings(ctx, chatID)
		case strings.HasPrefix(text, "/pause"):
			r.handlePause(ctx, chatID)
		case strings.HasPrefix(text, "/resume"):
			r.handleResume(ctx, chatID)
		case strings.HasPrefix(text, "/reset"):
			r.handleReset(ctx, chatID)
		default:
			r.handleFreeForm(ctx, chatID, text)
		}
		return
	}

	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		data := cb.Data
		chatID := cb.Message.Chat.ID

		switch {
		case strings.HasPrefix(data, "confirm:"):
			r.handleConfirmWater(ctx, chatID, cb)

		case data == "set_interval":
			r.askIntervalPresets(chatID, cb.ID)
		case strings.HasPrefix(data, "interval:"):
			r.handleIntervalCallback(ctx, chatID, data, cb.ID)

		case data == "set_hours":
			r.askHoursPresets(chatID, cb.ID)
		case strings.HasPrefix(data, "hours:"):
			r.handleHoursCallback(ctx, chatID, data, cb.ID)

		case data == "set_tz":
			r.askTZPresets(chatID, cb.ID)
		case strings.HasPrefix(data, "tz:"):
			r.handleTZCallback(ctx, chatID, data, cb.ID)

		case strings.HasPrefix(data, "reset:"):
			r.handleResetCallback(ctx, chatID, data, cb)

		default:
			// Inert buttons (noop) and anything unknown are just acked.
			_ = r.answerCallback(cb.ID, "")
		}
		return
	}
}

// --- scheduler.Dispatcher ---

// Send delivers a reminder with its confirmation button and returns the
// handle needed to edit the message later.
func (r *Router) Send(_ context.Context, userID int64, rem scheduler.Reminder) (domain.DispatchHandle, error) {
	msg := tgbotapi.NewMessage(userID, content.ReminderText(rem.Level, rem.ConfirmedToday, rem.MissedToday))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = confirmReminderKeyboard(rem.ReminderID)

	sent, err := r.bot.Send(msg)
	if err != nil {
		return domain.DispatchHandle{}, err
	}
	return domain.DispatchHandle{ChatID: userID, MessageID: sent.MessageID}, nil
}

// MarkExpired swaps the confirmation button for an expired marker.
func (r *Router) MarkExpired(_ context.Context, h domain.DispatchHandle) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(h.ChatID, h.MessageID, expiredReminderKeyboard())
	_, err := r.bot.Request(edit)
	return err
}

// --- helpers ---

func (r *Router) sendText(chatID int64, text string) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log.Warn("send failed", zap.Int64("chatID", chatID), zap.Error(err))
	}
}

func (r *Router) answerCallback(id, text string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(id, text))
	return err
}
