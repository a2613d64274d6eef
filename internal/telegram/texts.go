package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

const (
	startText = "🦛 Hi! I'm Hippo, your hydration buddy.\n\n" +
		"I'll remind you to drink water during your waking hours. " +
		"Tap the button on a reminder once you've had some water and I'll track your hydration level.\n\n" +
		"Use /settings to tune the interval, waking hours and timezone."
	statusTitle = "🧾 Your current settings:"
	statusFmt   = "• Interval: every %d min\n• Waking hours: %s\n• Timezone: %s\n• Reminders: %s\n"
	resetText   = "This will erase your profile and your entire hydration history. Are you sure?"
)

func mainMenuKeyboard(active bool) tgbotapi.ReplyKeyboardMarkup {
	toggle := "/pause"
	if !active {
		toggle = "/resume"
	}
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/status"),
			tgbotapi.NewKeyboardButton("/stats"),
			tgbotapi.NewKeyboardButton("/settings"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(toggle),
		),
	)
}

func settingsInlineKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏲️ Interval", "set_interval"),
			tgbotapi.NewInlineKeyboardButtonData("🕘 Waking hours", "set_hours"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌍 Timezone", "set_tz"),
		),
	)
}

func intervalPresetsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("30m", "interval:30m"),
			tgbotapi.NewInlineKeyboardButtonData("1h", "interval:1h"),
			tgbotapi.NewInlineKeyboardButtonData("90m", "interval:90m"),
			tgbotapi.NewInlineKeyboardButtonData("2h", "interval:2h"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("3h", "interval:3h"),
			tgbotapi.NewInlineKeyboardButtonData("4h", "interval:4h"),
			tgbotapi.NewInlineKeyboardButtonData("✍️ Custom…", "interval:custom"),
		),
	)
}

func hoursPresetsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("07:00–22:00", "hours:07:00-22:00"),
			tgbotapi.NewInlineKeyboardButtonData("09:00–21:00", "hours:09:00-21:00"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("22:00–06:00", "hours:22:00-06:00"),
			tgbotapi.NewInlineKeyboardButtonData("🌙 24/7", "hours:always"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ Custom…", "hours:custom"),
		),
	)
}

func tzPresetsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Asia/Singapore", "tz:Asia/Singapore"),
			tgbotapi.NewInlineKeyboardButtonData("Europe/London", "tz:Europe/London"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("America/New_York", "tz:America/New_York"),
			tgbotapi.NewInlineKeyboardButtonData("UTC", "tz:UTC"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ Custom…", "tz:custom"),
		),
	)
}

func confirmReminderKeyboard(reminderID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💧 I drank water!", "confirm:"+reminderID),
		),
	)
}

func expiredReminderKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Expired (missed)", "noop"),
		),
	)
}

func confirmedReminderKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirmed", "noop"),
		),
	)
}

func resetConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Yes, erase everything", "reset:confirm"),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", "reset:cancel"),
		),
	)
}
