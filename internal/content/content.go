// Package content renders the text of hydration reminders and status views.
package content

import (
	"fmt"
	"math/rand"
	"strings"
)

// levelCaptions maps a hydration level 0–5 to its display caption.
var levelCaptions = [...]string{
	"😵 Dehydrated",
	"😟 Low hydration",
	"😐 Moderate hydration",
	"😊 Good hydration",
	"😄 Great hydration",
	"🤩 Perfect hydration",
}

// LevelCaption returns the caption for a level, clamping out-of-range input.
func LevelCaption(level int) string {
	if level < 0 {
		level = 0
	}
	if level >= len(levelCaptions) {
		level = len(levelCaptions) - 1
	}
	return levelCaptions[level]
}

var quotes = []string{
	"Water is the driving force of all nature.",
	"A river cuts through rock not because of its power, but because of its persistence.",
	"Thousands have lived without love, not one without water.",
	"Pure water is the world's first and foremost medicine.",
	"When the well is dry, we know the worth of water.",
	"Drink water like it's your job. Today, it kind of is.",
	"Small sips, big wins.",
	"Your future self is already thanking you for this glass.",
}

// Quote picks a random hydration quote.
func Quote() string {
	return quotes[rand.Intn(len(quotes))]
}

// ReminderText builds the body of one reminder message.
func ReminderText(level, confirmedToday, missedToday int) string {
	var b strings.Builder
	b.WriteString("🦛 *Time for a Hydration Break!*\n\n")
	b.WriteString(Quote())
	b.WriteString("\n\n📊 *Your Status:*\n")
	fmt.Fprintf(&b, "• Current level: %s\n", LevelCaption(level))
	fmt.Fprintf(&b, "• Today: %d✅ %d❌", confirmedToday, missedToday)
	if total := confirmedToday + missedToday; total > 0 {
		fmt.Fprintf(&b, " (%.0f%%)", float64(confirmedToday)/float64(total)*100)
	}
	b.WriteString("\n\n💧 Tap the button below when you've had some water! 🦛")
	return b.String()
}
