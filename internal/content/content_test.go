package content

import (
	"strings"
	"testing"
)

func TestLevelCaptionClamps(t *testing.T) {
	if got := LevelCaption(-3); got != levelCaptions[0] {
		t.Errorf("negative level: got %q", got)
	}
	if got := LevelCaption(99); got != levelCaptions[5] {
		t.Errorf("overflow level: got %q", got)
	}
	if got := LevelCaption(3); got != "😊 Good hydration" {
		t.Errorf("level 3: got %q", got)
	}
}

func TestReminderText(t *testing.T) {
	text := ReminderText(4, 3, 1)
	for _, want := range []string{
		"Hydration Break",
		"😄 Great hydration",
		"3✅ 1❌",
		"(75%)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}

	// No percentage when there is no history yet today.
	text = ReminderText(2, 0, 0)
	if strings.Contains(text, "%)") {
		t.Errorf("unexpected percentage in:\n%s", text)
	}
}
