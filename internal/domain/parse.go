package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyInterval   = errors.New("empty interval")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrIntervalSmall   = errors.New("interval too small")
	ErrIntervalLarge   = errors.New("interval too large")
	ErrInvalidWindow   = errors.New("invalid waking window")
	ErrZeroWindow      = errors.New("waking window start and end are equal")
)

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// ParseIntervalMinutes parses human-friendly intervals like "30m", "2h",
// "1h30m" or a plain number of minutes ("90"). Bounds: 10m to 24h.
func ParseIntervalMinutes(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, ErrEmptyInterval
	}

	var total time.Duration
	if isAllDigits(s) {
		mins, _ := strconv.Atoi(s)
		total = time.Duration(mins) * time.Minute
	} else {
		rest := s
		if i := strings.Index(rest, "h"); i >= 0 {
			h, err := strconv.Atoi(strings.TrimSpace(rest[:i]))
			if err != nil {
				return 0, fmt.Errorf("%w: %s", ErrInvalidInterval, s)
			}
			total += time.Duration(h) * time.Hour
			rest = rest[i+1:]
		}
		rest = strings.TrimSpace(rest)
		if rest != "" {
			m := strings.TrimSuffix(rest, "m")
			if m == rest || !isAllDigits(strings.TrimSpace(m)) {
				return 0, fmt.Errorf("%w: %s", ErrInvalidInterval, s)
			}
			mins, _ := strconv.Atoi(strings.TrimSpace(m))
			total += time.Duration(mins) * time.Minute
		}
		if total == 0 {
			return 0, fmt.Errorf("%w: %s", ErrInvalidInterval, s)
		}
	}

	if total < 10*time.Minute {
		return 0, fmt.Errorf("%w: min 10m", ErrIntervalSmall)
	}
	if total > 24*time.Hour {
		return 0, fmt.Errorf("%w: max 24h", ErrIntervalLarge)
	}
	return int(total / time.Minute), nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ParseWakingWindow parses "HH:MM-HH:MM" (en dash accepted) into start/end
// clocks. A window whose start equals its end is rejected: it would
// degenerate to a single-minute window, and the 24/7 case has its own
// sentinel (00:00–23:00).
func ParseWakingWindow(s string) (start, end Clock, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Clock{}, Clock{}, fmt.Errorf("%w: empty", ErrInvalidWindow)
	}
	sep := "–"
	if !strings.Contains(s, sep) {
		sep = "-"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return Clock{}, Clock{}, fmt.Errorf("%w: expected HH:MM-HH:MM", ErrInvalidWindow)
	}
	start, err = parseClock(parts[0])
	if err != nil {
		return Clock{}, Clock{}, fmt.Errorf("%w: from: %v", ErrInvalidWindow, err)
	}
	end, err = parseClock(parts[1])
	if err != nil {
		return Clock{}, Clock{}, fmt.Errorf("%w: to: %v", ErrInvalidWindow, err)
	}
	if start == end {
		return Clock{}, Clock{}, ErrZeroWindow
	}
	return start, end, nil
}

func parseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return Clock{}, errors.New("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return Clock{}, errors.New("invalid hour")
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return Clock{}, errors.New("invalid minute")
	}
	return Clock{Hour: h, Minute: m}, nil
}

// ValidateTimezone checks that tz names a loadable IANA location and
// returns its canonical form.
func ValidateTimezone(tz string) (string, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(tz))
	if err != nil {
		return "", err
	}
	return loc.String(), nil
}

// LocalClock formats t in the given timezone as HH:MM.
func LocalClock(t time.Time, tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", err
	}
	return t.In(loc).Format("15:04"), nil
}
