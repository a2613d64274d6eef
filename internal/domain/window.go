package domain

import "time"

// ResolveLocation loads the IANA zone for tz. On failure it substitutes
// fallback (nil fallback means UTC) and reports that the fallback was used
// so the caller can log a warning.
func ResolveLocation(tz string, fallback *time.Location) (*time.Location, bool) {
	if fallback == nil {
		fallback = time.UTC
	}
	if tz == "" {
		return fallback, true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fallback, true
	}
	return loc, false
}

// IsWithinWindow reports whether now falls inside the profile's waking
// window. loc must already be resolved (see ResolveLocation); the 24/7
// sentinel short-circuits before any timezone math.
//
// Same-day windows (start <= end) are inclusive on both ends, so a
// 07:00–22:00 window still fires at exactly 22:00. Overnight windows
// (start > end) cover [start..midnight] plus [midnight..end]. A
// degenerate start == end configuration collapses to a single-minute
// window; the custom-hours parser rejects it upstream.
func IsWithinWindow(p *UserProfile, now time.Time, loc *time.Location) bool {
	if p.AlwaysActive() {
		return true
	}

	local := now.In(loc)
	localM := local.Hour()*60 + local.Minute()
	startM := p.WakingStartHour*60 + p.WakingStartMinute
	endM := p.WakingEndHour*60 + p.WakingEndMinute

	if startM <= endM {
		return localM >= startM && localM <= endM
	}
	// Overnight window, e.g. 22:00–06:00.
	return localM >= startM || localM <= endM
}
