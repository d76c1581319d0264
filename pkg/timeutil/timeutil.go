package timeutil

import "time"

// LocalDate resolves the calendar date of ts in the named IANA timezone,
// returned as midnight UTC so date values compare and subtract cleanly.
// When the zone name cannot be loaded the timestamp's own location is used,
// which matches the upstream behavior of treating timestamps as already
// user-local.
func LocalDate(ts time.Time, tz string) time.Time {
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			ts = ts.In(loc)
		}
	}
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of calendar days from a to b.
// Both values are normalized to midnight UTC first, so the result is
// negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	a = midnightUTC(a)
	b = midnightUTC(b)
	return int(b.Sub(a).Hours() / 24)
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SessionWindow is the slice of a completed session needed for duration
// accounting: wall-clock bounds and accumulated pause time.
type SessionWindow struct {
	StartedAt         time.Time
	EndedAt           *time.Time
	TotalPauseSeconds int64
}

// ActualSeconds returns the time actually spent across the given windows:
// (ended - started) - pauses, summed. Windows without an end are skipped.
func ActualSeconds(windows []SessionWindow) int64 {
	var total int64
	for _, w := range windows {
		if w.EndedAt == nil {
			continue
		}
		elapsed := int64(w.EndedAt.Sub(w.StartedAt).Seconds())
		total += elapsed - w.TotalPauseSeconds
	}
	return total
}
