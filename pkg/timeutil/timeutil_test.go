package timeutil

import (
	"testing"
	"time"
)

func TestLocalDate(t *testing.T) {
	// 01:30 UTC on Mar 11 is still Mar 10 in New York
	ts := time.Date(2025, 3, 11, 1, 30, 0, 0, time.UTC)

	got := LocalDate(ts, "America/New_York")
	want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("LocalDate NY = %v, want %v", got, want)
	}

	got = LocalDate(ts, "UTC")
	want = time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("LocalDate UTC = %v, want %v", got, want)
	}
}

func TestLocalDateBadZoneFallsBack(t *testing.T) {
	ts := time.Date(2025, 3, 11, 1, 30, 0, 0, time.UTC)
	got := LocalDate(ts, "Mars/Olympus_Mons")
	want := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("LocalDate fallback = %v, want %v", got, want)
	}
}

func TestDaysBetween(t *testing.T) {
	cases := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", date(2025, 3, 10), date(2025, 3, 10), 0},
		{"next day", date(2025, 3, 10), date(2025, 3, 11), 1},
		{"gap", date(2025, 3, 10), date(2025, 3, 15), 5},
		{"reversed", date(2025, 3, 15), date(2025, 3, 10), -5},
		{"month boundary", date(2025, 2, 28), date(2025, 3, 1), 1},
		{"ignores time of day", time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC), time.Date(2025, 3, 11, 0, 1, 0, 0, time.UTC), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DaysBetween(tc.a, tc.b); got != tc.want {
				t.Errorf("DaysBetween = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestActualSeconds(t *testing.T) {
	end1 := time.Date(2025, 3, 10, 9, 25, 0, 0, time.UTC)
	end2 := time.Date(2025, 3, 10, 11, 30, 0, 0, time.UTC)
	windows := []SessionWindow{
		{StartedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), EndedAt: &end1},
		{StartedAt: time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC), EndedAt: &end2, TotalPauseSeconds: 300},
		{StartedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)},
	}
	// 1500 + (1800 - 300), open window skipped
	if got := ActualSeconds(windows); got != 3000 {
		t.Errorf("ActualSeconds = %d, want 3000", got)
	}
	if got := ActualSeconds(nil); got != 0 {
		t.Errorf("ActualSeconds(nil) = %d, want 0", got)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
