package entity

import "testing"

func TestDefaults(t *testing.T) {
	d := Defaults("user-1")
	if d.UserID != "user-1" {
		t.Errorf("user id = %s, want user-1", d.UserID)
	}
	if d.PomodoroDuration != 25 || d.ShortBreak != 5 || d.LongBreak != 15 {
		t.Errorf("durations = %d/%d/%d, want 25/5/15", d.PomodoroDuration, d.ShortBreak, d.LongBreak)
	}
	if d.DailyGoalPomodoros != 1 {
		t.Errorf("daily goal = %d, want 1", d.DailyGoalPomodoros)
	}
	if d.AlarmSound != AlarmBells || d.TickingSound != TickingNone {
		t.Errorf("sounds = %s/%s, want BELLS/NONE", d.AlarmSound, d.TickingSound)
	}
	if d.Volume != 50 {
		t.Errorf("volume = %d, want 50", d.Volume)
	}
	if d.AutoStartBreaks || !d.AutoStartPomodoros {
		t.Errorf("auto-start = breaks:%v pomodoros:%v, want false/true", d.AutoStartBreaks, d.AutoStartPomodoros)
	}
}
