package entity

import "time"

// Alarm and ticking sound choices mirror the client's sound catalog.
const (
	AlarmBells   = "BELLS"
	AlarmDigital = "DIGITAL"
	AlarmKitchen = "KITCHEN"

	TickingNone  = "NONE"
	TickingFast  = "FAST"
	TickingSlow  = "SLOW"
)

// Settings is the per-user timer configuration row, lazily created with
// defaults on first read. Durations are stored in minutes.
type Settings struct {
	ID                 string    `db:"id" json:"id"`
	UserID             string    `db:"user_id" json:"user_id"`
	PomodoroDuration   int       `db:"pomodoro_duration" json:"pomodoro_duration"`
	ShortBreak         int       `db:"short_break" json:"short_break"`
	LongBreak          int       `db:"long_break" json:"long_break"`
	DailyGoalPomodoros int       `db:"daily_goal_pomodoros" json:"daily_goal_pomodoros"`
	AlarmSound         string    `db:"alarm_sound" json:"alarm_sound"`
	TickingSound       string    `db:"ticking_sound" json:"ticking_sound"`
	Volume             int       `db:"volume" json:"volume"`
	AutoStartBreaks    bool      `db:"auto_start_breaks" json:"auto_start_breaks"`
	AutoStartPomodoros bool      `db:"auto_start_pomodoros" json:"auto_start_pomodoros"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// Defaults returns a Settings value carrying the documented defaults.
func Defaults(userID string) *Settings {
	return &Settings{
		UserID:             userID,
		PomodoroDuration:   25,
		ShortBreak:         5,
		LongBreak:          15,
		DailyGoalPomodoros: 1,
		AlarmSound:         AlarmBells,
		TickingSound:       TickingNone,
		Volume:             50,
		AutoStartBreaks:    false,
		AutoStartPomodoros: true,
	}
}
