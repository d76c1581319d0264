package entity

import "time"

// UserStreak is the single per-user streak row, lazily created with zero
// defaults on first read.
type UserStreak struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	CurrentStreak  int        `db:"current_streak" json:"current_streak"`
	LongestStreak  int        `db:"longest_streak" json:"longest_streak"`
	LastActiveDate *time.Time `db:"last_active_date" json:"last_active_date,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// DailyActivity counts completed focus sessions per (user, local date).
type DailyActivity struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	ActivityDate  time.Time `db:"activity_date" json:"activity_date"`
	PomodoroCount int       `db:"pomodoro_count" json:"pomodoro_count"`
}

// StreakView is the read-side projection of a streak. Current may be
// reported as zero when the streak is broken even though the stored value
// has not been reset yet.
type StreakView struct {
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
	LastActiveDate *string `json:"last_active_date"`
}

// TotalStats are lifetime focus totals derived from completed sessions.
type TotalStats struct {
	TotalPomodoros int     `json:"total_pomodoros"`
	TotalHours     float64 `json:"total_hours"`
	TotalMinutes   int64   `json:"total_minutes"`
}
