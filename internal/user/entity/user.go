package entity

import "time"

// Auth providers accepted at signin.
const (
	ProviderGoogle = "GOOGLE"
	ProviderGithub = "GITHUB"
	ProviderEmail  = "EMAIL"
)

const (
	StatusActive = "ACTIVE"
)

// User represents an account row in the users table. Accounts are
// soft-deleted; signin restores a deleted account instead of erroring.
type User struct {
	ID             string     `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	AuthProvider   string     `db:"auth_provider" json:"auth_provider"`
	AuthProviderID *string    `db:"auth_provider_id" json:"auth_provider_id,omitempty"`
	PasswordHash   *string    `db:"password_hash" json:"-"`
	Status         string     `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at" json:"-"`
}

// AnalyticsRange selects the window of the profile analytics block.
type AnalyticsRange string

const (
	RangeLast7Days  AnalyticsRange = "LAST_7_DAYS"
	RangeLast30Days AnalyticsRange = "LAST_30_DAYS"
	RangeAllTime    AnalyticsRange = "ALL_TIME"
)

// DailyBreakdown is one day of the activity chart.
type DailyBreakdown struct {
	Date      string  `json:"date"`
	DayOfWeek string  `json:"day_of_week"`
	Hours     float64 `json:"hours"`
	Sessions  int     `json:"sessions"`
}

// Analytics is the range-scoped statistics block of a profile.
type Analytics struct {
	Range                  AnalyticsRange   `json:"range"`
	FocusTimeHours         float64          `json:"focus_time_hours"`
	FocusTimeChangePercent float64          `json:"focus_time_change_percent"`
	DailyAvgHours          float64          `json:"daily_avg_hours"`
	TotalSessions          int              `json:"total_sessions"`
	SessionsPercentile     float64          `json:"sessions_percentile"`
	DailyGoalHours         float64          `json:"daily_goal_hours"`
	DailyBreakdown         []DailyBreakdown `json:"daily_breakdown"`
}

// LifetimeStats are all-time focus totals.
type LifetimeStats struct {
	TotalSessions  int     `json:"total_sessions"`
	TotalPomodoros int     `json:"total_pomodoros"`
	TotalHours     float64 `json:"total_hours"`
	TotalMinutes   int64   `json:"total_minutes"`
}

// ProfileInfo is the identity block of a profile response.
type ProfileInfo struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	MemberSince string `json:"member_since"`
}
