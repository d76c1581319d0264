package entity

import "time"

// Rule types a badge definition may carry.
const (
	RuleSessionCount = "SESSION_COUNT"
	RuleStreakCount  = "STREAK_COUNT"
	RuleDailyCount   = "DAILY_COUNT"
)

// Badge categories, used only for catalog ordering and display.
const (
	CategoryVolume     = "VOLUME"
	CategoryOnboarding = "ONBOARDING"
	CategoryStreak     = "STREAK"
	CategoryIntensity  = "INTENSITY"
)

// BadgeDefinition is static reference data describing one unlockable badge.
type BadgeDefinition struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	RuleType    string    `db:"rule_type" json:"rule_type"`
	RuleValue   int       `db:"rule_value" json:"rule_value"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// UserBadge records a single unlock; rows are created once and never
// updated or deleted.
type UserBadge struct {
	UserID     string    `db:"user_id" json:"user_id"`
	BadgeID    string    `db:"badge_id" json:"badge_id"`
	UnlockedAt time.Time `db:"unlocked_at" json:"unlocked_at"`
}

// DefinitionView merges a definition with the user's unlock state.
type DefinitionView struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	RuleType    string     `json:"rule_type"`
	RuleValue   int        `json:"rule_value"`
	IsUnlocked  bool       `json:"is_unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

// UnlockedView is one earned badge with its unlock time.
type UnlockedView struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}
