package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pomorix/service-core-go/internal/badge"
	"github.com/pomorix/service-core-go/internal/badge/entity"
	"github.com/pomorix/service-core-go/pkg/utilities"
)

const pgUniqueViolation = "23505"

// BadgeRepo is the Postgres store for badge definitions and user badges.
type BadgeRepo struct {
	db *sqlx.DB
}

func NewBadgeRepo(db *sqlx.DB) *BadgeRepo { return &BadgeRepo{db: db} }

var _ badge.Store = (*BadgeRepo)(nil)

// EnsureSchema creates the badge tables if not exists (idempotent).
func (r *BadgeRepo) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS badge_definitions (
  id varchar(32) PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL,
  rule_type TEXT NOT NULL,
  rule_value INT NOT NULL,
  is_active BOOLEAN NOT NULL DEFAULT true,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS user_badges (
  user_id varchar(32) NOT NULL,
  badge_id varchar(32) NOT NULL REFERENCES badge_definitions(id),
  unlocked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  PRIMARY KEY (user_id, badge_id)
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const definitionCols = `id, code, title, description, category, rule_type, rule_value, is_active, created_at`

// ActiveDefinitions returns the evaluable badge catalog.
func (r *BadgeRepo) ActiveDefinitions(ctx context.Context) ([]*entity.BadgeDefinition, error) {
	const q = `SELECT ` + definitionCols + ` FROM badge_definitions WHERE is_active=true`
	var defs []*entity.BadgeDefinition
	if err := r.db.SelectContext(ctx, &defs, q); err != nil {
		return nil, err
	}
	return defs, nil
}

// AllDefinitions returns active definitions ordered for catalog display.
func (r *BadgeRepo) AllDefinitions(ctx context.Context) ([]*entity.BadgeDefinition, error) {
	const q = `SELECT ` + definitionCols + ` FROM badge_definitions WHERE is_active=true
		ORDER BY category ASC, rule_value ASC`
	var defs []*entity.BadgeDefinition
	if err := r.db.SelectContext(ctx, &defs, q); err != nil {
		return nil, err
	}
	return defs, nil
}

// EarnedBadges returns badge_id -> unlocked_at for the user.
func (r *BadgeRepo) EarnedBadges(ctx context.Context, userID string) (map[string]time.Time, error) {
	const q = `SELECT badge_id, unlocked_at FROM user_badges WHERE user_id=$1`
	rows, err := r.db.QueryxContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	earned := make(map[string]time.Time)
	for rows.Next() {
		var id string
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, err
		}
		earned[id] = at
	}
	return earned, rows.Err()
}

// UnlockedBadges returns the user's earned badges joined with their
// definitions, newest unlock first.
func (r *BadgeRepo) UnlockedBadges(ctx context.Context, userID string) ([]*entity.UnlockedView, error) {
	const q = `SELECT d.id, d.code, d.title, d.description, d.category, ub.unlocked_at
		FROM user_badges ub
		JOIN badge_definitions d ON d.id = ub.badge_id
		WHERE ub.user_id=$1
		ORDER BY ub.unlocked_at DESC`
	rows, err := r.db.QueryxContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []*entity.UnlockedView
	for rows.Next() {
		var v entity.UnlockedView
		if err := rows.Scan(&v.ID, &v.Code, &v.Title, &v.Description, &v.Category, &v.UnlockedAt); err != nil {
			return nil, err
		}
		views = append(views, &v)
	}
	return views, rows.Err()
}

// Award inserts the unlock row. A unique violation maps to
// badge.ErrAlreadyAwarded so racing completions stay idempotent.
func (r *BadgeRepo) Award(ctx context.Context, userID, badgeID string, at time.Time) error {
	const q = `INSERT INTO user_badges (user_id, badge_id, unlocked_at) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, q, userID, badgeID, at); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return badge.ErrAlreadyAwarded
		}
		return err
	}
	return nil
}

// CountCompletedFocusSessions counts the user's completed FOCUS sessions.
func (r *BadgeRepo) CountCompletedFocusSessions(ctx context.Context, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM pomodoro_sessions
		WHERE user_id=$1 AND session_type='FOCUS' AND state='COMPLETED'`
	var count int
	if err := r.db.GetContext(ctx, &count, q, userID); err != nil {
		return 0, err
	}
	return count, nil
}

// MaxDailyCount returns the user's best single-day pomodoro count.
func (r *BadgeRepo) MaxDailyCount(ctx context.Context, userID string) (int, error) {
	const q = `SELECT COALESCE(MAX(pomodoro_count), 0) FROM daily_activity WHERE user_id=$1`
	var max int
	if err := r.db.GetContext(ctx, &max, q, userID); err != nil {
		return 0, err
	}
	return max, nil
}

// SeedDefinitions upserts the built-in badge catalog by code.
func (r *BadgeRepo) SeedDefinitions(ctx context.Context) error {
	type seed struct {
		code, title, description, category, ruleType string
		ruleValue                                    int
	}
	seeds := []seed{
		{"BRONZE", "Bronze", "Tier I - Complete 1+ hours of focus time", entity.CategoryVolume, entity.RuleSessionCount, 3},
		{"SILVER", "Silver", "Tier II - Complete 10+ hours of focus time", entity.CategoryVolume, entity.RuleSessionCount, 24},
		{"GOLD", "Gold", "Tier III - Complete 50+ hours of focus time", entity.CategoryVolume, entity.RuleSessionCount, 120},
		{"PLATINUM", "Platinum", "Tier IV - Complete 100+ hours of focus time", entity.CategoryVolume, entity.RuleSessionCount, 240},
		{"DIAMOND", "Diamond", "Tier V - Complete 500+ hours of focus time", entity.CategoryVolume, entity.RuleSessionCount, 1200},
		{"ASCENDANT", "Ascendant", "Tier VI - Top 1% of all users", entity.CategoryVolume, entity.RuleSessionCount, 2400},
		{"FIRST_POMODORO", "First Pomodoro", "Complete your first Pomodoro session", entity.CategoryOnboarding, entity.RuleSessionCount, 1},
		{"STREAK_3", "3-Day Streak", "Achieve a 3-day streak", entity.CategoryStreak, entity.RuleStreakCount, 3},
		{"STREAK_7", "7-Day Streak", "Achieve a 7-day streak", entity.CategoryStreak, entity.RuleStreakCount, 7},
		{"STREAK_30", "30-Day Streak", "Achieve a 30-day streak", entity.CategoryStreak, entity.RuleStreakCount, 30},
		{"DAILY_5", "5 in a Day", "Complete 5 Pomodoros in a single day", entity.CategoryIntensity, entity.RuleDailyCount, 5},
		{"DAILY_10", "10 in a Day", "Complete 10 Pomodoros in a single day", entity.CategoryIntensity, entity.RuleDailyCount, 10},
	}
	const q = `INSERT INTO badge_definitions (id, code, title, description, category, rule_type, rule_value, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true)
		ON CONFLICT (code) DO UPDATE SET
			title=EXCLUDED.title, description=EXCLUDED.description, category=EXCLUDED.category,
			rule_type=EXCLUDED.rule_type, rule_value=EXCLUDED.rule_value, is_active=true`
	for _, b := range seeds {
		if _, err := r.db.ExecContext(ctx, q, utilities.NewID(), b.code, b.title, b.description, b.category, b.ruleType, b.ruleValue); err != nil {
			return err
		}
	}
	return nil
}
