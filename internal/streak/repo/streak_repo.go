package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pomorix/service-core-go/internal/streak/entity"
	"github.com/pomorix/service-core-go/pkg/timeutil"
	"github.com/pomorix/service-core-go/pkg/utilities"
)

// StreakRepo is the Postgres store for user_streaks and daily_activity.
type StreakRepo struct {
	db *sqlx.DB
}

func NewStreakRepo(db *sqlx.DB) *StreakRepo { return &StreakRepo{db: db} }

// EnsureSchema creates the streak tables if not exists (idempotent).
func (r *StreakRepo) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS user_streaks (
  id varchar(32) PRIMARY KEY,
  user_id varchar(32) NOT NULL UNIQUE,
  current_streak INT NOT NULL DEFAULT 0,
  longest_streak INT NOT NULL DEFAULT 0,
  last_active_date DATE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS daily_activity (
  id varchar(32) PRIMARY KEY,
  user_id varchar(32) NOT NULL,
  activity_date DATE NOT NULL,
  pomodoro_count INT NOT NULL DEFAULT 0,
  UNIQUE (user_id, activity_date)
);
CREATE INDEX IF NOT EXISTS idx_daily_activity_user ON daily_activity(user_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// GetOrCreateStreak returns the user's streak row, creating it with zero
// defaults when absent. The insert races safely against concurrent callers
// via the unique constraint.
func (r *StreakRepo) GetOrCreateStreak(ctx context.Context, userID string) (*entity.UserStreak, error) {
	st, err := r.getStreak(ctx, userID)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	const ins = `INSERT INTO user_streaks (id, user_id) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, ins, utilities.NewID(), userID); err != nil {
		return nil, err
	}
	return r.getStreak(ctx, userID)
}

func (r *StreakRepo) getStreak(ctx context.Context, userID string) (*entity.UserStreak, error) {
	const q = `SELECT id, user_id, current_streak, longest_streak, last_active_date, created_at, updated_at
		FROM user_streaks WHERE user_id=$1`
	var row entity.UserStreak
	if err := r.db.GetContext(ctx, &row, q, userID); err != nil {
		return nil, err
	}
	return &row, nil
}

// SaveStreak persists the streak counters and last active date.
func (r *StreakRepo) SaveStreak(ctx context.Context, s *entity.UserStreak) error {
	const q = `UPDATE user_streaks SET current_streak=$2, longest_streak=$3, last_active_date=$4, updated_at=NOW()
		WHERE user_id=$1`
	_, err := r.db.ExecContext(ctx, q, s.UserID, s.CurrentStreak, s.LongestStreak, s.LastActiveDate)
	return err
}

// IncrementDailyActivity upserts the (user, date) activity row, adding one
// to the counter. Each call increments; repeats on the same date accumulate.
func (r *StreakRepo) IncrementDailyActivity(ctx context.Context, userID string, date time.Time) error {
	const q = `INSERT INTO daily_activity (id, user_id, activity_date, pomodoro_count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (user_id, activity_date)
		DO UPDATE SET pomodoro_count = daily_activity.pomodoro_count + 1`
	_, err := r.db.ExecContext(ctx, q, utilities.NewID(), userID, date)
	return err
}

// CompletedFocusWindows returns the timing windows of the user's completed
// focus sessions for lifetime aggregation.
func (r *StreakRepo) CompletedFocusWindows(ctx context.Context, userID string) ([]timeutil.SessionWindow, error) {
	const q = `SELECT started_at, ended_at, total_pause_seconds FROM pomodoro_sessions
		WHERE user_id=$1 AND session_type='FOCUS' AND state='COMPLETED'`
	rows, err := r.db.QueryxContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []timeutil.SessionWindow
	for rows.Next() {
		var w timeutil.SessionWindow
		if err := rows.Scan(&w.StartedAt, &w.EndedAt, &w.TotalPauseSeconds); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}
