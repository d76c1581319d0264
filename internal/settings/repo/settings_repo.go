package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/pomorix/service-core-go/internal/settings/entity"
)

// SettingsRepo provides data access for the user_settings table using sqlx.
type SettingsRepo struct {
	db *sqlx.DB
}

func NewSettingsRepo(db *sqlx.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// EnsureSchema creates the user_settings table if not exists (idempotent).
func (r *SettingsRepo) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS user_settings (
  id varchar(32) PRIMARY KEY,
  user_id varchar(32) NOT NULL UNIQUE,
  pomodoro_duration INT NOT NULL DEFAULT 25,
  short_break INT NOT NULL DEFAULT 5,
  long_break INT NOT NULL DEFAULT 15,
  daily_goal_pomodoros INT NOT NULL DEFAULT 1,
  alarm_sound TEXT NOT NULL DEFAULT 'BELLS',
  ticking_sound TEXT NOT NULL DEFAULT 'NONE',
  volume INT NOT NULL DEFAULT 50,
  auto_start_breaks BOOLEAN NOT NULL DEFAULT false,
  auto_start_pomodoros BOOLEAN NOT NULL DEFAULT true,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// GetByUser returns the user's settings row or sql.ErrNoRows.
func (r *SettingsRepo) GetByUser(ctx context.Context, userID string) (*entity.Settings, error) {
	const q = `SELECT id, user_id, pomodoro_duration, short_break, long_break, daily_goal_pomodoros,
		alarm_sound, ticking_sound, volume, auto_start_breaks, auto_start_pomodoros, created_at, updated_at
		FROM user_settings WHERE user_id=$1`
	var row entity.Settings
	if err := r.db.GetContext(ctx, &row, q, userID); err != nil {
		return nil, err
	}
	return &row, nil
}

// Insert creates a settings row. A concurrent first read may race; the
// unique constraint on user_id plus DO NOTHING keeps the operation
// idempotent, and the caller re-reads afterwards.
func (r *SettingsRepo) Insert(ctx context.Context, s *entity.Settings) error {
	const q = `INSERT INTO user_settings (id, user_id, pomodoro_duration, short_break, long_break, daily_goal_pomodoros,
		alarm_sound, ticking_sound, volume, auto_start_breaks, auto_start_pomodoros)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.UserID, s.PomodoroDuration, s.ShortBreak, s.LongBreak,
		s.DailyGoalPomodoros, s.AlarmSound, s.TickingSound, s.Volume, s.AutoStartBreaks, s.AutoStartPomodoros)
	return err
}

// Update persists all mutable settings fields.
func (r *SettingsRepo) Update(ctx context.Context, s *entity.Settings) error {
	const q = `UPDATE user_settings SET pomodoro_duration=$2, short_break=$3, long_break=$4, daily_goal_pomodoros=$5,
		alarm_sound=$6, ticking_sound=$7, volume=$8, auto_start_breaks=$9, auto_start_pomodoros=$10, updated_at=NOW()
		WHERE user_id=$1`
	_, err := r.db.ExecContext(ctx, q, s.UserID, s.PomodoroDuration, s.ShortBreak, s.LongBreak,
		s.DailyGoalPomodoros, s.AlarmSound, s.TickingSound, s.Volume, s.AutoStartBreaks, s.AutoStartPomodoros)
	return err
}
