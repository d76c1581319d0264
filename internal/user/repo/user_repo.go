package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pomorix/service-core-go/internal/user/entity"
	"github.com/pomorix/service-core-go/pkg/timeutil"
)

// UserRepo provides data access for the users table plus the session
// aggregation queries behind profile analytics.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureSchema creates the users table if not exists (idempotent).
func (r *UserRepo) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id varchar(32) PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  auth_provider TEXT NOT NULL,
  auth_provider_id TEXT,
  password_hash TEXT,
  status TEXT NOT NULL DEFAULT 'ACTIVE',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  deleted_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const userCols = `id, email, auth_provider, auth_provider_id, password_hash, status, created_at, updated_at, deleted_at`

// GetByEmail returns the user row including soft-deleted accounts, or
// sql.ErrNoRows.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email=$1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, email); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByID fetches a user row.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id=$1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (id, email, auth_provider, auth_provider_id, password_hash, status)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.AuthProvider, u.AuthProviderID, u.PasswordHash, u.Status)
	return err
}

// Restore reactivates a soft-deleted account, refreshing its provider
// binding.
func (r *UserRepo) Restore(ctx context.Context, id, provider string, providerID *string) error {
	const q = `UPDATE users SET auth_provider=$2, auth_provider_id=$3, status='ACTIVE', deleted_at=NULL, updated_at=NOW()
		WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, id, provider, providerID)
	return err
}

// CompletedFocusWindowsBetween returns timing windows of completed focus
// sessions started within [start, end].
func (r *UserRepo) CompletedFocusWindowsBetween(ctx context.Context, userID string, start, end time.Time) ([]timeutil.SessionWindow, error) {
	const q = `SELECT started_at, ended_at, total_pause_seconds FROM pomodoro_sessions
		WHERE user_id=$1 AND session_type='FOCUS' AND state='COMPLETED'
		AND started_at >= $2 AND started_at <= $3
		ORDER BY started_at ASC`
	rows, err := r.db.QueryxContext(ctx, q, userID, start, end)
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

// CountActiveUsers counts non-deleted active accounts.
func (r *UserRepo) CountActiveUsers(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM users WHERE status='ACTIVE' AND deleted_at IS NULL`
	var count int
	if err := r.db.GetContext(ctx, &count, q); err != nil {
		return 0, err
	}
	return count, nil
}

// CountUsersWithFewerSessions counts active users whose completed focus
// session count in [start, end] is below sessionCount, for percentile
// ranking.
func (r *UserRepo) CountUsersWithFewerSessions(ctx context.Context, userID string, sessionCount int, start, end time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM (
		SELECT u.id
		FROM users u
		LEFT JOIN pomodoro_sessions ps ON u.id = ps.user_id
			AND ps.session_type = 'FOCUS'
			AND ps.state = 'COMPLETED'
			AND ps.started_at >= $3
			AND ps.started_at <= $4
		WHERE u.status = 'ACTIVE'
			AND u.deleted_at IS NULL
			AND u.id != $1
		GROUP BY u.id
		HAVING COUNT(ps.id) < $2
	) ranked`
	var count int
	if err := r.db.GetContext(ctx, &count, q, userID, sessionCount, start, end); err != nil {
		return 0, err
	}
	return count, nil
}
