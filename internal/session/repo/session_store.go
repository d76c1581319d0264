package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pomorix/service-core-go/internal/session"
	"github.com/pomorix/service-core-go/internal/session/entity"
	taskentity "github.com/pomorix/service-core-go/internal/task/entity"
	taskrepo "github.com/pomorix/service-core-go/internal/task/repo"
)

// SessionStore is the Postgres implementation of session.Store. Session and
// task rows are mutated through the same transaction so a completion can
// never land without its task counter update.
type SessionStore struct {
	db    *sqlx.DB
	tx    *sqlx.Tx
	ext   sqlx.ExtContext
	tasks *taskrepo.TaskRepo
}

func NewSessionStore(db *sqlx.DB) *SessionStore {
	return &SessionStore{db: db, ext: db, tasks: taskrepo.NewTaskRepo(db)}
}

var _ session.Store = (*SessionStore)(nil)

// EnsureSchema creates the pomodoro_sessions table if not exists. The
// partial unique index backstops the one-active-session-per-user invariant
// at commit time, independent of the advisory lock.
func (s *SessionStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS pomodoro_sessions (
  id varchar(32) PRIMARY KEY,
  user_id varchar(32) NOT NULL,
  task_id varchar(32) NOT NULL,
  session_type TEXT NOT NULL,
  state TEXT NOT NULL,
  duration_seconds BIGINT NOT NULL,
  started_at TIMESTAMPTZ NOT NULL,
  paused_at TIMESTAMPTZ,
  total_pause_seconds BIGINT NOT NULL DEFAULT 0,
  ended_at TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON pomodoro_sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_user_started ON pomodoro_sessions(user_id, started_at);
CREATE UNIQUE INDEX IF NOT EXISTS uq_sessions_one_active_per_user
  ON pomodoro_sessions(user_id) WHERE state IN ('FOCUS','BREAK');
`
	_, err := s.ext.ExecContext(ctx, ddl)
	return err
}

// InTx runs fn inside a transaction holding a per-user advisory lock, so
// session mutations for one user are fully serialized.
func (s *SessionStore) InTx(ctx context.Context, userID string, fn func(tx session.Store) error) error {
	if s.tx != nil {
		// already transactional; re-entrant use keeps the same tx
		return fn(s)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return fmt.Errorf("acquire user lock: %w", err)
	}
	bound := &SessionStore{db: s.db, tx: tx, ext: tx, tasks: s.tasks.WithTx(tx)}
	if err := fn(bound); err != nil {
		return err
	}
	return tx.Commit()
}

const sessionCols = `id, user_id, task_id, session_type, state, duration_seconds, started_at, paused_at, total_pause_seconds, ended_at, created_at, updated_at`

// ActiveSession returns the user's FOCUS/BREAK session or nil.
func (s *SessionStore) ActiveSession(ctx context.Context, userID string) (*entity.Session, error) {
	const q = `SELECT ` + sessionCols + ` FROM pomodoro_sessions
		WHERE user_id=$1 AND state IN ('FOCUS','BREAK') LIMIT 1`
	var row entity.Session
	if err := sqlx.GetContext(ctx, s.ext, &row, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (s *SessionStore) CreateSession(ctx context.Context, sess *entity.Session) error {
	const q = `INSERT INTO pomodoro_sessions (` + sessionCols + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err := s.ext.ExecContext(ctx, q, sess.ID, sess.UserID, sess.TaskID, sess.SessionType, sess.State,
		sess.DurationSeconds, sess.StartedAt, sess.PausedAt, sess.TotalPauseSeconds, sess.EndedAt,
		sess.CreatedAt, sess.UpdatedAt)
	return err
}

func (s *SessionStore) SaveSession(ctx context.Context, sess *entity.Session) error {
	const q = `UPDATE pomodoro_sessions
		SET state=$2, paused_at=$3, total_pause_seconds=$4, ended_at=$5, updated_at=NOW()
		WHERE id=$1`
	_, err := s.ext.ExecContext(ctx, q, sess.ID, sess.State, sess.PausedAt, sess.TotalPauseSeconds, sess.EndedAt)
	return err
}

func (s *SessionStore) ActiveTask(ctx context.Context, userID string) (*taskentity.Task, error) {
	return noRowsToNil(s.tasks.FindActive(ctx, userID))
}

func (s *SessionStore) LatestTask(ctx context.Context, userID string) (*taskentity.Task, error) {
	return noRowsToNil(s.tasks.FindLatest(ctx, userID))
}

func (s *SessionStore) OldestIncompleteTask(ctx context.Context, userID string) (*taskentity.Task, error) {
	return noRowsToNil(s.tasks.FindOldestIncomplete(ctx, userID))
}

func (s *SessionStore) TaskByID(ctx context.Context, id string) (*taskentity.Task, error) {
	t, err := noRowsToNil(s.tasks.GetByID(ctx, id))
	if err != nil || t == nil {
		return t, err
	}
	if t.DeletedAt != nil {
		return nil, nil
	}
	return t, nil
}

func (s *SessionStore) SaveTask(ctx context.Context, t *taskentity.Task) error {
	return s.tasks.Update(ctx, t)
}

func noRowsToNil(t *taskentity.Task, err error) (*taskentity.Task, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}
