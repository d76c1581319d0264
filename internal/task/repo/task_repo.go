package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pomorix/service-core-go/internal/task/entity"
)

// notDeleted is the shared soft-delete predicate. Every user-facing query
// goes through it so no call site can forget the filter.
const notDeleted = "deleted_at IS NULL"

// TaskRepo provides data access for the tasks table using sqlx. It is bound
// to either a *sqlx.DB or a *sqlx.Tx so the session state machine can reuse
// the same queries inside its transaction.
type TaskRepo struct {
	ext sqlx.ExtContext
}

func NewTaskRepo(db *sqlx.DB) *TaskRepo { return &TaskRepo{ext: db} }

// WithTx returns a repo bound to the given transaction.
func (r *TaskRepo) WithTx(tx *sqlx.Tx) *TaskRepo { return &TaskRepo{ext: tx} }

// EnsureSchema creates the tasks table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *TaskRepo) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
  id varchar(32) PRIMARY KEY,
  user_id varchar(32) NOT NULL,
  title TEXT NOT NULL,
  is_active BOOLEAN NOT NULL DEFAULT false,
  is_completed BOOLEAN NOT NULL DEFAULT false,
  estimated_pomodoros INT,
  completed_pomodoros INT NOT NULL DEFAULT 0,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  deleted_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
CREATE INDEX IF NOT EXISTS idx_tasks_user_active ON tasks(user_id, is_active) WHERE deleted_at IS NULL;
`
	_, err := r.ext.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new task row.
func (r *TaskRepo) Create(ctx context.Context, t *entity.Task) error {
	const q = `INSERT INTO tasks (id, user_id, title, is_active, is_completed, estimated_pomodoros, completed_pomodoros, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`
	_, err := r.ext.ExecContext(ctx, q, t.ID, t.UserID, t.Title, t.IsActive, t.IsCompleted, t.EstimatedPomodoros, t.CompletedPomodoros, t.CreatedAt)
	return err
}

// GetByID fetches a task row including soft-deleted ones; callers decide
// whether a deleted row is acceptable.
func (r *TaskRepo) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	const q = `SELECT id, user_id, title, is_active, is_completed, estimated_pomodoros, completed_pomodoros, created_at, updated_at, deleted_at
		FROM tasks WHERE id=$1`
	var row entity.Task
	if err := sqlx.GetContext(ctx, r.ext, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByUser returns the user's non-deleted tasks, newest first.
func (r *TaskRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Task, error) {
	const q = `SELECT id, user_id, title, is_active, is_completed, estimated_pomodoros, completed_pomodoros, created_at, updated_at, deleted_at
		FROM tasks WHERE user_id=$1 AND ` + notDeleted + ` ORDER BY created_at DESC`
	var rows []*entity.Task
	if err := sqlx.SelectContext(ctx, r.ext, &rows, q, userID); err != nil {
		return nil, err
	}
	return rows, nil
}

// FindActive returns the user's active task or sql.ErrNoRows.
func (r *TaskRepo) FindActive(ctx context.Context, userID string) (*entity.Task, error) {
	const q = `SELECT id, user_id, title, is_active, is_completed, estimated_pomodoros, completed_pomodoros, created_at, updated_at, deleted_at
		FROM tasks WHERE user_id=$1 AND is_active=true AND ` + notDeleted + ` LIMIT 1`
	var row entity.Task
	if err := sqlx.GetContext(ctx, r.ext, &row, q, userID); err != nil {
		return nil, err
	}
	return &row, nil
}

// FindLatest returns the user's most recently created non-deleted task.
func (r *TaskRepo) FindLatest(ctx context.Context, userID string) (*entity.Task, error) {
	const q = `SELECT id, user_id, title, is_active, is_completed, estimated_pomodoros, completed_pomodoros, created_at, updated_at, deleted_at
		FROM tasks WHERE user_id=$1 AND ` + notDeleted + ` ORDER BY created_at DESC LIMIT 1`
	var row entity.Task
	if err := sqlx.GetContext(ctx, r.ext, &row, q, userID); err != nil {
		return nil, err
	}
	return &row, nil
}

// FindOldestIncomplete returns the oldest non-deleted, incomplete task for
// FIFO reactivation after a task finishes its estimate.
func (r *TaskRepo) FindOldestIncomplete(ctx context.Context, userID string) (*entity.Task, error) {
	const q = `SELECT id, user_id, title, is_active, is_completed, estimated_pomodoros, completed_pomodoros, created_at, updated_at, deleted_at
		FROM tasks WHERE user_id=$1 AND is_completed=false AND ` + notDeleted + ` ORDER BY created_at ASC LIMIT 1`
	var row entity.Task
	if err := sqlx.GetContext(ctx, r.ext, &row, q, userID); err != nil {
		return nil, err
	}
	return &row, nil
}

// Update persists the mutable task fields.
func (r *TaskRepo) Update(ctx context.Context, t *entity.Task) error {
	const q = `UPDATE tasks SET title=$2, is_active=$3, is_completed=$4, estimated_pomodoros=$5, completed_pomodoros=$6, updated_at=NOW()
		WHERE id=$1`
	_, err := r.ext.ExecContext(ctx, q, t.ID, t.Title, t.IsActive, t.IsCompleted, t.EstimatedPomodoros, t.CompletedPomodoros)
	return err
}

// DeactivateAll clears is_active on every non-deleted task of the user.
// Combined with a single follow-up activation this procedurally enforces
// the one-active-task rule.
func (r *TaskRepo) DeactivateAll(ctx context.Context, userID string) error {
	const q = `UPDATE tasks SET is_active=false, updated_at=NOW() WHERE user_id=$1 AND is_active=true AND ` + notDeleted
	_, err := r.ext.ExecContext(ctx, q, userID)
	return err
}

// SetActive marks the given task active.
func (r *TaskRepo) SetActive(ctx context.Context, id string) error {
	const q = `UPDATE tasks SET is_active=true, updated_at=NOW() WHERE id=$1`
	_, err := r.ext.ExecContext(ctx, q, id)
	return err
}

// SoftDelete stamps deleted_at; rows are never hard-deleted.
func (r *TaskRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE tasks SET deleted_at=$2, is_active=false, updated_at=NOW() WHERE id=$1 AND ` + notDeleted
	_, err := r.ext.ExecContext(ctx, q, id, at)
	return err
}

// Restore clears deleted_at.
func (r *TaskRepo) Restore(ctx context.Context, id string) error {
	const q = `UPDATE tasks SET deleted_at=NULL, updated_at=NOW() WHERE id=$1 AND deleted_at IS NOT NULL`
	_, err := r.ext.ExecContext(ctx, q, id)
	return err
}
