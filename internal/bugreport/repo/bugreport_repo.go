package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/pomorix/service-core-go/internal/bugreport/entity"
)

type BugReportRepo struct {
	db *sqlx.DB
}

func NewBugReportRepo(db *sqlx.DB) *BugReportRepo {
	return &BugReportRepo{db: db}
}

// EnsureSchema creates the bug_reports table if it does not already exist.
func (r *BugReportRepo) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS bug_reports (
  id varchar(32) PRIMARY KEY,
  reference varchar(32) NOT NULL UNIQUE,
  user_id varchar(32) NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'OPEN',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_bug_reports_user ON bug_reports(user_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const reportCols = `id, reference, user_id, title, description, status, created_at, updated_at`

func (r *BugReportRepo) Create(ctx context.Context, report *entity.BugReport) error {
	const q = `INSERT INTO bug_reports (id, reference, user_id, title, description, status)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, q,
		report.ID, report.Reference, report.UserID, report.Title, report.Description, report.Status)
	return err
}

func (r *BugReportRepo) GetByID(ctx context.Context, id string) (*entity.BugReport, error) {
	const q = `SELECT ` + reportCols + ` FROM bug_reports WHERE id=$1`
	var row entity.BugReport
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *BugReportRepo) ListByUser(ctx context.Context, userID string) ([]*entity.BugReport, error) {
	const q = `SELECT ` + reportCols + ` FROM bug_reports WHERE user_id=$1 ORDER BY created_at DESC`
	var rows []*entity.BugReport
	if err := r.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, err
	}
	return rows, nil
}
