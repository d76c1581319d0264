package bugreport

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/pomorix/service-core-go/internal/bugreport/entity"
	"github.com/pomorix/service-core-go/internal/bugreport/repo"
	"github.com/pomorix/service-core-go/pkg/utilities"
)

var ErrEmptyTitle = errors.New("title is required")

// Service records and lists user-filed bug reports.
type Service struct {
	repo *repo.BugReportRepo
}

func NewService(db *sqlx.DB) *Service {
	return &Service{repo: repo.NewBugReportRepo(db)}
}

func (s *Service) Create(ctx context.Context, userID, title, description string) (*entity.BugReport, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	report := &entity.BugReport{
		ID:          utilities.NewID(),
		Reference:   utilities.NewSnowflakeID(),
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      entity.StatusOpen,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, report.ID)
}

func (s *Service) List(ctx context.Context, userID string) ([]*entity.BugReport, error) {
	return s.repo.ListByUser(ctx, userID)
}
