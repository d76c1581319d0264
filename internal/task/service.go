package task

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pomorix/service-core-go/internal/task/entity"
	taskrepo "github.com/pomorix/service-core-go/internal/task/repo"
	"github.com/pomorix/service-core-go/pkg/utilities"
)

var (
	ErrNotFound      = errors.New("task not found")
	ErrAlreadyActive = errors.New("task not deleted")
	ErrEmptyTitle    = errors.New("title is required")
)

// Service encapsulates task lifecycle logic. It procedurally enforces the
// rule that at most one non-deleted task per user is active.
type Service struct {
	repo *taskrepo.TaskRepo
}

func NewService(db *sqlx.DB, r *taskrepo.TaskRepo) *Service {
	if r == nil {
		r = taskrepo.NewTaskRepo(db)
	}
	return &Service{repo: r}
}

// Create inserts a task owned by userID. The first task a user creates
// becomes active automatically so a focus session can start right away.
func (s *Service) Create(ctx context.Context, userID, title string, estimated *int) (*entity.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	active := false
	if _, err := s.repo.FindActive(ctx, userID); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		active = true
	}
	t := &entity.Task{
		ID:                 utilities.NewID(),
		UserID:             userID,
		Title:              title,
		IsActive:           active,
		EstimatedPomodoros: estimated,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns the user's non-deleted tasks, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]*entity.Task, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns a single task owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (*entity.Task, error) {
	return s.ownedLive(ctx, userID, id)
}

// UpdateInput carries the mutable fields of a task; nil means unchanged.
type UpdateInput struct {
	Title              *string
	EstimatedPomodoros *int
	IsCompleted        *bool
}

// Update applies in to the task and persists it.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*entity.Task, error) {
	t, err := s.ownedLive(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		t.Title = title
	}
	if in.EstimatedPomodoros != nil {
		t.EstimatedPomodoros = in.EstimatedPomodoros
	}
	if in.IsCompleted != nil {
		t.IsCompleted = *in.IsCompleted
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ToggleActive flips the task's active flag. Activating a task deactivates
// any other active task of the user first.
func (s *Service) ToggleActive(ctx context.Context, userID, id string) (*entity.Task, error) {
	t, err := s.ownedLive(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if t.IsActive {
		t.IsActive = false
		if err := s.repo.Update(ctx, t); err != nil {
			return nil, err
		}
		return t, nil
	}
	if err := s.repo.DeactivateAll(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, t.ID); err != nil {
		return nil, err
	}
	t.IsActive = true
	return t, nil
}

// Delete soft-deletes the task.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.ownedLive(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id, time.Now().UTC())
}

// Restore clears a previous soft delete.
func (s *Service) Restore(ctx context.Context, userID, id string) error {
	t, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if t.DeletedAt == nil {
		return ErrAlreadyActive
	}
	return s.repo.Restore(ctx, id)
}

func (s *Service) owned(ctx context.Context, userID, id string) (*entity.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if t.UserID != userID {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *Service) ownedLive(ctx context.Context, userID, id string) (*entity.Task, error) {
	t, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if t.DeletedAt != nil {
		return nil, ErrNotFound
	}
	return t, nil
}
