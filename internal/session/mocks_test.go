package session

import (
	"context"
	"time"

	"github.com/pomorix/service-core-go/internal/session/entity"
	settingsentity "github.com/pomorix/service-core-go/internal/settings/entity"
	taskentity "github.com/pomorix/service-core-go/internal/task/entity"
)

// memStore is an in-memory Store for service tests. InTx runs fn against
// the store itself; per-user serialization is the real store's concern.
type memStore struct {
	sessions []*entity.Session
	tasks    []*taskentity.Task
}

func (m *memStore) InTx(ctx context.Context, userID string, fn func(tx Store) error) error {
	return fn(m)
}

func (m *memStore) ActiveSession(ctx context.Context, userID string) (*entity.Session, error) {
	for _, s := range m.sessions {
		if s.UserID == userID && s.Active() {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateSession(ctx context.Context, s *entity.Session) error {
	m.sessions = append(m.sessions, s)
	return nil
}

func (m *memStore) SaveSession(ctx context.Context, s *entity.Session) error {
	return nil
}

func (m *memStore) ActiveTask(ctx context.Context, userID string) (*taskentity.Task, error) {
	for _, t := range m.tasks {
		if t.UserID == userID && t.IsActive && t.DeletedAt == nil {
			return t, nil
		}
	}
	return nil, nil
}

func (m *memStore) LatestTask(ctx context.Context, userID string) (*taskentity.Task, error) {
	for i := len(m.tasks) - 1; i >= 0; i-- {
		t := m.tasks[i]
		if t.UserID == userID && t.DeletedAt == nil {
			return t, nil
		}
	}
	return nil, nil
}

func (m *memStore) OldestIncompleteTask(ctx context.Context, userID string) (*taskentity.Task, error) {
	for _, t := range m.tasks {
		if t.UserID == userID && !t.IsCompleted && t.DeletedAt == nil {
			return t, nil
		}
	}
	return nil, nil
}

func (m *memStore) TaskByID(ctx context.Context, id string) (*taskentity.Task, error) {
	for _, t := range m.tasks {
		if t.ID == id && t.DeletedAt == nil {
			return t, nil
		}
	}
	return nil, nil
}

func (m *memStore) SaveTask(ctx context.Context, t *taskentity.Task) error {
	return nil
}

type stubSettings struct {
	cfg *settingsentity.Settings
}

func (s *stubSettings) GetOrCreate(ctx context.Context, userID string) (*settingsentity.Settings, error) {
	if s.cfg != nil {
		return s.cfg, nil
	}
	return settingsentity.Defaults(userID), nil
}

type stubStreaks struct {
	calls []time.Time
	err   error
}

func (s *stubStreaks) HandleSessionCompleted(ctx context.Context, userID string, endedAt time.Time, timezone string) error {
	s.calls = append(s.calls, endedAt)
	return s.err
}

type stubBadges struct {
	calls int
	codes []string
	err   error
}

func (s *stubBadges) CheckAndAwardBadges(ctx context.Context, userID string) ([]string, error) {
	s.calls++
	return s.codes, s.err
}
