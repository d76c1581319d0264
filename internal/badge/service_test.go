package badge

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/pomorix/service-core-go/internal/badge/entity"
	streakentity "github.com/pomorix/service-core-go/internal/streak/entity"
)

const testUser = "user-1"

// memBadgeStore is an in-memory Store for service tests.
type memBadgeStore struct {
	defs          []*entity.BadgeDefinition
	earned        map[string]time.Time
	focusSessions int
	maxDaily      int
	awardErr      error
}

func newMemBadgeStore() *memBadgeStore {
	return &memBadgeStore{earned: make(map[string]time.Time)}
}

func (m *memBadgeStore) ActiveDefinitions(ctx context.Context) ([]*entity.BadgeDefinition, error) {
	return m.defs, nil
}

func (m *memBadgeStore) AllDefinitions(ctx context.Context) ([]*entity.BadgeDefinition, error) {
	return m.defs, nil
}

func (m *memBadgeStore) EarnedBadges(ctx context.Context, userID string) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(m.earned))
	for k, v := range m.earned {
		out[k] = v
	}
	return out, nil
}

func (m *memBadgeStore) UnlockedBadges(ctx context.Context, userID string) ([]*entity.UnlockedView, error) {
	return nil, nil
}

func (m *memBadgeStore) Award(ctx context.Context, userID, badgeID string, at time.Time) error {
	if m.awardErr != nil {
		return m.awardErr
	}
	if _, ok := m.earned[badgeID]; ok {
		return ErrAlreadyAwarded
	}
	m.earned[badgeID] = at
	return nil
}

func (m *memBadgeStore) CountCompletedFocusSessions(ctx context.Context, userID string) (int, error) {
	return m.focusSessions, nil
}

func (m *memBadgeStore) MaxDailyCount(ctx context.Context, userID string) (int, error) {
	return m.maxDaily, nil
}

type stubStreakReader struct {
	view *streakentity.StreakView
}

func (s *stubStreakReader) GetStreak(ctx context.Context, userID string) (*streakentity.StreakView, error) {
	if s.view != nil {
		return s.view, nil
	}
	return &streakentity.StreakView{}, nil
}

func def(id, code, ruleType string, value int) *entity.BadgeDefinition {
	return &entity.BadgeDefinition{
		ID: id, Code: code, Title: code,
		Category: entity.CategoryVolume, RuleType: ruleType, RuleValue: value,
		IsActive: true,
	}
}

func newBadgeService(store Store, streaks StreakReader) *Service {
	return NewService(store, streaks, clockwork.NewFakeClock(), zap.NewNop().Sugar())
}

func TestSessionCountRule(t *testing.T) {
	store := newMemBadgeStore()
	store.defs = []*entity.BadgeDefinition{
		def("b1", "FIRST_POMODORO", entity.RuleSessionCount, 1),
		def("b2", "BRONZE", entity.RuleSessionCount, 3),
	}
	store.focusSessions = 1
	svc := newBadgeService(store, &stubStreakReader{})

	unlocked, err := svc.CheckAndAwardBadges(context.Background(), testUser)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(unlocked) != 1 || unlocked[0] != "FIRST_POMODORO" {
		t.Errorf("unlocked = %v, want [FIRST_POMODORO]", unlocked)
	}

	store.focusSessions = 3
	unlocked, err = svc.CheckAndAwardBadges(context.Background(), testUser)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(unlocked) != 1 || unlocked[0] != "BRONZE" {
		t.Errorf("unlocked = %v, want [BRONZE]", unlocked)
	}
}

func TestStreakRuleUsesCurrentOrLongest(t *testing.T) {
	store := newMemBadgeStore()
	store.defs = []*entity.BadgeDefinition{def("b1", "STREAK_3", entity.RuleStreakCount, 3)}
	// broken streak reads as current 0 but the longest still qualifies
	streaks := &stubStreakReader{view: &streakentity.StreakView{CurrentStreak: 0, LongestStreak: 5}}
	svc := newBadgeService(store, streaks)

	unlocked, err := svc.CheckAndAwardBadges(context.Background(), testUser)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(unlocked) != 1 || unlocked[0] != "STREAK_3" {
		t.Errorf("unlocked = %v, want [STREAK_3]", unlocked)
	}
}

func TestDailyCountRule(t *testing.T) {
	store := newMemBadgeStore()
	store.defs = []*entity.BadgeDefinition{def("b1", "DAILY_5", entity.RuleDailyCount, 5)}
	store.maxDaily = 4
	svc := newBadgeService(store, &stubStreakReader{})

	unlocked, err := svc.CheckAndAwardBadges(context.Background(), testUser)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(unlocked) != 0 {
		t.Errorf("unlocked = %v, want none below threshold", unlocked)
	}

	store.maxDaily = 5
	unlocked, _ = svc.CheckAndAwardBadges(context.Background(), testUser)
	if len(unlocked) != 1 {
		t.Errorf("unlocked = %v, want [DAILY_5]", unlocked)
	}
}

func TestAwardIsIdempotent(t *testing.T) {
	store := newMemBadgeStore()
	store.defs = []*entity.BadgeDefinition{def("b1", "FIRST_POMODORO", entity.RuleSessionCount, 1)}
	store.focusSessions = 2
	svc := newBadgeService(store, &stubStreakReader{})

	if _, err := svc.CheckAndAwardBadges(context.Background(), testUser); err != nil {
		t.Fatalf("first check: %v", err)
	}
	unlocked, err := svc.CheckAndAwardBadges(context.Background(), testUser)
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if len(unlocked) != 0 {
		t.Errorf("unlocked twice: %v", unlocked)
	}
}

func TestDuplicateAwardFromRaceIsSwallowed(t *testing.T) {
	store := newMemBadgeStore()
	store.defs = []*entity.BadgeDefinition{def("b1", "FIRST_POMODORO", entity.RuleSessionCount, 1)}
	store.focusSessions = 1
	store.awardErr = ErrAlreadyAwarded
	svc := newBadgeService(store, &stubStreakReader{})

	unlocked, err := svc.CheckAndAwardBadges(context.Background(), testUser)
	if err != nil {
		t.Fatalf("check returned duplicate error: %v", err)
	}
	if len(unlocked) != 0 {
		t.Errorf("unlocked = %v, want none", unlocked)
	}
}

func TestUnknownRuleTypeIsSkipped(t *testing.T) {
	store := newMemBadgeStore()
	store.defs = []*entity.BadgeDefinition{def("b1", "MYSTERY", "PHASE_OF_MOON", 1)}
	svc := newBadgeService(store, &stubStreakReader{})

	unlocked, err := svc.CheckAndAwardBadges(context.Background(), testUser)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(unlocked) != 0 {
		t.Errorf("unlocked = %v, want none for unknown rule", unlocked)
	}
}

func TestGetAllDefinitionsMergesUnlockState(t *testing.T) {
	store := newMemBadgeStore()
	store.defs = []*entity.BadgeDefinition{
		def("b1", "FIRST_POMODORO", entity.RuleSessionCount, 1),
		def("b2", "BRONZE", entity.RuleSessionCount, 3),
	}
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	store.earned["b1"] = at
	svc := newBadgeService(store, &stubStreakReader{})

	views, err := svc.GetAllDefinitions(context.Background(), testUser)
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("views = %d, want 2", len(views))
	}
	if !views[0].IsUnlocked || views[0].UnlockedAt == nil || !views[0].UnlockedAt.Equal(at) {
		t.Errorf("b1 unlock state wrong: %+v", views[0])
	}
	if views[1].IsUnlocked {
		t.Error("b2 reported unlocked")
	}
}
