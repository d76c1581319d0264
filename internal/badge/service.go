package badge

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/pomorix/service-core-go/internal/badge/entity"
	streakentity "github.com/pomorix/service-core-go/internal/streak/entity"
)

// ErrAlreadyAwarded is returned by Store.Award when the (user, badge) pair
// already exists. The service treats it as a no-op; the unique constraint
// is the concurrency guard between racing completions.
var ErrAlreadyAwarded = errors.New("badge already awarded")

// Store is the persistence contract for the badge engine.
type Store interface {
	ActiveDefinitions(ctx context.Context) ([]*entity.BadgeDefinition, error)
	AllDefinitions(ctx context.Context) ([]*entity.BadgeDefinition, error)
	EarnedBadges(ctx context.Context, userID string) (map[string]time.Time, error)
	UnlockedBadges(ctx context.Context, userID string) ([]*entity.UnlockedView, error)
	Award(ctx context.Context, userID, badgeID string, at time.Time) error
	CountCompletedFocusSessions(ctx context.Context, userID string) (int, error)
	MaxDailyCount(ctx context.Context, userID string) (int, error)
}

// StreakReader supplies current/longest streak values for STREAK_COUNT
// rules.
type StreakReader interface {
	GetStreak(ctx context.Context, userID string) (*streakentity.StreakView, error)
}

// Service evaluates rule-based unlock conditions against session, streak
// and daily-activity aggregates and awards badges idempotently.
type Service struct {
	store   Store
	streaks StreakReader
	clock   clockwork.Clock
	logger  *zap.SugaredLogger
}

func NewService(store Store, streaks StreakReader, clock clockwork.Clock, logger *zap.SugaredLogger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{store: store, streaks: streaks, clock: clock, logger: logger}
}

// CheckAndAwardBadges evaluates every active definition the user has not
// earned yet and awards the eligible ones. Returns the newly unlocked
// badge codes. A duplicate award from a racing completion is swallowed.
func (s *Service) CheckAndAwardBadges(ctx context.Context, userID string) ([]string, error) {
	defs, err := s.store.ActiveDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	earned, err := s.store.EarnedBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	var unlocked []string
	for _, def := range defs {
		if _, ok := earned[def.ID]; ok {
			continue
		}
		eligible, err := s.evaluateRule(ctx, userID, def.RuleType, def.RuleValue)
		if err != nil {
			return unlocked, err
		}
		if !eligible {
			continue
		}
		if err := s.store.Award(ctx, userID, def.ID, s.clock.Now().UTC()); err != nil {
			if errors.Is(err, ErrAlreadyAwarded) {
				s.logger.Debugw("badge already awarded", "user_id", userID, "code", def.Code)
				continue
			}
			return unlocked, err
		}
		s.logger.Infow("badge awarded", "user_id", userID, "code", def.Code)
		unlocked = append(unlocked, def.Code)
	}
	return unlocked, nil
}

func (s *Service) evaluateRule(ctx context.Context, userID, ruleType string, threshold int) (bool, error) {
	switch ruleType {
	case entity.RuleSessionCount:
		count, err := s.store.CountCompletedFocusSessions(ctx, userID)
		if err != nil {
			return false, err
		}
		return count >= threshold, nil
	case entity.RuleStreakCount:
		st, err := s.streaks.GetStreak(ctx, userID)
		if err != nil {
			return false, err
		}
		return st.CurrentStreak >= threshold || st.LongestStreak >= threshold, nil
	case entity.RuleDailyCount:
		maxDaily, err := s.store.MaxDailyCount(ctx, userID)
		if err != nil {
			return false, err
		}
		return maxDaily >= threshold, nil
	default:
		s.logger.Warnw("unknown badge rule type", "rule_type", ruleType)
		return false, nil
	}
}

// GetAllDefinitions returns the full badge catalog merged with the user's
// unlock state.
func (s *Service) GetAllDefinitions(ctx context.Context, userID string) ([]*entity.DefinitionView, error) {
	defs, err := s.store.AllDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	earned, err := s.store.EarnedBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]*entity.DefinitionView, 0, len(defs))
	for _, def := range defs {
		v := &entity.DefinitionView{
			ID:          def.ID,
			Code:        def.Code,
			Title:       def.Title,
			Description: def.Description,
			Category:    def.Category,
			RuleType:    def.RuleType,
			RuleValue:   def.RuleValue,
		}
		if at, ok := earned[def.ID]; ok {
			v.IsUnlocked = true
			unlockedAt := at
			v.UnlockedAt = &unlockedAt
		}
		views = append(views, v)
	}
	return views, nil
}

// GetUserBadges returns the user's earned badges, newest first.
func (s *Service) GetUserBadges(ctx context.Context, userID string) ([]*entity.UnlockedView, error) {
	return s.store.UnlockedBadges(ctx, userID)
}
