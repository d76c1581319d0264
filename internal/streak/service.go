package streak

import (
	"context"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/pomorix/service-core-go/internal/streak/entity"
	"github.com/pomorix/service-core-go/pkg/timeutil"
)

// Store is the persistence contract for the streak engine.
type Store interface {
	// GetOrCreateStreak lazily initializes the user's streak row with zero
	// defaults.
	GetOrCreateStreak(ctx context.Context, userID string) (*entity.UserStreak, error)
	SaveStreak(ctx context.Context, s *entity.UserStreak) error
	// IncrementDailyActivity upserts the (user, date) row, adding one.
	IncrementDailyActivity(ctx context.Context, userID string, date time.Time) error
	// CompletedFocusWindows returns timing windows of the user's completed
	// focus sessions.
	CompletedFocusWindows(ctx context.Context, userID string) ([]timeutil.SessionWindow, error)
}

// Service derives daily activity and current/longest streaks from focus
// session completions. Streak breakage is detected lazily: reads report a
// broken streak as zero, the stored reset happens on the next completion.
type Service struct {
	store  Store
	clock  clockwork.Clock
	logger *zap.SugaredLogger
}

func NewService(store Store, clock clockwork.Clock, logger *zap.SugaredLogger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{store: store, clock: clock, logger: logger}
}

// HandleSessionCompleted records one completed focus session ending at
// endedAt: the daily activity counter for the user's local date grows by
// one and the streak advances per the day-difference rule.
func (s *Service) HandleSessionCompleted(ctx context.Context, userID string, endedAt time.Time, timezone string) error {
	activityDate := timeutil.LocalDate(endedAt, timezone)

	if err := s.store.IncrementDailyActivity(ctx, userID, activityDate); err != nil {
		return err
	}
	return s.updateStreak(ctx, userID, activityDate)
}

func (s *Service) updateStreak(ctx context.Context, userID string, activityDate time.Time) error {
	st, err := s.store.GetOrCreateStreak(ctx, userID)
	if err != nil {
		return err
	}

	newCurrent := 1
	if st.LastActiveDate != nil {
		switch days := timeutil.DaysBetween(*st.LastActiveDate, activityDate); {
		case days == 0:
			// same-day repeat, streak counters unchanged
			return nil
		case days == 1:
			newCurrent = st.CurrentStreak + 1
		default:
			// gap: reset to 1, today counts
			newCurrent = 1
		}
	}

	st.CurrentStreak = newCurrent
	if newCurrent > st.LongestStreak {
		st.LongestStreak = newCurrent
	}
	st.LastActiveDate = &activityDate
	return s.store.SaveStreak(ctx, st)
}

// GetStreak returns the user's streak for display. A last-active date more
// than one day old reports the current streak as zero without persisting
// the reset.
func (s *Service) GetStreak(ctx context.Context, userID string) (*entity.StreakView, error) {
	st, err := s.store.GetOrCreateStreak(ctx, userID)
	if err != nil {
		return nil, err
	}

	current := st.CurrentStreak
	var lastStr *string
	if st.LastActiveDate != nil {
		today := timeutil.LocalDate(s.clock.Now().UTC(), "")
		if timeutil.DaysBetween(*st.LastActiveDate, today) > 1 {
			current = 0
		}
		formatted := st.LastActiveDate.Format("2006-01-02")
		lastStr = &formatted
	}
	return &entity.StreakView{
		CurrentStreak:  current,
		LongestStreak:  st.LongestStreak,
		LastActiveDate: lastStr,
	}, nil
}

// GetTotalStats returns lifetime focus totals: session count and actual
// time spent net of pauses.
func (s *Service) GetTotalStats(ctx context.Context, userID string) (*entity.TotalStats, error) {
	windows, err := s.store.CompletedFocusWindows(ctx, userID)
	if err != nil {
		return nil, err
	}
	totalSeconds := timeutil.ActualSeconds(windows)
	return &entity.TotalStats{
		TotalPomodoros: len(windows),
		TotalHours:     math.Round(float64(totalSeconds)/3600*100) / 100,
		TotalMinutes:   totalSeconds / 60,
	}, nil
}
