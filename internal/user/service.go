package user

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	settingsentity "github.com/pomorix/service-core-go/internal/settings/entity"
	streakentity "github.com/pomorix/service-core-go/internal/streak/entity"
	"github.com/pomorix/service-core-go/internal/user/entity"
	userrepo "github.com/pomorix/service-core-go/internal/user/repo"
	"github.com/pomorix/service-core-go/pkg/timeutil"
	"github.com/pomorix/service-core-go/pkg/utilities"
)

var (
	ErrBadCredentials = errors.New("invalid credentials")
	ErrUserNotFound   = errors.New("user not found")
)

// GuestEmail is a shared demo account: signin succeeds without creating or
// restoring anything as long as the account exists.
const GuestEmail = "guest@pomorix.space"

// TokenIssuer abstracts access-token creation (implemented by the auth
// token service).
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

// StreakReader supplies the display-side streak view for profiles.
type StreakReader interface {
	GetStreak(ctx context.Context, userID string) (*streakentity.StreakView, error)
}

// SettingsProvider supplies the user's settings for goal calculations.
type SettingsProvider interface {
	GetOrCreate(ctx context.Context, userID string) (*settingsentity.Settings, error)
}

// Service handles signin (signup, login and account restore collapse into
// one operation) and the profile/analytics read model.
type Service struct {
	repo     *userrepo.UserRepo
	tokens   TokenIssuer
	streaks  StreakReader
	settings SettingsProvider
	clock    clockwork.Clock
	logger   *zap.SugaredLogger
}

func NewService(repo *userrepo.UserRepo, tokens TokenIssuer, streaks StreakReader, settings SettingsProvider, clock clockwork.Clock, logger *zap.SugaredLogger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{repo: repo, tokens: tokens, streaks: streaks, settings: settings, clock: clock, logger: logger}
}

type SigninInput struct {
	Email          string
	AuthProvider   string
	AuthProviderID *string
	Password       string
}

type SigninResult struct {
	User        *entity.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

// Signin logs a user in, creating the account on first contact and
// restoring it when it was soft-deleted. EMAIL-provider accounts with a
// stored password hash additionally require the password to match.
func (s *Service) Signin(ctx context.Context, in SigninInput) (*SigninResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, ErrBadCredentials
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if email == GuestEmail {
		// guest mode: login only, never create or restore
		if existing == nil || existing.DeletedAt != nil {
			return nil, ErrBadCredentials
		}
		return s.issueFor(existing)
	}

	if existing != nil && existing.DeletedAt == nil {
		if existing.AuthProvider == entity.ProviderEmail && existing.PasswordHash != nil {
			if bcrypt.CompareHashAndPassword([]byte(*existing.PasswordHash), []byte(in.Password)) != nil {
				return nil, ErrBadCredentials
			}
		}
		return s.issueFor(existing)
	}

	if existing != nil {
		// soft-deleted account comes back on signin
		if err := s.repo.Restore(ctx, existing.ID, in.AuthProvider, in.AuthProviderID); err != nil {
			return nil, err
		}
		restored, err := s.repo.GetByID(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		s.logger.Infow("restored account on signin", "user_id", restored.ID)
		return s.issueFor(restored)
	}

	u := &entity.User{
		ID:             utilities.NewID(),
		Email:          email,
		AuthProvider:   in.AuthProvider,
		AuthProviderID: in.AuthProviderID,
		Status:         entity.StatusActive,
	}
	if in.AuthProvider == entity.ProviderEmail && in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hs := string(hash)
		u.PasswordHash = &hs
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	created, err := s.repo.GetByID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return s.issueFor(created)
}

func (s *Service) issueFor(u *entity.User) (*SigninResult, error) {
	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &SigninResult{User: u, AccessToken: token}, nil
}

// ProfileResponse is the composed profile read model.
type ProfileResponse struct {
	User          entity.ProfileInfo       `json:"user"`
	LifetimeStats entity.LifetimeStats     `json:"lifetime_stats"`
	Streak        *streakentity.StreakView `json:"streak"`
	Analytics     entity.Analytics         `json:"analytics"`
}

// Profile composes identity, streak, lifetime totals and range analytics
// for one user.
func (s *Service) Profile(ctx context.Context, userID string, rng entity.AnalyticsRange) (*ProfileResponse, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.DeletedAt != nil {
		return nil, ErrUserNotFound
	}

	streakView, err := s.streaks.GetStreak(ctx, userID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.settings.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	lifetimeWindows, err := s.repo.CompletedFocusWindowsBetween(ctx, userID, time.Unix(0, 0).UTC(), now)
	if err != nil {
		return nil, err
	}
	lifetimeSeconds := timeutil.ActualSeconds(lifetimeWindows)
	lifetime := entity.LifetimeStats{
		TotalSessions:  len(lifetimeWindows),
		TotalPomodoros: len(lifetimeWindows),
		TotalHours:     round2(float64(lifetimeSeconds) / 3600),
		TotalMinutes:   lifetimeSeconds / 60,
	}

	analytics, err := s.analytics(ctx, userID, rng, now)
	if err != nil {
		return nil, err
	}
	analytics.DailyGoalHours = round2(float64(cfg.DailyGoalPomodoros) * float64(cfg.PomodoroDuration) / 60)

	return &ProfileResponse{
		User: entity.ProfileInfo{
			ID:          u.ID,
			Email:       u.Email,
			Username:    extractUsername(u.Email),
			MemberSince: u.CreatedAt.UTC().Format(time.RFC3339),
		},
		LifetimeStats: lifetime,
		Streak:        streakView,
		Analytics:     *analytics,
	}, nil
}

func (s *Service) analytics(ctx context.Context, userID string, rng entity.AnalyticsRange, now time.Time) (*entity.Analytics, error) {
	start, end, days := dateRange(rng, now)
	current, err := s.repo.CompletedFocusWindowsBetween(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	currentHours := round2(float64(timeutil.ActualSeconds(current)) / 3600)

	prevStart, prevEnd := previousRange(start, days)
	previous, err := s.repo.CompletedFocusWindowsBetween(ctx, userID, prevStart, prevEnd)
	if err != nil {
		return nil, err
	}
	previousHours := round2(float64(timeutil.ActualSeconds(previous)) / 3600)

	dailyAvg := 0.0
	if days > 0 {
		dailyAvg = round2(currentHours / float64(days))
	}

	percentile, err := s.sessionsPercentile(ctx, userID, len(current), start, end)
	if err != nil {
		return nil, err
	}

	return &entity.Analytics{
		Range:                  rng,
		FocusTimeHours:         currentHours,
		FocusTimeChangePercent: percentChange(currentHours, previousHours),
		DailyAvgHours:          dailyAvg,
		TotalSessions:          len(current),
		SessionsPercentile:     percentile,
		DailyBreakdown:         dailyBreakdown(current, start, end),
	}, nil
}

func (s *Service) sessionsPercentile(ctx context.Context, userID string, sessionCount int, start, end time.Time) (float64, error) {
	total, err := s.repo.CountActiveUsers(ctx)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	fewer, err := s.repo.CountUsersWithFewerSessions(ctx, userID, sessionCount, start, end)
	if err != nil {
		return 0, err
	}
	return round2(float64(fewer) / float64(total) * 100), nil
}

// dateRange resolves the analytics window: [start of day N-1 days ago,
// end of today].
func dateRange(rng entity.AnalyticsRange, now time.Time) (start, end time.Time, days int) {
	end = endOfDay(now)
	switch rng {
	case entity.RangeLast30Days:
		days = 30
	case entity.RangeAllTime:
		start = time.Unix(0, 0).UTC()
		days = int(math.Ceil(now.Sub(start).Hours() / 24))
		return start, end, days
	default:
		days = 7
	}
	start = startOfDay(now.AddDate(0, 0, -(days - 1)))
	return start, end, days
}

// previousRange is the window of equal length immediately before start.
func previousRange(start time.Time, days int) (time.Time, time.Time) {
	prevEnd := start.Add(-time.Millisecond)
	prevStart := startOfDay(prevEnd.AddDate(0, 0, -(days - 1)))
	return prevStart, prevEnd
}

func dailyBreakdown(windows []timeutil.SessionWindow, start, end time.Time) []entity.DailyBreakdown {
	byDate := make(map[string][]timeutil.SessionWindow)
	for _, w := range windows {
		key := w.StartedAt.UTC().Format("2006-01-02")
		byDate[key] = append(byDate[key], w)
	}

	var breakdown []entity.DailyBreakdown
	for day := startOfDay(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		daySessions := byDate[key]
		breakdown = append(breakdown, entity.DailyBreakdown{
			Date:      key,
			DayOfWeek: day.Format("Mon"),
			Hours:     round2(float64(timeutil.ActualSeconds(daySessions)) / 3600),
			Sessions:  len(daySessions),
		})
	}
	return breakdown
}

// extractUsername derives a display name from the email local part:
// "john.doe@example.com" -> "JohnDoe".
func extractUsername(email string) string {
	local, _, _ := strings.Cut(email, "@")
	words := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	var b strings.Builder
	for _, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	if b.Len() == 0 {
		return "User"
	}
	return b.String()
}

func percentChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round2((current - previous) / previous * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), time.UTC)
}
