package settings

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/pomorix/service-core-go/internal/settings/entity"
	settingsrepo "github.com/pomorix/service-core-go/internal/settings/repo"
	"github.com/pomorix/service-core-go/pkg/utilities"
)

var ErrInvalidValue = errors.New("invalid settings value")

// Service owns the per-user timer configuration. Rows are created lazily
// with defaults on first read so callers never see a missing row.
type Service struct {
	repo *settingsrepo.SettingsRepo
}

func NewService(db *sqlx.DB, r *settingsrepo.SettingsRepo) *Service {
	if r == nil {
		r = settingsrepo.NewSettingsRepo(db)
	}
	return &Service{repo: r}
}

// GetOrCreate returns the user's settings, creating the row with defaults
// when absent. The insert is idempotent under concurrent first reads.
func (s *Service) GetOrCreate(ctx context.Context, userID string) (*entity.Settings, error) {
	st, err := s.repo.GetByUser(ctx, userID)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	def := entity.Defaults(userID)
	def.ID = utilities.NewID()
	if err := s.repo.Insert(ctx, def); err != nil {
		return nil, err
	}
	return s.repo.GetByUser(ctx, userID)
}

// UpdateInput carries the mutable settings fields; nil means unchanged.
type UpdateInput struct {
	PomodoroDuration   *int
	ShortBreak         *int
	LongBreak          *int
	DailyGoalPomodoros *int
	AlarmSound         *string
	TickingSound       *string
	Volume             *int
	AutoStartBreaks    *bool
	AutoStartPomodoros *bool
}

// Update applies in to the user's settings, creating defaults first when
// the row does not exist yet.
func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (*entity.Settings, error) {
	st, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.PomodoroDuration != nil {
		if *in.PomodoroDuration < 1 {
			return nil, ErrInvalidValue
		}
		st.PomodoroDuration = *in.PomodoroDuration
	}
	if in.ShortBreak != nil {
		if *in.ShortBreak < 1 {
			return nil, ErrInvalidValue
		}
		st.ShortBreak = *in.ShortBreak
	}
	if in.LongBreak != nil {
		if *in.LongBreak < 1 {
			return nil, ErrInvalidValue
		}
		st.LongBreak = *in.LongBreak
	}
	if in.DailyGoalPomodoros != nil {
		if *in.DailyGoalPomodoros < 1 {
			return nil, ErrInvalidValue
		}
		st.DailyGoalPomodoros = *in.DailyGoalPomodoros
	}
	if in.AlarmSound != nil {
		st.AlarmSound = *in.AlarmSound
	}
	if in.TickingSound != nil {
		st.TickingSound = *in.TickingSound
	}
	if in.Volume != nil {
		if *in.Volume < 0 || *in.Volume > 100 {
			return nil, ErrInvalidValue
		}
		st.Volume = *in.Volume
	}
	if in.AutoStartBreaks != nil {
		st.AutoStartBreaks = *in.AutoStartBreaks
	}
	if in.AutoStartPomodoros != nil {
		st.AutoStartPomodoros = *in.AutoStartPomodoros
	}
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Reset restores the documented defaults for the user.
func (s *Service) Reset(ctx context.Context, userID string) (*entity.Settings, error) {
	st, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	def := entity.Defaults(userID)
	def.ID = st.ID
	def.CreatedAt = st.CreatedAt
	if err := s.repo.Update(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}
