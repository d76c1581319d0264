package session

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/pomorix/service-core-go/internal/session/entity"
	settingsentity "github.com/pomorix/service-core-go/internal/settings/entity"
	taskentity "github.com/pomorix/service-core-go/internal/task/entity"
	"github.com/pomorix/service-core-go/pkg/utilities"
)

var (
	ErrInvalidType     = errors.New("invalid session type")
	ErrNoActiveTask    = errors.New("no active task")
	ErrNoTasksFound    = errors.New("no tasks found")
	ErrNoActiveSession = errors.New("no active session")
	ErrAlreadyPaused   = errors.New("session already paused")
	ErrNotPaused       = errors.New("session not paused")
)

// Store is the narrow persistence contract the state machine needs. InTx
// runs fn against a store bound to one transaction, serialized per user so
// two concurrent starts cannot both observe "no active session".
type Store interface {
	InTx(ctx context.Context, userID string, fn func(tx Store) error) error

	// ActiveSession returns the user's FOCUS/BREAK session, or nil.
	ActiveSession(ctx context.Context, userID string) (*entity.Session, error)
	CreateSession(ctx context.Context, s *entity.Session) error
	SaveSession(ctx context.Context, s *entity.Session) error

	// Task reads return nil when no row qualifies.
	ActiveTask(ctx context.Context, userID string) (*taskentity.Task, error)
	LatestTask(ctx context.Context, userID string) (*taskentity.Task, error)
	OldestIncompleteTask(ctx context.Context, userID string) (*taskentity.Task, error)
	TaskByID(ctx context.Context, id string) (*taskentity.Task, error)
	SaveTask(ctx context.Context, t *taskentity.Task) error
}

// SettingsProvider supplies the user's timer durations, lazily created.
type SettingsProvider interface {
	GetOrCreate(ctx context.Context, userID string) (*settingsentity.Settings, error)
}

// StreakRecorder is the streak engine hook invoked after a focus session
// completes.
type StreakRecorder interface {
	HandleSessionCompleted(ctx context.Context, userID string, endedAt time.Time, timezone string) error
}

// BadgeAwarder evaluates badge rules after a focus session completes.
type BadgeAwarder interface {
	CheckAndAwardBadges(ctx context.Context, userID string) ([]string, error)
}

// Service owns the session lifecycle state machine: start, pause, resume,
// complete and abort, plus the read-side snapshot. Session expiry is
// client-driven; the server never completes a session on its own.
type Service struct {
	store    Store
	settings SettingsProvider
	streaks  StreakRecorder
	badges   BadgeAwarder
	clock    clockwork.Clock
	logger   *zap.SugaredLogger

	// Timezone used for streak date bucketing until per-user zones exist.
	Timezone string
}

func NewService(store Store, settings SettingsProvider, streaks StreakRecorder, badges BadgeAwarder, clock clockwork.Clock, logger *zap.SugaredLogger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		store:    store,
		settings: settings,
		streaks:  streaks,
		badges:   badges,
		clock:    clock,
		logger:   logger,
		Timezone: "UTC",
	}
}

// Start begins a new session of the given type. A FOCUS session requires an
// active task; break sessions fall back to the most recent task for
// attribution. An already-running session is aborted, not rejected.
func (s *Service) Start(ctx context.Context, userID string, sessionType entity.Type) (*entity.Snapshot, error) {
	if !sessionType.Valid() {
		return nil, ErrInvalidType
	}
	cfg, err := s.settings.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	duration := durationFor(sessionType, cfg)

	now := s.clock.Now().UTC()
	var created *entity.Session
	err = s.store.InTx(ctx, userID, func(tx Store) error {
		t, err := s.resolveTask(ctx, tx, userID, sessionType)
		if err != nil {
			return err
		}

		prior, err := tx.ActiveSession(ctx, userID)
		if err != nil {
			return err
		}
		if prior != nil {
			// switching sessions aborts the previous one, no error
			terminate(prior, entity.StateAborted, now)
			if err := tx.SaveSession(ctx, prior); err != nil {
				return err
			}
			s.logger.Infow("aborted prior session on start", "user_id", userID, "session_id", prior.ID)
		}

		created = &entity.Session{
			ID:              utilities.NewID(),
			UserID:          userID,
			TaskID:          t.ID,
			SessionType:     sessionType,
			State:           sessionType.InitialState(),
			DurationSeconds: duration,
			StartedAt:       now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return tx.CreateSession(ctx, created)
	})
	if err != nil {
		return nil, err
	}
	return created.SnapshotAt(now), nil
}

// Current returns the active session snapshot, or nil when the user has no
// running session.
func (s *Service) Current(ctx context.Context, userID string) (*entity.Snapshot, error) {
	sess, err := s.store.ActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	return sess.SnapshotAt(s.clock.Now().UTC()), nil
}

// Pause freezes the running timer.
func (s *Service) Pause(ctx context.Context, userID string) error {
	now := s.clock.Now().UTC()
	return s.store.InTx(ctx, userID, func(tx Store) error {
		sess, err := tx.ActiveSession(ctx, userID)
		if err != nil {
			return err
		}
		if sess == nil {
			return ErrNoActiveSession
		}
		if sess.PausedAt != nil {
			return ErrAlreadyPaused
		}
		sess.PausedAt = &now
		return tx.SaveSession(ctx, sess)
	})
}

// Resume folds the open pause interval into total_pause_seconds and
// restarts the timer.
func (s *Service) Resume(ctx context.Context, userID string) error {
	now := s.clock.Now().UTC()
	return s.store.InTx(ctx, userID, func(tx Store) error {
		sess, err := tx.ActiveSession(ctx, userID)
		if err != nil {
			return err
		}
		if sess == nil {
			return ErrNoActiveSession
		}
		if sess.PausedAt == nil {
			return ErrNotPaused
		}
		foldPause(sess, now)
		return tx.SaveSession(ctx, sess)
	})
}

// Complete terminates the active session. For FOCUS sessions the owning
// task's counter advances atomically with the state change; streak and
// badge processing run after commit and never roll the completion back.
func (s *Service) Complete(ctx context.Context, userID string) error {
	now := s.clock.Now().UTC()
	var completed *entity.Session
	err := s.store.InTx(ctx, userID, func(tx Store) error {
		sess, err := tx.ActiveSession(ctx, userID)
		if err != nil {
			return err
		}
		if sess == nil {
			return ErrNoActiveSession
		}
		terminate(sess, entity.StateCompleted, now)
		if err := tx.SaveSession(ctx, sess); err != nil {
			return err
		}
		if sess.SessionType == entity.TypeFocus {
			if err := s.advanceTask(ctx, tx, sess); err != nil {
				return err
			}
		}
		completed = sess
		return nil
	})
	if err != nil {
		return err
	}

	if completed.SessionType == entity.TypeFocus {
		// best-effort post-commit phase; the completed session stays committed
		if err := s.streaks.HandleSessionCompleted(ctx, userID, *completed.EndedAt, s.Timezone); err != nil {
			s.logger.Errorw("streak update failed after completion", "user_id", userID, "err", err)
		}
		if unlocked, err := s.badges.CheckAndAwardBadges(ctx, userID); err != nil {
			s.logger.Errorw("badge check failed after completion", "user_id", userID, "err", err)
		} else if len(unlocked) > 0 {
			s.logger.Infow("badges unlocked", "user_id", userID, "codes", unlocked)
		}
	}
	return nil
}

// Abort terminates the active session without crediting it.
func (s *Service) Abort(ctx context.Context, userID string) error {
	now := s.clock.Now().UTC()
	return s.store.InTx(ctx, userID, func(tx Store) error {
		sess, err := tx.ActiveSession(ctx, userID)
		if err != nil {
			return err
		}
		if sess == nil {
			return ErrNoActiveSession
		}
		terminate(sess, entity.StateAborted, now)
		return tx.SaveSession(ctx, sess)
	})
}

// resolveTask picks the task a new session is attributed to.
func (s *Service) resolveTask(ctx context.Context, tx Store, userID string, sessionType entity.Type) (*taskentity.Task, error) {
	active, err := tx.ActiveTask(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sessionType == entity.TypeFocus {
		if active == nil {
			return nil, ErrNoActiveTask
		}
		return active, nil
	}
	if active != nil {
		return active, nil
	}
	latest, err := tx.LatestTask(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, ErrNoTasksFound
	}
	return latest, nil
}

// advanceTask credits one pomodoro to the session's task and, when the
// estimate is reached, completes the task and reactivates the oldest
// remaining incomplete task (FIFO).
func (s *Service) advanceTask(ctx context.Context, tx Store, sess *entity.Session) error {
	t, err := tx.TaskByID(ctx, sess.TaskID)
	if err != nil {
		return err
	}
	if t == nil {
		// task soft-deleted mid-session; nothing to credit
		return nil
	}
	t.CompletedPomodoros++
	finished := t.EstimatedPomodoros != nil && t.CompletedPomodoros >= *t.EstimatedPomodoros
	if finished {
		t.IsCompleted = true
		t.IsActive = false
	}
	if err := tx.SaveTask(ctx, t); err != nil {
		return err
	}
	if !finished {
		return nil
	}
	next, err := tx.OldestIncompleteTask(ctx, sess.UserID)
	if err != nil {
		return err
	}
	if next == nil || next.IsActive {
		return nil
	}
	next.IsActive = true
	return tx.SaveTask(ctx, next)
}

// terminate moves a session into a terminal state, folding any open pause
// interval first so total_pause_seconds is final.
func terminate(sess *entity.Session, state entity.State, now time.Time) {
	foldPause(sess, now)
	sess.State = state
	sess.EndedAt = &now
	sess.UpdatedAt = now
}

func foldPause(sess *entity.Session, now time.Time) {
	if sess.PausedAt == nil {
		return
	}
	sess.TotalPauseSeconds += int64(now.Sub(*sess.PausedAt).Seconds())
	sess.PausedAt = nil
	sess.UpdatedAt = now
}

func durationFor(t entity.Type, cfg *settingsentity.Settings) int64 {
	switch t {
	case entity.TypeShortBreak:
		return int64(cfg.ShortBreak) * 60
	case entity.TypeLongBreak:
		return int64(cfg.LongBreak) * 60
	default:
		return int64(cfg.PomodoroDuration) * 60
	}
}
