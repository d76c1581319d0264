package entity

import "time"

// Type is the kind of session the user asked for.
type Type string

const (
	TypeFocus      Type = "FOCUS"
	TypeShortBreak Type = "SHORT_BREAK"
	TypeLongBreak  Type = "LONG_BREAK"
)

// Valid reports whether t is a known session type.
func (t Type) Valid() bool {
	switch t {
	case TypeFocus, TypeShortBreak, TypeLongBreak:
		return true
	}
	return false
}

// InitialState maps a session type to the state a fresh session starts in.
func (t Type) InitialState() State {
	if t == TypeFocus {
		return StateFocus
	}
	return StateBreak
}

// State is the lifecycle state of a session. FOCUS and BREAK are active;
// COMPLETED and ABORTED are terminal.
type State string

const (
	StateFocus     State = "FOCUS"
	StateBreak     State = "BREAK"
	StateCompleted State = "COMPLETED"
	StateAborted   State = "ABORTED"
)

// Session represents a row in the pomodoro_sessions table. At most one
// session per user may be in an active state at any time.
type Session struct {
	ID                string     `db:"id" json:"id"`
	UserID            string     `db:"user_id" json:"user_id"`
	TaskID            string     `db:"task_id" json:"task_id"`
	SessionType       Type       `db:"session_type" json:"session_type"`
	State             State      `db:"state" json:"state"`
	DurationSeconds   int64      `db:"duration_seconds" json:"duration_seconds"`
	StartedAt         time.Time  `db:"started_at" json:"started_at"`
	PausedAt          *time.Time `db:"paused_at" json:"paused_at,omitempty"`
	TotalPauseSeconds int64      `db:"total_pause_seconds" json:"total_pause_seconds"`
	EndedAt           *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// Active reports whether the session still owns the user's timer.
func (s *Session) Active() bool {
	return s.State == StateFocus || s.State == StateBreak
}

// Snapshot is the wire view of a session with derived timing fields.
type Snapshot struct {
	SessionID        string    `json:"session_id"`
	TaskID           string    `json:"task_id"`
	SessionType      Type      `json:"session_type"`
	State            State     `json:"state"`
	DurationSeconds  int64     `json:"duration_seconds"`
	ElapsedSeconds   int64     `json:"elapsed_seconds"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	IsPaused         bool      `json:"is_paused"`
	StartedAt        time.Time `json:"started_at"`
}

// SnapshotAt derives the elapsed/remaining view of s as of now. Elapsed
// time excludes accumulated pauses and freezes while a pause is open;
// remaining clamps at zero once the planned duration is exceeded.
func (s *Session) SnapshotAt(now time.Time) *Snapshot {
	elapsed := int64(now.Sub(s.StartedAt).Seconds()) - s.TotalPauseSeconds
	if s.PausedAt != nil {
		elapsed -= int64(now.Sub(*s.PausedAt).Seconds())
	}
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := s.DurationSeconds - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return &Snapshot{
		SessionID:        s.ID,
		TaskID:           s.TaskID,
		SessionType:      s.SessionType,
		State:            s.State,
		DurationSeconds:  s.DurationSeconds,
		ElapsedSeconds:   elapsed,
		RemainingSeconds: remaining,
		IsPaused:         s.PausedAt != nil,
		StartedAt:        s.StartedAt,
	}
}
