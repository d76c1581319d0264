package entity

import "time"

// Task represents a row in the `tasks` table. Tasks are soft-deleted via
// deleted_at and never removed; every query layer filter must exclude
// deleted rows explicitly.
type Task struct {
	ID                 string     `db:"id" json:"id"`
	UserID             string     `db:"user_id" json:"user_id"`
	Title              string     `db:"title" json:"title"`
	IsActive           bool       `db:"is_active" json:"is_active"`
	IsCompleted        bool       `db:"is_completed" json:"is_completed"`
	EstimatedPomodoros *int       `db:"estimated_pomodoros" json:"estimated_pomodoros,omitempty"`
	CompletedPomodoros int        `db:"completed_pomodoros" json:"completed_pomodoros"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt          *time.Time `db:"deleted_at" json:"-"`
}
