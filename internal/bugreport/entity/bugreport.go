package entity

import "time"

// Report statuses.
const (
	StatusOpen     = "OPEN"
	StatusResolved = "RESOLVED"
)

// BugReport is a user-filed problem report. Reference is a short numeric
// id users can quote in support conversations.
type BugReport struct {
	ID          string    `db:"id" json:"id"`
	Reference   string    `db:"reference" json:"reference"`
	UserID      string    `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
