package model

import "time"

// Comment is a note attached to a task. Its lifecycle is bound to the
// parent task (CASCADE delete).
type Comment struct {
	ID          string    `json:"id" db:"id"`
	TaskID      string    `json:"task_id" db:"task_id"`
	Content     string    `json:"content" db:"content"`
	AuthorEmail string    `json:"author_email" db:"author_email"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
