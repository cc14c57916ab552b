package model

import "time"

// Project status constants.
const (
	ProjectStatusActive    = "ACTIVE"
	ProjectStatusCompleted = "COMPLETED"
	ProjectStatusOnHold    = "ON_HOLD"
)

// ProjectStatuses is the closed set of project statuses.
var ProjectStatuses = []string{
	ProjectStatusActive,
	ProjectStatusCompleted,
	ProjectStatusOnHold,
}

// Project belongs to exactly one organization and groups tasks.
type Project struct {
	ID             string     `json:"id" db:"id"`
	OrganizationID string     `json:"organization_id" db:"organization_id"`
	Name           string     `json:"name" db:"name"`
	Description    string     `json:"description" db:"description"`
	Status         string     `json:"status" db:"status"`
	DueDate        *time.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`

	// TaskCount and CompletedTasks are computed by every read query
	// and never stored.
	TaskCount      int `json:"task_count" db:"task_count"`
	CompletedTasks int `json:"completed_tasks" db:"completed_tasks"`
}

// DateOnly truncates t to midnight UTC. Project due dates carry no time of day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
