package tracker

import "time"

// CreateOrganizationInput creates an organization. Slug is derived from
// Name when nil or blank.
type CreateOrganizationInput struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Slug         *string `json:"slug" validate:"omitempty,max=100"`
	ContactEmail string  `json:"contactEmail" validate:"omitempty,email,max=254"`
}

// CreateProjectInput creates a project. An empty Status means ACTIVE.
type CreateProjectInput struct {
	OrganizationSlug string     `json:"organizationSlug" validate:"required"`
	Name             string     `json:"name" validate:"required,max=200"`
	Description      string     `json:"description"`
	Status           string     `json:"status" validate:"omitempty,projectstatus"`
	DueDate          *time.Time `json:"dueDate"`
}

// UpdateProjectInput changes the non-nil fields of a project.
type UpdateProjectInput struct {
	ID               string     `json:"id" validate:"required"`
	OrganizationSlug string     `json:"organizationSlug" validate:"required"`
	Name             *string    `json:"name" validate:"omitnil,min=1,max=200"`
	Description      *string    `json:"description"`
	Status           *string    `json:"status" validate:"omitnil,projectstatus"`
	DueDate          *time.Time `json:"dueDate"`
}

// DeleteProjectInput deletes a project with its tasks and comments.
type DeleteProjectInput struct {
	ID               string `json:"id" validate:"required"`
	OrganizationSlug string `json:"organizationSlug" validate:"required"`
}

// CreateTaskInput creates a task. An empty Status means TODO.
// OrganizationSlug is optional and narrows the target in strict scoping.
type CreateTaskInput struct {
	ProjectID        string     `json:"projectId" validate:"required"`
	Title            string     `json:"title" validate:"required,max=200"`
	Description      string     `json:"description"`
	Status           string     `json:"status" validate:"omitempty,taskstatus"`
	AssigneeEmail    string     `json:"assigneeEmail" validate:"omitempty,email,max=254"`
	DueDate          *time.Time `json:"dueDate"`
	OrganizationSlug string     `json:"organizationSlug"`
}

// UpdateTaskInput changes the non-nil fields of a task. An empty
// AssigneeEmail unassigns the task.
type UpdateTaskInput struct {
	ID               string     `json:"id" validate:"required"`
	Title            *string    `json:"title" validate:"omitnil,min=1,max=200"`
	Description      *string    `json:"description"`
	Status           *string    `json:"status" validate:"omitnil,taskstatus"`
	AssigneeEmail    *string    `json:"assigneeEmail" validate:"omitempty,email,max=254"`
	DueDate          *time.Time `json:"dueDate"`
	OrganizationSlug string     `json:"organizationSlug"`
}

// DeleteTaskInput deletes a task with its comments.
type DeleteTaskInput struct {
	ID               string `json:"id" validate:"required"`
	OrganizationSlug string `json:"organizationSlug"`
}

// AddCommentInput appends a comment to a task. AuthorEmail defaults to
// the caller's subject when blank.
type AddCommentInput struct {
	TaskID           string `json:"taskId" validate:"required"`
	Content          string `json:"content" validate:"required,max=10000"`
	AuthorEmail      string `json:"authorEmail" validate:"required,email,max=254"`
	OrganizationSlug string `json:"organizationSlug"`
}
