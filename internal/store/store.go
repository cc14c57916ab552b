package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/project-tracker/internal/model"
)

// ErrNotFound is wrapped by every lookup that matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is wrapped when an insert violates a unique constraint.
var ErrDuplicate = errors.New("already exists")

// OrganizationFilter restricts organization listings.
type OrganizationFilter struct {
	Slugs []string // nil lists every organization, empty lists none
}

// ProjectFilter controls filtering for project queries.
type ProjectFilter struct {
	OrganizationID *string
	Status         *string
}

// TaskFilter controls filtering for task queries.
type TaskFilter struct {
	ProjectID      *string
	OrganizationID *string // restrict to tasks whose project belongs to this organization
	Status         *string
	AssigneeEmail  *string
}

// ProjectPatch lists the project fields a partial update changes.
// A nil field is left untouched.
type ProjectPatch struct {
	Name        *string
	Description *string
	Status      *string
	DueDate     *time.Time
}

// TaskPatch lists the task fields a partial update changes.
// A nil field is left untouched.
type TaskPatch struct {
	Title         *string
	Description   *string
	Status        *string
	AssigneeEmail *string
	DueDate       *time.Time
}

// Store defines the persistence interface for organizations, projects,
// tasks and comments. Create methods fill in the generated ID and
// timestamps on the passed entity.
type Store interface {
	// === Organizations ===

	CreateOrganization(ctx context.Context, org *model.Organization) error
	DeleteOrganization(ctx context.Context, id string) error
	GetOrganizationByID(ctx context.Context, id string) (*model.Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (*model.Organization, error)
	ListOrganizations(ctx context.Context, filter OrganizationFilter) ([]model.Organization, error)
	OrganizationOfProject(ctx context.Context, projectID string) (*model.Organization, error)
	OrganizationOfTask(ctx context.Context, taskID string) (*model.Organization, error)

	// === Projects ===

	CreateProject(ctx context.Context, project *model.Project) error
	UpdateProject(ctx context.Context, id string, patch ProjectPatch) error
	DeleteProject(ctx context.Context, id string) error
	GetProjectByID(ctx context.Context, id string) (*model.Project, error)
	GetProjectInOrganization(ctx context.Context, orgID, id string) (*model.Project, error)
	ListProjects(ctx context.Context, filter ProjectFilter) ([]model.Project, error)

	// === Tasks ===

	CreateTask(ctx context.Context, task *model.Task) error
	UpdateTask(ctx context.Context, id string, patch TaskPatch) error
	DeleteTask(ctx context.Context, id string) error
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	GetTaskInOrganization(ctx context.Context, orgID, id string) (*model.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)

	// === Comments ===

	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)
	ListComments(ctx context.Context, taskID string) ([]model.Comment, error)

	// === Statistics ===

	// ProjectStats counts the projects and tasks of one organization.
	// CompletionRate is left for the caller to derive.
	ProjectStats(ctx context.Context, orgID string) (model.ProjectStats, error)

	Ping(ctx context.Context) error
	Close() error
}
