package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/nhle/project-tracker/internal/model"
)

// projectColumns selects a project together with its derived task counts.
// The counts are computed on every read and never stored.
const projectColumns = `p.id, p.organization_id, p.name, p.description, p.status,
	p.due_date, p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM tasks ct WHERE ct.project_id = p.id) AS task_count,
	(SELECT COUNT(*) FROM tasks dt WHERE dt.project_id = p.id AND dt.status = 'DONE') AS completed_tasks`

// CreateProject inserts a new project. Status defaults to ACTIVE.
func (s *SQLStore) CreateProject(ctx context.Context, project *model.Project) error {
	if project.OrganizationID == "" {
		return fmt.Errorf("project organization must not be empty")
	}
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	if project.Status == "" {
		project.Status = model.ProjectStatusActive
	}
	if project.DueDate != nil {
		d := model.DateOnly(*project.DueDate)
		project.DueDate = &d
	}
	now := s.timestamp()
	project.CreatedAt = now
	project.UpdatedAt = now
	project.TaskCount = 0
	project.CompletedTasks = 0

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO projects (id, organization_id, name, description, status, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		project.ID, project.OrganizationID, project.Name, project.Description,
		project.Status, project.DueDate, project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return insertErr(err, "project")
	}
	return nil
}

// UpdateProject applies patch to the project. Only supplied fields change;
// updated_at is refreshed even when the patch is empty.
func (s *SQLStore) UpdateProject(ctx context.Context, id string, patch ProjectPatch) error {
	q := s.sq.Update("projects").
		Set("updated_at", s.timestamp()).
		Where(squirrel.Eq{"id": id})

	if patch.Name != nil {
		q = q.Set("name", *patch.Name)
	}
	if patch.Description != nil {
		q = q.Set("description", *patch.Description)
	}
	if patch.Status != nil {
		q = q.Set("status", *patch.Status)
	}
	if patch.DueDate != nil {
		q = q.Set("due_date", model.DateOnly(*patch.DueDate))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("building project update: %w", err)
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating project %s: %w", id, err)
	}
	return affectedOne(result, "project", id)
}

// DeleteProject removes a project. Its tasks and their comments cascade.
func (s *SQLStore) DeleteProject(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM projects WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	return affectedOne(result, "project", id)
}

// GetProjectByID retrieves a single project by ID regardless of owner.
func (s *SQLStore) GetProjectByID(ctx context.Context, id string) (*model.Project, error) {
	return s.getProject(ctx, squirrel.Eq{"p.id": id}, id)
}

// GetProjectInOrganization retrieves a project only if orgID owns it.
func (s *SQLStore) GetProjectInOrganization(ctx context.Context, orgID, id string) (*model.Project, error) {
	return s.getProject(ctx, squirrel.Eq{"p.id": id, "p.organization_id": orgID}, id)
}

func (s *SQLStore) getProject(ctx context.Context, where squirrel.Eq, id string) (*model.Project, error) {
	query, args, err := s.sq.Select(projectColumns).
		From("projects p").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building project query: %w", err)
	}

	var project model.Project
	if err := s.db.GetContext(ctx, &project, query, args...); err != nil {
		return nil, lookupErr(err, "project", id)
	}
	return &project, nil
}

// ListProjects retrieves projects matching the filter, newest first.
func (s *SQLStore) ListProjects(ctx context.Context, filter ProjectFilter) ([]model.Project, error) {
	q := s.sq.Select(projectColumns).From("projects p")

	var conditions squirrel.And
	if filter.OrganizationID != nil {
		conditions = append(conditions, squirrel.Eq{"p.organization_id": *filter.OrganizationID})
	}
	if filter.Status != nil && strings.TrimSpace(*filter.Status) != "" {
		conditions = append(conditions, squirrel.Eq{"p.status": *filter.Status})
	}
	if len(conditions) > 0 {
		q = q.Where(conditions)
	}

	query, args, err := q.OrderBy("p.created_at DESC", "p.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building projects query: %w", err)
	}

	projects := []model.Project{}
	if err := s.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	return projects, nil
}
