package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/nhle/project-tracker/internal/model"
)

const organizationColumns = "o.id, o.name, o.slug, o.contact_email, o.created_at"

// CreateOrganization inserts a new organization. The slug must already be
// set; a taken slug yields ErrDuplicate.
func (s *SQLStore) CreateOrganization(ctx context.Context, org *model.Organization) error {
	if strings.TrimSpace(org.Name) == "" {
		return fmt.Errorf("organization name must not be empty")
	}
	if org.Slug == "" {
		return fmt.Errorf("organization slug must not be empty")
	}
	if org.ID == "" {
		org.ID = uuid.New().String()
	}
	org.CreatedAt = s.timestamp()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO organizations (id, name, slug, contact_email, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		org.ID, org.Name, org.Slug, org.ContactEmail, org.CreatedAt,
	)
	if err != nil {
		return insertErr(err, "organization")
	}
	return nil
}

// DeleteOrganization removes an organization and, through cascading
// foreign keys, all of its projects, tasks and comments.
func (s *SQLStore) DeleteOrganization(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM organizations WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting organization %s: %w", id, err)
	}
	return affectedOne(result, "organization", id)
}

// GetOrganizationByID retrieves a single organization by ID.
func (s *SQLStore) GetOrganizationByID(ctx context.Context, id string) (*model.Organization, error) {
	return s.getOrganization(ctx, squirrel.Eq{"o.id": id}, id)
}

// GetOrganizationBySlug retrieves a single organization by slug.
func (s *SQLStore) GetOrganizationBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	return s.getOrganization(ctx, squirrel.Eq{"o.slug": slug}, slug)
}

func (s *SQLStore) getOrganization(ctx context.Context, where squirrel.Eq, key string) (*model.Organization, error) {
	query, args, err := s.sq.Select(organizationColumns).
		From("organizations o").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building organization query: %w", err)
	}

	var org model.Organization
	if err := s.db.GetContext(ctx, &org, query, args...); err != nil {
		return nil, lookupErr(err, "organization", key)
	}
	return &org, nil
}

// ListOrganizations retrieves organizations ordered by name.
func (s *SQLStore) ListOrganizations(ctx context.Context, filter OrganizationFilter) ([]model.Organization, error) {
	q := s.sq.Select(organizationColumns).From("organizations o")
	if filter.Slugs != nil {
		if len(filter.Slugs) == 0 {
			return []model.Organization{}, nil
		}
		q = q.Where(squirrel.Eq{"o.slug": filter.Slugs})
	}
	query, args, err := q.OrderBy("o.name ASC", "o.slug ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building organizations query: %w", err)
	}

	orgs := []model.Organization{}
	if err := s.db.SelectContext(ctx, &orgs, query, args...); err != nil {
		return nil, fmt.Errorf("querying organizations: %w", err)
	}
	return orgs, nil
}

// OrganizationOfProject returns the organization that owns a project.
func (s *SQLStore) OrganizationOfProject(ctx context.Context, projectID string) (*model.Organization, error) {
	query, args, err := s.sq.Select(organizationColumns).
		From("organizations o").
		Join("projects p ON p.organization_id = o.id").
		Where(squirrel.Eq{"p.id": projectID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building owner query: %w", err)
	}

	var org model.Organization
	if err := s.db.GetContext(ctx, &org, query, args...); err != nil {
		return nil, lookupErr(err, "project", projectID)
	}
	return &org, nil
}

// OrganizationOfTask returns the organization at the end of a task's
// ownership chain.
func (s *SQLStore) OrganizationOfTask(ctx context.Context, taskID string) (*model.Organization, error) {
	query, args, err := s.sq.Select(organizationColumns).
		From("organizations o").
		Join("projects p ON p.organization_id = o.id").
		Join("tasks t ON t.project_id = p.id").
		Where(squirrel.Eq{"t.id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building owner query: %w", err)
	}

	var org model.Organization
	if err := s.db.GetContext(ctx, &org, query, args...); err != nil {
		return nil, lookupErr(err, "task", taskID)
	}
	return &org, nil
}
