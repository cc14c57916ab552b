package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nhle/project-tracker/internal/apperr"
	"github.com/nhle/project-tracker/internal/auth"
	"github.com/nhle/project-tracker/internal/model"
	"github.com/nhle/project-tracker/internal/store"
	"github.com/nhle/project-tracker/internal/tenant"
)

// CreateOrganization creates an organization. When auth is required only
// an admin principal may do so.
func (s *Service) CreateOrganization(ctx context.Context, in CreateOrganizationInput) Result[model.Organization] {
	return mutate(ctx, s, "createOrganization", func() (*model.Organization, error) {
		if err := s.check(&in); err != nil {
			return nil, err
		}
		if !s.resolver.CanCreateOrganizations(ctx) {
			return nil, apperr.Forbiddenf("Not authorized to create organizations")
		}

		slug := ""
		if in.Slug != nil {
			slug = strings.TrimSpace(*in.Slug)
		}
		if slug == "" {
			slug = model.Slugify(in.Name)
			if slug == "" {
				return nil, apperr.Invalid("slug", fmt.Sprintf("cannot derive a slug from name %q", in.Name))
			}
		} else if s.validate != nil && !model.IsSlug(slug) {
			return nil, apperr.Invalid("slug", "slug must be lowercase letters and digits separated by single hyphens")
		}

		org := &model.Organization{
			Name:         in.Name,
			Slug:         slug,
			ContactEmail: in.ContactEmail,
		}
		if err := s.store.CreateOrganization(ctx, org); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return nil, &apperr.Error{
					Kind:    apperr.InvalidField,
					Field:   "slug",
					Message: fmt.Sprintf("organization slug %q already exists", slug),
					Err:     err,
				}
			}
			return nil, apperr.Persistence(err)
		}
		return org, nil
	})
}

// CreateProject creates a project in the organization named by slug.
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) Result[model.Project] {
	return mutate(ctx, s, "createProject", func() (*model.Project, error) {
		if err := s.check(&in); err != nil {
			return nil, err
		}
		org, err := s.resolver.Organization(ctx, in.OrganizationSlug)
		if err != nil {
			return nil, err
		}

		p := &model.Project{
			OrganizationID: org.ID,
			Name:           in.Name,
			Description:    in.Description,
			Status:         in.Status,
			DueDate:        in.DueDate,
		}
		if err := s.store.CreateProject(ctx, p); err != nil {
			return nil, apperr.Persistence(err)
		}
		s.invalidate(ctx, org.ID)
		return p, nil
	})
}

// UpdateProject changes the supplied fields of a project owned by the
// organization named by slug. Unsupplied fields keep their values.
func (s *Service) UpdateProject(ctx context.Context, in UpdateProjectInput) Result[model.Project] {
	return mutate(ctx, s, "updateProject", func() (*model.Project, error) {
		if err := s.check(&in); err != nil {
			return nil, err
		}
		org, err := s.resolver.Organization(ctx, in.OrganizationSlug)
		if err != nil {
			return nil, err
		}
		p, err := s.resolver.Project(ctx, org, in.ID)
		if err != nil {
			return nil, err
		}

		patch := store.ProjectPatch{
			Name:        in.Name,
			Description: in.Description,
			Status:      in.Status,
			DueDate:     in.DueDate,
		}
		if err := s.store.UpdateProject(ctx, p.ID, patch); err != nil {
			return nil, storeFailure(err, tenant.MsgProjectNotFound)
		}
		s.invalidate(ctx, org.ID)

		updated, err := s.store.GetProjectByID(ctx, p.ID)
		if err != nil {
			return nil, storeFailure(err, tenant.MsgProjectNotFound)
		}
		return updated, nil
	})
}

// DeleteProject removes a project owned by the organization named by slug,
// together with its tasks and comments. The deleted project is returned.
func (s *Service) DeleteProject(ctx context.Context, in DeleteProjectInput) Result[model.Project] {
	return mutate(ctx, s, "deleteProject", func() (*model.Project, error) {
		if err := s.check(&in); err != nil {
			return nil, err
		}
		org, err := s.resolver.Organization(ctx, in.OrganizationSlug)
		if err != nil {
			return nil, err
		}
		p, err := s.resolver.Project(ctx, org, in.ID)
		if err != nil {
			return nil, err
		}
		if err := s.store.DeleteProject(ctx, p.ID); err != nil {
			return nil, storeFailure(err, tenant.MsgProjectNotFound)
		}
		s.invalidate(ctx, org.ID)
		return p, nil
	})
}

// CreateTask creates a task in a project located by the write scoping
// mode.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) Result[model.Task] {
	return mutate(ctx, s, "createTask", func() (*model.Task, error) {
		if err := s.check(&in); err != nil {
			return nil, err
		}
		p, org, err := s.resolver.ProjectForWrite(ctx, in.OrganizationSlug, in.ProjectID)
		if err != nil {
			return nil, err
		}

		t := &model.Task{
			ProjectID:     p.ID,
			Title:         in.Title,
			Description:   in.Description,
			Status:        in.Status,
			AssigneeEmail: in.AssigneeEmail,
			DueDate:       in.DueDate,
		}
		if err := s.store.CreateTask(ctx, t); err != nil {
			return nil, apperr.Persistence(err)
		}
		s.invalidate(ctx, org.ID)
		return t, nil
	})
}

// UpdateTask changes the supplied fields of a task located by the write
// scoping mode.
func (s *Service) UpdateTask(ctx context.Context, in UpdateTaskInput) Result[model.Task] {
	return mutate(ctx, s, "updateTask", func() (*model.Task, error) {
		if err := s.check(&in); err != nil {
			return nil, err
		}
		t, org, err := s.resolver.TaskForWrite(ctx, in.OrganizationSlug, in.ID)
		if err != nil {
			return nil, err
		}

		patch := store.TaskPatch{
			Title:         in.Title,
			Description:   in.Description,
			Status:        in.Status,
			AssigneeEmail: in.AssigneeEmail,
			DueDate:       in.DueDate,
		}
		if err := s.store.UpdateTask(ctx, t.ID, patch); err != nil {
			return nil, storeFailure(err, tenant.MsgTaskNotFound)
		}
		s.invalidate(ctx, org.ID)

		updated, err := s.store.GetTaskByID(ctx, t.ID)
		if err != nil {
			return nil, storeFailure(err, tenant.MsgTaskNotFound)
		}
		return updated, nil
	})
}

// DeleteTask removes a task and its comments. The deleted task is
// returned.
func (s *Service) DeleteTask(ctx context.Context, in DeleteTaskInput) Result[model.Task] {
	return mutate(ctx, s, "deleteTask", func() (*model.Task, error) {
		if err := s.check(&in); err != nil {
			return nil, err
		}
		t, org, err := s.resolver.TaskForWrite(ctx, in.OrganizationSlug, in.ID)
		if err != nil {
			return nil, err
		}
		if err := s.store.DeleteTask(ctx, t.ID); err != nil {
			return nil, storeFailure(err, tenant.MsgTaskNotFound)
		}
		s.invalidate(ctx, org.ID)
		return t, nil
	})
}

// AddComment appends a comment to a task located by the write scoping
// mode. A non-admin caller may only comment as itself.
func (s *Service) AddComment(ctx context.Context, in AddCommentInput) Result[model.Comment] {
	return mutate(ctx, s, "addComment", func() (*model.Comment, error) {
		p := auth.FromContext(ctx)
		if strings.TrimSpace(in.AuthorEmail) == "" && p != nil {
			in.AuthorEmail = p.Subject
		}
		if err := s.check(&in); err != nil {
			return nil, err
		}
		t, _, err := s.resolver.TaskForWrite(ctx, in.OrganizationSlug, in.TaskID)
		if err != nil {
			return nil, err
		}
		if !p.CanAttribute(in.AuthorEmail) {
			return nil, apperr.Invalid("authorEmail", "authorEmail must match the authenticated caller")
		}

		c := &model.Comment{
			TaskID:      t.ID,
			Content:     in.Content,
			AuthorEmail: in.AuthorEmail,
		}
		if err := s.store.CreateComment(ctx, c); err != nil {
			return nil, apperr.Persistence(err)
		}
		return c, nil
	})
}
