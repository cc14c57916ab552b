package tracker

import (
	"context"

	"github.com/nhle/project-tracker/internal/model"
	"github.com/nhle/project-tracker/internal/store"
)

// organization resolves slug for a read. A miss yields (nil, nil); only a
// store fault is returned as an error.
func (s *Service) organization(ctx context.Context, slug string) (*model.Organization, error) {
	org, err := s.resolver.Organization(ctx, slug)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		s.log.Error().Err(err).Str("organization", slug).Msg("resolving organization failed")
		return nil, err
	}
	return org, nil
}

func (s *Service) readFault(err error, msg string) error {
	s.log.Error().Err(err).Msg(msg)
	return err
}

// ListOrganizations returns the organizations visible to the caller,
// ordered by name.
func (s *Service) ListOrganizations(ctx context.Context) ([]model.Organization, error) {
	orgs, err := s.store.ListOrganizations(ctx, s.resolver.VisibleOrganizations(ctx))
	if err != nil {
		return nil, s.readFault(err, "listing organizations failed")
	}
	return orgs, nil
}

// GetOrganization returns the organization with slug, or nil.
func (s *Service) GetOrganization(ctx context.Context, slug string) (*model.Organization, error) {
	return s.organization(ctx, slug)
}

// ProjectQuery narrows ListProjects. Nil fields match every project.
type ProjectQuery struct {
	Status *string
}

// TaskQuery narrows ListTasks. Nil fields match every task.
type TaskQuery struct {
	Status        *string
	AssigneeEmail *string
}

// ListProjects returns the organization's projects matching q, newest
// first. An unknown organization yields an empty list.
func (s *Service) ListProjects(ctx context.Context, orgSlug string, q ProjectQuery) ([]model.Project, error) {
	org, err := s.organization(ctx, orgSlug)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return []model.Project{}, nil
	}
	return s.listProjects(ctx, store.ProjectFilter{OrganizationID: &org.ID, Status: q.Status})
}

// GetProject returns the project only if it belongs to the organization.
func (s *Service) GetProject(ctx context.Context, orgSlug, id string) (*model.Project, error) {
	org, err := s.organization(ctx, orgSlug)
	if err != nil || org == nil {
		return nil, err
	}
	p, err := s.resolver.Project(ctx, org, id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, s.readFault(err, "getting project failed")
	}
	return p, nil
}

// ListTasks returns the tasks of a project matching q, newest first,
// after checking the project belongs to the organization. Any break in
// that chain yields an empty list.
func (s *Service) ListTasks(ctx context.Context, orgSlug, projectID string, q TaskQuery) ([]model.Task, error) {
	p, err := s.GetProject(ctx, orgSlug, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return []model.Task{}, nil
	}
	return s.listTasks(ctx, store.TaskFilter{
		ProjectID:      &p.ID,
		OrganizationID: &p.OrganizationID,
		Status:         q.Status,
		AssigneeEmail:  q.AssigneeEmail,
	})
}

// ListComments returns a task's comments in chronological order, after
// checking the task belongs to the organization.
func (s *Service) ListComments(ctx context.Context, orgSlug, taskID string) ([]model.Comment, error) {
	org, err := s.organization(ctx, orgSlug)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return []model.Comment{}, nil
	}
	t, err := s.resolver.Task(ctx, org, taskID)
	if err != nil {
		if isNotFound(err) {
			return []model.Comment{}, nil
		}
		return nil, s.readFault(err, "getting task failed")
	}
	return s.listComments(ctx, t.ID)
}

// ProjectStats returns the organization's project and task counts, or nil
// for an unknown organization. Cached values are served until a project or
// task of the organization changes. A value computed across an invalidation
// is written under the generation read before computing, so it never hits.
func (s *Service) ProjectStats(ctx context.Context, orgSlug string) (*model.ProjectStats, error) {
	org, err := s.organization(ctx, orgSlug)
	if err != nil || org == nil {
		return nil, err
	}

	cached, gen, ok, err := s.stats.Get(ctx, org.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("organization_id", org.ID).Msg("stats cache read failed")
	}
	if ok {
		return &cached, nil
	}

	counts, err := s.store.ProjectStats(ctx, org.ID)
	if err != nil {
		return nil, s.readFault(err, "computing project stats failed")
	}
	stats := counts.WithCompletionRate()
	if err := s.stats.Set(ctx, org.ID, gen, stats); err != nil {
		s.log.Warn().Err(err).Str("organization_id", org.ID).Msg("stats cache write failed")
	}
	return &stats, nil
}

// The traversal helpers below follow ownership links from an entity that
// is already in hand. A mutation payload may hold an entity the caller
// cannot read (lenient scoping writes by bare id), so every list first
// checks the caller may see the owning organization and yields an empty
// list otherwise.

// ProjectsOf lists the projects of org, newest first.
func (s *Service) ProjectsOf(ctx context.Context, org *model.Organization) ([]model.Project, error) {
	if !s.resolver.Authorized(ctx, org.Slug) {
		return []model.Project{}, nil
	}
	return s.listProjects(ctx, store.ProjectFilter{OrganizationID: &org.ID})
}

// TasksOf lists the tasks of p, newest first.
func (s *Service) TasksOf(ctx context.Context, p *model.Project) ([]model.Task, error) {
	org, err := s.store.GetOrganizationByID(ctx, p.OrganizationID)
	if err != nil {
		return nil, s.readFault(err, "getting organization failed")
	}
	if !s.resolver.Authorized(ctx, org.Slug) {
		return []model.Task{}, nil
	}
	return s.listTasks(ctx, store.TaskFilter{ProjectID: &p.ID, OrganizationID: &p.OrganizationID})
}

// CommentsOf lists the comments of t, oldest first.
func (s *Service) CommentsOf(ctx context.Context, t *model.Task) ([]model.Comment, error) {
	org, err := s.store.OrganizationOfTask(ctx, t.ID)
	if err != nil {
		return nil, s.readFault(err, "getting organization failed")
	}
	if !s.resolver.Authorized(ctx, org.Slug) {
		return []model.Comment{}, nil
	}
	return s.listComments(ctx, t.ID)
}

func (s *Service) listProjects(ctx context.Context, filter store.ProjectFilter) ([]model.Project, error) {
	projects, err := s.store.ListProjects(ctx, filter)
	if err != nil {
		return nil, s.readFault(err, "listing projects failed")
	}
	return projects, nil
}

func (s *Service) listTasks(ctx context.Context, filter store.TaskFilter) ([]model.Task, error) {
	tasks, err := s.store.ListTasks(ctx, filter)
	if err != nil {
		return nil, s.readFault(err, "listing tasks failed")
	}
	return tasks, nil
}

func (s *Service) listComments(ctx context.Context, taskID string) ([]model.Comment, error) {
	comments, err := s.store.ListComments(ctx, taskID)
	if err != nil {
		return nil, s.readFault(err, "listing comments failed")
	}
	return comments, nil
}

// OrganizationOf returns the organization owning p.
func (s *Service) OrganizationOf(ctx context.Context, p *model.Project) (*model.Organization, error) {
	org, err := s.store.GetOrganizationByID(ctx, p.OrganizationID)
	if err != nil {
		return nil, s.readFault(err, "getting organization failed")
	}
	return org, nil
}

// ProjectOf returns the project owning t.
func (s *Service) ProjectOf(ctx context.Context, t *model.Task) (*model.Project, error) {
	p, err := s.store.GetProjectByID(ctx, t.ProjectID)
	if err != nil {
		return nil, s.readFault(err, "getting project failed")
	}
	return p, nil
}

// TaskOf returns the task owning c.
func (s *Service) TaskOf(ctx context.Context, c *model.Comment) (*model.Task, error) {
	t, err := s.store.GetTaskByID(ctx, c.TaskID)
	if err != nil {
		return nil, s.readFault(err, "getting task failed")
	}
	return t, nil
}
