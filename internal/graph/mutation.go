package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/nhle/project-tracker/internal/model"
	"github.com/nhle/project-tracker/internal/tracker"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *Resolver) CreateOrganization(ctx context.Context, args struct {
	Name         string
	Slug         *string
	ContactEmail *string
}) *organizationPayload {
	res := r.svc.CreateOrganization(ctx, tracker.CreateOrganizationInput{
		Name:         args.Name,
		Slug:         args.Slug,
		ContactEmail: deref(args.ContactEmail),
	})
	return &organizationPayload{envelope[model.Organization]{svc: r.svc, res: res}}
}

func (r *Resolver) CreateProject(ctx context.Context, args struct {
	OrganizationSlug string
	Name             string
	Description      *string
	Status           *string
	DueDate          *Date
}) *projectPayload {
	res := r.svc.CreateProject(ctx, tracker.CreateProjectInput{
		OrganizationSlug: args.OrganizationSlug,
		Name:             args.Name,
		Description:      deref(args.Description),
		Status:           deref(args.Status),
		DueDate:          timeOfDate(args.DueDate),
	})
	return &projectPayload{envelope[model.Project]{svc: r.svc, res: res}}
}

func (r *Resolver) UpdateProject(ctx context.Context, args struct {
	ID               graphql.ID
	OrganizationSlug string
	Name             *string
	Description      *string
	Status           *string
	DueDate          *Date
}) *projectPayload {
	res := r.svc.UpdateProject(ctx, tracker.UpdateProjectInput{
		ID:               string(args.ID),
		OrganizationSlug: args.OrganizationSlug,
		Name:             args.Name,
		Description:      args.Description,
		Status:           args.Status,
		DueDate:          timeOfDate(args.DueDate),
	})
	return &projectPayload{envelope[model.Project]{svc: r.svc, res: res}}
}

func (r *Resolver) DeleteProject(ctx context.Context, args struct {
	ID               graphql.ID
	OrganizationSlug string
}) *projectPayload {
	res := r.svc.DeleteProject(ctx, tracker.DeleteProjectInput{
		ID:               string(args.ID),
		OrganizationSlug: args.OrganizationSlug,
	})
	return &projectPayload{envelope[model.Project]{svc: r.svc, res: res}}
}

func (r *Resolver) CreateTask(ctx context.Context, args struct {
	ProjectID        graphql.ID
	Title            string
	Description      *string
	Status           *string
	AssigneeEmail    *string
	DueDate          *DateTime
	OrganizationSlug *string
}) *taskPayload {
	res := r.svc.CreateTask(ctx, tracker.CreateTaskInput{
		ProjectID:        string(args.ProjectID),
		Title:            args.Title,
		Description:      deref(args.Description),
		Status:           deref(args.Status),
		AssigneeEmail:    deref(args.AssigneeEmail),
		DueDate:          timeOfDateTime(args.DueDate),
		OrganizationSlug: deref(args.OrganizationSlug),
	})
	return &taskPayload{envelope[model.Task]{svc: r.svc, res: res}}
}

func (r *Resolver) UpdateTask(ctx context.Context, args struct {
	ID               graphql.ID
	Title            *string
	Description      *string
	Status           *string
	AssigneeEmail    *string
	DueDate          *DateTime
	OrganizationSlug *string
}) *taskPayload {
	res := r.svc.UpdateTask(ctx, tracker.UpdateTaskInput{
		ID:               string(args.ID),
		Title:            args.Title,
		Description:      args.Description,
		Status:           args.Status,
		AssigneeEmail:    args.AssigneeEmail,
		DueDate:          timeOfDateTime(args.DueDate),
		OrganizationSlug: deref(args.OrganizationSlug),
	})
	return &taskPayload{envelope[model.Task]{svc: r.svc, res: res}}
}

func (r *Resolver) DeleteTask(ctx context.Context, args struct {
	ID               graphql.ID
	OrganizationSlug *string
}) *taskPayload {
	res := r.svc.DeleteTask(ctx, tracker.DeleteTaskInput{
		ID:               string(args.ID),
		OrganizationSlug: deref(args.OrganizationSlug),
	})
	return &taskPayload{envelope[model.Task]{svc: r.svc, res: res}}
}

func (r *Resolver) AddComment(ctx context.Context, args struct {
	TaskID           graphql.ID
	Content          string
	AuthorEmail      string
	OrganizationSlug *string
}) *commentPayload {
	res := r.svc.AddComment(ctx, tracker.AddCommentInput{
		TaskID:           string(args.TaskID),
		Content:          args.Content,
		AuthorEmail:      args.AuthorEmail,
		OrganizationSlug: deref(args.OrganizationSlug),
	})
	return &commentPayload{envelope[model.Comment]{svc: r.svc, res: res}}
}
