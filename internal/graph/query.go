package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/nhle/project-tracker/internal/tracker"
)

func (r *Resolver) Organizations(ctx context.Context) ([]*organizationResolver, error) {
	orgs, err := r.svc.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*organizationResolver, len(orgs))
	for i := range orgs {
		out[i] = &organizationResolver{svc: r.svc, org: &orgs[i]}
	}
	return out, nil
}

func (r *Resolver) Organization(ctx context.Context, args struct{ Slug string }) (*organizationResolver, error) {
	org, err := r.svc.GetOrganization(ctx, args.Slug)
	if err != nil || org == nil {
		return nil, err
	}
	return &organizationResolver{svc: r.svc, org: org}, nil
}

func (r *Resolver) Projects(ctx context.Context, args struct {
	OrganizationSlug string
	Status           *string
}) ([]*projectResolver, error) {
	projects, err := r.svc.ListProjects(ctx, args.OrganizationSlug, tracker.ProjectQuery{Status: args.Status})
	if err != nil {
		return nil, err
	}
	return projectResolvers(r.svc, projects), nil
}

func (r *Resolver) Project(ctx context.Context, args struct {
	ID               graphql.ID
	OrganizationSlug string
}) (*projectResolver, error) {
	p, err := r.svc.GetProject(ctx, args.OrganizationSlug, string(args.ID))
	if err != nil || p == nil {
		return nil, err
	}
	return &projectResolver{svc: r.svc, project: p}, nil
}

func (r *Resolver) Tasks(ctx context.Context, args struct {
	ProjectID        graphql.ID
	OrganizationSlug string
	Status           *string
	AssigneeEmail    *string
}) ([]*taskResolver, error) {
	tasks, err := r.svc.ListTasks(ctx, args.OrganizationSlug, string(args.ProjectID), tracker.TaskQuery{
		Status:        args.Status,
		AssigneeEmail: args.AssigneeEmail,
	})
	if err != nil {
		return nil, err
	}
	return taskResolvers(r.svc, tasks), nil
}

func (r *Resolver) Comments(ctx context.Context, args struct {
	TaskID           graphql.ID
	OrganizationSlug string
}) ([]*commentResolver, error) {
	comments, err := r.svc.ListComments(ctx, args.OrganizationSlug, string(args.TaskID))
	if err != nil {
		return nil, err
	}
	return commentResolvers(r.svc, comments), nil
}

func (r *Resolver) ProjectStats(ctx context.Context, args struct{ OrganizationSlug string }) (*statsResolver, error) {
	stats, err := r.svc.ProjectStats(ctx, args.OrganizationSlug)
	if err != nil || stats == nil {
		return nil, err
	}
	return &statsResolver{stats: stats}, nil
}
