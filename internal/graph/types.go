package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/nhle/project-tracker/internal/model"
	"github.com/nhle/project-tracker/internal/tracker"
)

type organizationResolver struct {
	svc *tracker.Service
	org *model.Organization
}

func (r *organizationResolver) ID() graphql.ID       { return graphql.ID(r.org.ID) }
func (r *organizationResolver) Name() string         { return r.org.Name }
func (r *organizationResolver) Slug() string         { return r.org.Slug }
func (r *organizationResolver) ContactEmail() string { return r.org.ContactEmail }
func (r *organizationResolver) CreatedAt() DateTime  { return DateTime{Time: r.org.CreatedAt} }

func (r *organizationResolver) Projects(ctx context.Context) ([]*projectResolver, error) {
	projects, err := r.svc.ProjectsOf(ctx, r.org)
	if err != nil {
		return nil, err
	}
	return projectResolvers(r.svc, projects), nil
}

type projectResolver struct {
	svc     *tracker.Service
	project *model.Project
}

func projectResolvers(svc *tracker.Service, projects []model.Project) []*projectResolver {
	out := make([]*projectResolver, len(projects))
	for i := range projects {
		out[i] = &projectResolver{svc: svc, project: &projects[i]}
	}
	return out
}

func (r *projectResolver) ID() graphql.ID        { return graphql.ID(r.project.ID) }
func (r *projectResolver) Name() string          { return r.project.Name }
func (r *projectResolver) Description() string   { return r.project.Description }
func (r *projectResolver) Status() string        { return r.project.Status }
func (r *projectResolver) DueDate() *Date        { return dateOf(r.project.DueDate) }
func (r *projectResolver) CreatedAt() DateTime   { return DateTime{Time: r.project.CreatedAt} }
func (r *projectResolver) UpdatedAt() DateTime   { return DateTime{Time: r.project.UpdatedAt} }
func (r *projectResolver) TaskCount() int32      { return int32(r.project.TaskCount) }
func (r *projectResolver) CompletedTasks() int32 { return int32(r.project.CompletedTasks) }

func (r *projectResolver) Organization(ctx context.Context) (*organizationResolver, error) {
	org, err := r.svc.OrganizationOf(ctx, r.project)
	if err != nil {
		return nil, err
	}
	return &organizationResolver{svc: r.svc, org: org}, nil
}

func (r *projectResolver) Tasks(ctx context.Context) ([]*taskResolver, error) {
	tasks, err := r.svc.TasksOf(ctx, r.project)
	if err != nil {
		return nil, err
	}
	return taskResolvers(r.svc, tasks), nil
}

type taskResolver struct {
	svc  *tracker.Service
	task *model.Task
}

func taskResolvers(svc *tracker.Service, tasks []model.Task) []*taskResolver {
	out := make([]*taskResolver, len(tasks))
	for i := range tasks {
		out[i] = &taskResolver{svc: svc, task: &tasks[i]}
	}
	return out
}

func (r *taskResolver) ID() graphql.ID        { return graphql.ID(r.task.ID) }
func (r *taskResolver) Title() string         { return r.task.Title }
func (r *taskResolver) Description() string   { return r.task.Description }
func (r *taskResolver) Status() string        { return r.task.Status }
func (r *taskResolver) AssigneeEmail() string { return r.task.AssigneeEmail }
func (r *taskResolver) DueDate() *DateTime    { return dateTimeOf(r.task.DueDate) }
func (r *taskResolver) CreatedAt() DateTime   { return DateTime{Time: r.task.CreatedAt} }
func (r *taskResolver) UpdatedAt() DateTime   { return DateTime{Time: r.task.UpdatedAt} }

func (r *taskResolver) Project(ctx context.Context) (*projectResolver, error) {
	p, err := r.svc.ProjectOf(ctx, r.task)
	if err != nil {
		return nil, err
	}
	return &projectResolver{svc: r.svc, project: p}, nil
}

func (r *taskResolver) Comments(ctx context.Context) ([]*commentResolver, error) {
	comments, err := r.svc.CommentsOf(ctx, r.task)
	if err != nil {
		return nil, err
	}
	return commentResolvers(r.svc, comments), nil
}

type commentResolver struct {
	svc     *tracker.Service
	comment *model.Comment
}

func commentResolvers(svc *tracker.Service, comments []model.Comment) []*commentResolver {
	out := make([]*commentResolver, len(comments))
	for i := range comments {
		out[i] = &commentResolver{svc: svc, comment: &comments[i]}
	}
	return out
}

func (r *commentResolver) ID() graphql.ID      { return graphql.ID(r.comment.ID) }
func (r *commentResolver) Content() string     { return r.comment.Content }
func (r *commentResolver) AuthorEmail() string { return r.comment.AuthorEmail }
func (r *commentResolver) CreatedAt() DateTime { return DateTime{Time: r.comment.CreatedAt} }

func (r *commentResolver) Task(ctx context.Context) (*taskResolver, error) {
	t, err := r.svc.TaskOf(ctx, r.comment)
	if err != nil {
		return nil, err
	}
	return &taskResolver{svc: r.svc, task: t}, nil
}

type statsResolver struct {
	stats *model.ProjectStats
}

func (r *statsResolver) TotalProjects() int32     { return int32(r.stats.TotalProjects) }
func (r *statsResolver) ActiveProjects() int32    { return int32(r.stats.ActiveProjects) }
func (r *statsResolver) CompletedProjects() int32 { return int32(r.stats.CompletedProjects) }
func (r *statsResolver) TotalTasks() int32        { return int32(r.stats.TotalTasks) }
func (r *statsResolver) CompletedTasks() int32    { return int32(r.stats.CompletedTasks) }
func (r *statsResolver) CompletionRate() float64  { return r.stats.CompletionRate }

// envelope carries the fields every mutation payload shares.
type envelope[T any] struct {
	svc *tracker.Service
	res tracker.Result[T]
}

func (e *envelope[T]) Success() bool        { return e.res.Success }
func (e *envelope[T]) Errors() []string     { return e.res.Errors }
func (e *envelope[T]) ErrorKinds() []string { return e.res.Kinds() }

type organizationPayload struct {
	envelope[model.Organization]
}

func (p *organizationPayload) Organization() *organizationResolver {
	if p.res.Entity == nil {
		return nil
	}
	return &organizationResolver{svc: p.svc, org: p.res.Entity}
}

type projectPayload struct {
	envelope[model.Project]
}

func (p *projectPayload) Project() *projectResolver {
	if p.res.Entity == nil {
		return nil
	}
	return &projectResolver{svc: p.svc, project: p.res.Entity}
}

type taskPayload struct {
	envelope[model.Task]
}

func (p *taskPayload) Task() *taskResolver {
	if p.res.Entity == nil {
		return nil
	}
	return &taskResolver{svc: p.svc, task: p.res.Entity}
}

type commentPayload struct {
	envelope[model.Comment]
}

func (p *commentPayload) Comment() *commentResolver {
	if p.res.Entity == nil {
		return nil
	}
	return &commentResolver{svc: p.svc, comment: p.res.Entity}
}
