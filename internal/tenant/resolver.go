// Package tenant binds every lookup to an organization boundary.
//
// An organization is resolved from its slug only when the caller's
// principal may access it. Projects and tasks are then looked up through
// their ownership chain, so an entity owned by another organization is
// indistinguishable from one that does not exist.
package tenant

import (
	"context"
	"errors"

	"github.com/nhle/project-tracker/internal/apperr"
	"github.com/nhle/project-tracker/internal/auth"
	"github.com/nhle/project-tracker/internal/model"
	"github.com/nhle/project-tracker/internal/store"
)

// Client-facing lookup failures.
const (
	MsgOrganizationNotFound = "Organization not found"
	MsgProjectNotFound      = "Project not found"
	MsgTaskNotFound         = "Task not found"
)

// Mode selects how task and comment mutations locate their target.
type Mode int

const (
	// Strict verifies the full ownership chain of the target against the
	// caller's principal and the supplied organization slug.
	Strict Mode = iota
	// Lenient looks the target up by identifier alone.
	Lenient
)

func (m Mode) String() string {
	if m == Lenient {
		return "lenient"
	}
	return "strict"
}

// ModeFor maps the scoping.strict setting to a Mode.
func ModeFor(strict bool) Mode {
	if strict {
		return Strict
	}
	return Lenient
}

// Resolver resolves organizations and scoped entities.
type Resolver struct {
	store       store.Store
	mode        Mode
	requireAuth bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMode sets the write scoping mode. The default is Strict.
func WithMode(m Mode) Option {
	return func(r *Resolver) { r.mode = m }
}

// WithAuthRequired controls whether a request without a principal may
// resolve any organization. The default is true.
func WithAuthRequired(required bool) Option {
	return func(r *Resolver) { r.requireAuth = required }
}

// NewResolver returns a Resolver over s.
func NewResolver(s store.Store, opts ...Option) *Resolver {
	r := &Resolver{store: s, mode: Strict, requireAuth: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Authorized reports whether the caller in ctx may act on slug.
func (r *Resolver) Authorized(ctx context.Context, slug string) bool {
	p := auth.FromContext(ctx)
	if p == nil {
		return !r.requireAuth
	}
	return p.CanAccess(slug)
}

// CanCreateOrganizations reports whether the caller in ctx may create new
// organizations: an admin, or anyone when auth is not required.
func (r *Resolver) CanCreateOrganizations(ctx context.Context) bool {
	p := auth.FromContext(ctx)
	if p == nil {
		return !r.requireAuth
	}
	return p.Admin
}

// VisibleOrganizations returns the filter listing the organizations the
// caller in ctx may see.
func (r *Resolver) VisibleOrganizations(ctx context.Context) store.OrganizationFilter {
	p := auth.FromContext(ctx)
	switch {
	case p == nil && !r.requireAuth:
		return store.OrganizationFilter{}
	case p == nil:
		return store.OrganizationFilter{Slugs: []string{}}
	case p.Admin:
		return store.OrganizationFilter{}
	default:
		return store.OrganizationFilter{Slugs: append([]string{}, p.Organizations...)}
	}
}

// Organization resolves slug. Unknown and unauthorized slugs both yield a
// NotFound failure.
func (r *Resolver) Organization(ctx context.Context, slug string) (*model.Organization, error) {
	if !r.Authorized(ctx, slug) {
		return nil, apperr.NotFoundf(MsgOrganizationNotFound)
	}
	org, err := r.store.GetOrganizationBySlug(ctx, slug)
	if err != nil {
		return nil, lookupFailure(err, MsgOrganizationNotFound)
	}
	return org, nil
}

// Project returns the project id only if org owns it.
func (r *Resolver) Project(ctx context.Context, org *model.Organization, id string) (*model.Project, error) {
	p, err := r.store.GetProjectInOrganization(ctx, org.ID, id)
	if err != nil {
		return nil, lookupFailure(err, MsgProjectNotFound)
	}
	return p, nil
}

// Task returns the task id only if its project belongs to org.
func (r *Resolver) Task(ctx context.Context, org *model.Organization, id string) (*model.Task, error) {
	t, err := r.store.GetTaskInOrganization(ctx, org.ID, id)
	if err != nil {
		return nil, lookupFailure(err, MsgTaskNotFound)
	}
	return t, nil
}

// ProjectForWrite locates the project a task mutation targets, together
// with its owning organization. slug is optional. In Strict mode the owner
// must be accessible to the caller and, when slug is set, must be slug.
func (r *Resolver) ProjectForWrite(ctx context.Context, slug, id string) (*model.Project, *model.Organization, error) {
	p, err := r.store.GetProjectByID(ctx, id)
	if err != nil {
		return nil, nil, lookupFailure(err, MsgProjectNotFound)
	}
	org, err := r.store.OrganizationOfProject(ctx, p.ID)
	if err != nil {
		return nil, nil, lookupFailure(err, MsgProjectNotFound)
	}
	if !r.chainAllowed(ctx, org, slug) {
		return nil, nil, apperr.NotFoundf(MsgProjectNotFound)
	}
	return p, org, nil
}

// TaskForWrite locates the task a task or comment mutation targets,
// together with its owning organization. The checks match ProjectForWrite.
func (r *Resolver) TaskForWrite(ctx context.Context, slug, id string) (*model.Task, *model.Organization, error) {
	t, err := r.store.GetTaskByID(ctx, id)
	if err != nil {
		return nil, nil, lookupFailure(err, MsgTaskNotFound)
	}
	org, err := r.store.OrganizationOfTask(ctx, t.ID)
	if err != nil {
		return nil, nil, lookupFailure(err, MsgTaskNotFound)
	}
	if !r.chainAllowed(ctx, org, slug) {
		return nil, nil, apperr.NotFoundf(MsgTaskNotFound)
	}
	return t, org, nil
}

func (r *Resolver) chainAllowed(ctx context.Context, owner *model.Organization, slug string) bool {
	if r.mode == Lenient {
		return true
	}
	if slug != "" && owner.Slug != slug {
		return false
	}
	return r.Authorized(ctx, owner.Slug)
}

func lookupFailure(err error, notFound string) error {
	if errors.Is(err, store.ErrNotFound) {
		return &apperr.Error{Kind: apperr.NotFound, Message: notFound, Err: err}
	}
	return apperr.Persistence(err)
}
