// Package auth carries the caller identity through a request and issues and
// verifies the bearer tokens it is built from.
package auth

import (
	"context"
	"strings"
)

// Principal is the authenticated caller. Subject is the caller's email.
// Organizations lists the slugs the caller may act on; Admin may act on
// every organization.
type Principal struct {
	Subject       string
	Organizations []string
	Admin         bool
}

// CanAccess reports whether the principal may read or write slug.
func (p *Principal) CanAccess(slug string) bool {
	if p == nil {
		return false
	}
	if p.Admin {
		return true
	}
	for _, s := range p.Organizations {
		if s == slug {
			return true
		}
	}
	return false
}

// CanAttribute reports whether the principal may author content as email.
// Admins and principals without a subject are not restricted.
func (p *Principal) CanAttribute(email string) bool {
	if p == nil || p.Admin || p.Subject == "" {
		return true
	}
	return strings.EqualFold(p.Subject, email)
}

type contextKey string

const principalContextKey contextKey = "principal"

// WithPrincipal injects the principal into the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// FromContext returns the principal from the context, or nil.
func FromContext(ctx context.Context) *Principal {
	v := ctx.Value(principalContextKey)
	if v == nil {
		return nil
	}
	p, _ := v.(*Principal)
	return p
}
