// Package tracker implements the tenant-scoped queries and mutations over
// organizations, projects, tasks and comments.
//
// Reads never report a missing or foreign entity as an error: they return
// an empty list or nil. Mutations never return an error at all; every
// outcome is a Result carrying the entity or the failures.
package tracker

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/nhle/project-tracker/internal/apperr"
	"github.com/nhle/project-tracker/internal/cache"
	"github.com/nhle/project-tracker/internal/store"
	"github.com/nhle/project-tracker/internal/tenant"
)

// Service serves queries and mutations against a Store.
type Service struct {
	store    store.Store
	resolver *tenant.Resolver
	stats    cache.StatsCache
	validate *validator.Validate
	log      zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithCache sets the statistics cache. The default is cache.Noop.
func WithCache(c cache.StatsCache) Option {
	return func(s *Service) {
		if c != nil {
			s.stats = c
		}
	}
}

// WithValidation turns input validation on or off. It is on by default;
// when off, field values are stored as supplied.
func WithValidation(enabled bool) Option {
	return func(s *Service) {
		if enabled {
			s.validate = newValidator()
		} else {
			s.validate = nil
		}
	}
}

// NewService returns a Service reading and writing through s and scoping
// every operation with r.
func NewService(s store.Store, r *tenant.Resolver, opts ...Option) *Service {
	svc := &Service{
		store:    s,
		resolver: r,
		stats:    cache.Noop{},
		validate: newValidator(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// invalidate drops the cached statistics of orgID. Failures are logged
// only; the next read recomputes after the TTL at worst.
func (s *Service) invalidate(ctx context.Context, orgID string) {
	if err := s.stats.Invalidate(ctx, orgID); err != nil {
		s.log.Warn().Err(err).Str("organization_id", orgID).Msg("stats cache invalidation failed")
	}
}

// storeFailure classifies a store error. A lookup miss becomes NotFound
// with msg; anything else is a persistence fault.
func storeFailure(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return &apperr.Error{Kind: apperr.NotFound, Message: msg, Err: err}
	}
	return apperr.Persistence(err)
}

// isNotFound reports whether err is a NotFound failure.
func isNotFound(err error) bool {
	return apperr.KindOf(err) == apperr.NotFound
}
