// Package cache holds per-organization project statistics between reads.
//
// Entries are keyed by organization id and are invalidated by every
// successful project or task create, update or delete in that organization.
// Comments never change statistics and never invalidate.
//
// Each organization carries a generation counter that Invalidate bumps.
// Get reports the current generation even on a miss and Set stores the
// generation the reader saw, so a value computed before an invalidation
// and written after it is never served.
package cache

import (
	"context"

	"github.com/nhle/project-tracker/internal/model"
)

// StatsCache stores computed ProjectStats. Get reports ok=false on a miss
// and returns the generation to hand back to Set.
type StatsCache interface {
	Get(ctx context.Context, orgID string) (stats model.ProjectStats, gen int64, ok bool, err error)
	Set(ctx context.Context, orgID string, gen int64, stats model.ProjectStats) error
	Invalidate(ctx context.Context, orgID string) error
}

// Noop never stores anything; every Get is a miss.
type Noop struct{}

func (Noop) Get(context.Context, string) (model.ProjectStats, int64, bool, error) {
	return model.ProjectStats{}, 0, false, nil
}

func (Noop) Set(context.Context, string, int64, model.ProjectStats) error { return nil }

func (Noop) Invalidate(context.Context, string) error { return nil }
