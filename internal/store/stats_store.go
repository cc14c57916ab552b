package store

import (
	"context"
	"fmt"

	"github.com/nhle/project-tracker/internal/model"
)

// ProjectStats counts the projects and tasks belonging to orgID.
// An organization without projects yields all zeros.
func (s *SQLStore) ProjectStats(ctx context.Context, orgID string) (model.ProjectStats, error) {
	var stats model.ProjectStats

	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'ACTIVE' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'COMPLETED' THEN 1 ELSE 0 END), 0)
		FROM projects
		WHERE organization_id = ?`), orgID,
	).Scan(&stats.TotalProjects, &stats.ActiveProjects, &stats.CompletedProjects)
	if err != nil {
		return model.ProjectStats{}, fmt.Errorf("counting projects for organization %s: %w", orgID, err)
	}

	err = s.db.QueryRowContext(ctx, s.rebind(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN t.status = 'DONE' THEN 1 ELSE 0 END), 0)
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE p.organization_id = ?`), orgID,
	).Scan(&stats.TotalTasks, &stats.CompletedTasks)
	if err != nil {
		return model.ProjectStats{}, fmt.Errorf("counting tasks for organization %s: %w", orgID, err)
	}

	return stats, nil
}
