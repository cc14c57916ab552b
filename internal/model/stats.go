package model

// ProjectStats aggregates project and task counts for one organization.
type ProjectStats struct {
	TotalProjects     int     `json:"total_projects" db:"total_projects"`
	ActiveProjects    int     `json:"active_projects" db:"active_projects"`
	CompletedProjects int     `json:"completed_projects" db:"completed_projects"`
	TotalTasks        int     `json:"total_tasks" db:"total_tasks"`
	CompletedTasks    int     `json:"completed_tasks" db:"completed_tasks"`
	CompletionRate    float64 `json:"completion_rate" db:"-"`
}

// WithCompletionRate fills CompletionRate from the task counts.
// The rate is a percentage in [0, 100] and is 0 when there are no tasks.
func (s ProjectStats) WithCompletionRate() ProjectStats {
	if s.TotalTasks <= 0 {
		s.CompletionRate = 0
		return s
	}
	s.CompletionRate = float64(s.CompletedTasks) / float64(s.TotalTasks) * 100
	return s
}
