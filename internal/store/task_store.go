package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/nhle/project-tracker/internal/model"
)

const taskColumns = `t.id, t.project_id, t.title, t.description, t.status,
	t.assignee_email, t.due_date, t.created_at, t.updated_at`

// CreateTask inserts a new task. Status defaults to TODO.
func (s *SQLStore) CreateTask(ctx context.Context, task *model.Task) error {
	if task.ProjectID == "" {
		return fmt.Errorf("task project must not be empty")
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = model.TaskStatusTodo
	}
	if task.DueDate != nil {
		d := task.DueDate.UTC().Truncate(time.Microsecond)
		task.DueDate = &d
	}
	now := s.timestamp()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO tasks (
			id, project_id, title, description, status,
			assignee_email, due_date, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		task.ID, task.ProjectID, task.Title, task.Description, task.Status,
		task.AssigneeEmail, task.DueDate, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return insertErr(err, "task")
	}
	return nil
}

// UpdateTask applies patch to the task. Only supplied fields change;
// updated_at is refreshed even when the patch is empty.
func (s *SQLStore) UpdateTask(ctx context.Context, id string, patch TaskPatch) error {
	q := s.sq.Update("tasks").
		Set("updated_at", s.timestamp()).
		Where(squirrel.Eq{"id": id})

	if patch.Title != nil {
		q = q.Set("title", *patch.Title)
	}
	if patch.Description != nil {
		q = q.Set("description", *patch.Description)
	}
	if patch.Status != nil {
		q = q.Set("status", *patch.Status)
	}
	if patch.AssigneeEmail != nil {
		q = q.Set("assignee_email", *patch.AssigneeEmail)
	}
	if patch.DueDate != nil {
		q = q.Set("due_date", patch.DueDate.UTC().Truncate(time.Microsecond))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("building task update: %w", err)
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", id, err)
	}
	return affectedOne(result, "task", id)
}

// DeleteTask removes a task. Its comments cascade.
func (s *SQLStore) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM tasks WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return affectedOne(result, "task", id)
}

// GetTaskByID retrieves a single task by ID regardless of owner.
func (s *SQLStore) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	query, args, err := s.sq.Select(taskColumns).
		From("tasks t").
		Where(squirrel.Eq{"t.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building task query: %w", err)
	}
	return s.getTask(ctx, query, args, id)
}

// GetTaskInOrganization retrieves a task only if its project belongs to orgID.
func (s *SQLStore) GetTaskInOrganization(ctx context.Context, orgID, id string) (*model.Task, error) {
	query, args, err := s.sq.Select(taskColumns).
		From("tasks t").
		Join("projects p ON p.id = t.project_id").
		Where(squirrel.Eq{"t.id": id, "p.organization_id": orgID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building task query: %w", err)
	}
	return s.getTask(ctx, query, args, id)
}

func (s *SQLStore) getTask(ctx context.Context, query string, args []interface{}, id string) (*model.Task, error) {
	var task model.Task
	if err := s.db.GetContext(ctx, &task, query, args...); err != nil {
		return nil, lookupErr(err, "task", id)
	}
	return &task, nil
}

// ListTasks retrieves tasks matching the filter, newest first.
func (s *SQLStore) ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	q := s.sq.Select(taskColumns).From("tasks t")

	var conditions squirrel.And
	if filter.OrganizationID != nil {
		q = q.Join("projects p ON p.id = t.project_id")
		conditions = append(conditions, squirrel.Eq{"p.organization_id": *filter.OrganizationID})
	}
	if filter.ProjectID != nil {
		conditions = append(conditions, squirrel.Eq{"t.project_id": *filter.ProjectID})
	}
	if filter.Status != nil {
		conditions = append(conditions, squirrel.Eq{"t.status": *filter.Status})
	}
	if filter.AssigneeEmail != nil {
		conditions = append(conditions, squirrel.Eq{"t.assignee_email": *filter.AssigneeEmail})
	}
	if len(conditions) > 0 {
		q = q.Where(conditions)
	}

	query, args, err := q.OrderBy("t.created_at DESC", "t.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building tasks query: %w", err)
	}

	tasks := []model.Task{}
	if err := s.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	return tasks, nil
}
