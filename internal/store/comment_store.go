package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/nhle/project-tracker/internal/model"
)

const commentColumns = "c.id, c.task_id, c.content, c.author_email, c.created_at"

// CreateComment appends a comment to a task. Comments are immutable once
// written.
func (s *SQLStore) CreateComment(ctx context.Context, comment *model.Comment) error {
	if comment.TaskID == "" {
		return fmt.Errorf("comment task must not be empty")
	}
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	comment.CreatedAt = s.timestamp()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO task_comments (id, task_id, content, author_email, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		comment.ID, comment.TaskID, comment.Content, comment.AuthorEmail, comment.CreatedAt,
	)
	if err != nil {
		return insertErr(err, "comment")
	}
	return nil
}

// GetCommentByID retrieves a single comment.
func (s *SQLStore) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	query, args, err := s.sq.Select(commentColumns).
		From("task_comments c").
		Where(squirrel.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building comment query: %w", err)
	}

	var comment model.Comment
	if err := s.db.GetContext(ctx, &comment, query, args...); err != nil {
		return nil, lookupErr(err, "comment", id)
	}
	return &comment, nil
}

// ListComments returns a task's comments, oldest first.
func (s *SQLStore) ListComments(ctx context.Context, taskID string) ([]model.Comment, error) {
	query, args, err := s.sq.Select(commentColumns).
		From("task_comments c").
		Where(squirrel.Eq{"c.task_id": taskID}).
		OrderBy("c.created_at ASC", "c.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building comments query: %w", err)
	}

	comments := []model.Comment{}
	if err := s.db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, fmt.Errorf("querying comments for task %s: %w", taskID, err)
	}
	return comments, nil
}
