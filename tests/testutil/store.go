package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nhle/project-tracker/internal/model"
	"github.com/nhle/project-tracker/internal/store"
)

// Epoch is the first instant a Clock reports.
var Epoch = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

// Clock is a deterministic time source that advances one second on every
// call, so rows created in sequence never share a timestamp.
type Clock struct {
	mu  sync.Mutex
	cur time.Time
}

// NewClock returns a Clock starting at Epoch.
func NewClock() *Clock {
	return &Clock{cur: Epoch}
}

// Now returns the current instant and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.cur
	c.cur = c.cur.Add(time.Second)
	return now
}

// NewTestStore creates an in-memory SQLStore with all migrations applied
// and a deterministic clock. It automatically closes the store when the
// test completes.
func NewTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:", store.WithClock(NewClock().Now))
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// MustCreateOrganization inserts an organization named name with a slug
// derived from it.
func MustCreateOrganization(t *testing.T, s store.Store, name string) *model.Organization {
	t.Helper()
	org := &model.Organization{Name: name, Slug: model.Slugify(name)}
	if err := s.CreateOrganization(context.Background(), org); err != nil {
		t.Fatalf("creating organization %q: %v", name, err)
	}
	return org
}

// MustCreateProject inserts a project with the given status under org.
// An empty status falls back to the store default.
func MustCreateProject(t *testing.T, s store.Store, orgID, name, status string) *model.Project {
	t.Helper()
	p := &model.Project{OrganizationID: orgID, Name: name, Status: status}
	if err := s.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("creating project %q: %v", name, err)
	}
	return p
}

// MustCreateTask inserts a task with the given status under project.
func MustCreateTask(t *testing.T, s store.Store, projectID, title, status string) *model.Task {
	t.Helper()
	task := &model.Task{ProjectID: projectID, Title: title, Status: status}
	if err := s.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("creating task %q: %v", title, err)
	}
	return task
}

// MustCreateComment appends a comment to task.
func MustCreateComment(t *testing.T, s store.Store, taskID, content, author string) *model.Comment {
	t.Helper()
	c := &model.Comment{TaskID: taskID, Content: content, AuthorEmail: author}
	if err := s.CreateComment(context.Background(), c); err != nil {
		t.Fatalf("creating comment: %v", err)
	}
	return c
}
