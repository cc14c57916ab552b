package tracker_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nhle/project-tracker/internal/auth"
	"github.com/nhle/project-tracker/internal/cache"
	"github.com/nhle/project-tracker/internal/model"
	"github.com/nhle/project-tracker/internal/store"
	"github.com/nhle/project-tracker/internal/tenant"
	"github.com/nhle/project-tracker/internal/tracker"
	"github.com/nhle/project-tracker/tests/testutil"
)

func ptr[T any](v T) *T { return &v }

var adminCtx = auth.WithPrincipal(context.Background(), &auth.Principal{Subject: "root@tracker.test", Admin: true})

func member(subject string, slugs ...string) context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{Subject: subject, Organizations: slugs})
}

func newService(t *testing.T, s store.Store, mode tenant.Mode, opts ...tracker.Option) *tracker.Service {
	t.Helper()
	return tracker.NewService(s, tenant.NewResolver(s, tenant.WithMode(mode)), opts...)
}

func mustOrg(t *testing.T, svc *tracker.Service, name, slug string) *model.Organization {
	t.Helper()
	res := svc.CreateOrganization(adminCtx, tracker.CreateOrganizationInput{Name: name, Slug: ptr(slug)})
	if !res.Success {
		t.Fatalf("CreateOrganization(%q): %v", name, res.Errors)
	}
	return res.Entity
}

func mustProject(t *testing.T, svc *tracker.Service, slug, name, status string) *model.Project {
	t.Helper()
	res := svc.CreateProject(adminCtx, tracker.CreateProjectInput{OrganizationSlug: slug, Name: name, Status: status})
	if !res.Success {
		t.Fatalf("CreateProject(%q): %v", name, res.Errors)
	}
	return res.Entity
}

func mustTask(t *testing.T, svc *tracker.Service, projectID, title, status string) *model.Task {
	t.Helper()
	res := svc.CreateTask(adminCtx, tracker.CreateTaskInput{ProjectID: projectID, Title: title, Status: status})
	if !res.Success {
		t.Fatalf("CreateTask(%q): %v", title, res.Errors)
	}
	return res.Entity
}

func wantFailure[T any](t *testing.T, res tracker.Result[T], errs []string, kinds []string) {
	t.Helper()
	if res.Success {
		t.Fatal("expected failure, got success")
	}
	if res.Entity != nil {
		t.Errorf("entity = %+v, want nil", res.Entity)
	}
	if diff := cmp.Diff(errs, res.Errors); diff != "" {
		t.Errorf("errors (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(kinds, res.Kinds()); diff != "" {
		t.Errorf("kinds (-want +got):\n%s", diff)
	}
}

func TestCreateOrganization(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := newService(t, s, tenant.Strict)

	res := svc.CreateOrganization(adminCtx, tracker.CreateOrganizationInput{Name: "Acme Corp!", ContactEmail: "ops@acme.test"})
	if !res.Success {
		t.Fatalf("CreateOrganization: %v", res.Errors)
	}
	if res.Entity.Slug != "acme-corp" {
		t.Errorf("slug = %q, want acme-corp", res.Entity.Slug)
	}
	if len(res.Errors) != 0 {
		t.Errorf("errors = %v, want none", res.Errors)
	}

	tests := []struct {
		name  string
		ctx   context.Context
		input tracker.CreateOrganizationInput
		errs  []string
		kinds []string
	}{
		{
			name:  "colliding derived slug",
			ctx:   adminCtx,
			input: tracker.CreateOrganizationInput{Name: "ACME corp"},
			errs:  []string{`organization slug "acme-corp" already exists`},
			kinds: []string{"INVALID_FIELD"},
		},
		{
			name:  "underivable slug",
			ctx:   adminCtx,
			input: tracker.CreateOrganizationInput{Name: "!!!"},
			errs:  []string{`cannot derive a slug from name "!!!"`},
			kinds: []string{"INVALID_FIELD"},
		},
		{
			name:  "malformed slug",
			ctx:   adminCtx,
			input: tracker.CreateOrganizationInput{Name: "Globex", Slug: ptr("Glo Bex")},
			errs:  []string{"slug must be lowercase letters and digits separated by single hyphens"},
			kinds: []string{"INVALID_FIELD"},
		},
		{
			name:  "invalid fields",
			ctx:   adminCtx,
			input: tracker.CreateOrganizationInput{Name: "", ContactEmail: "not-an-email"},
			errs:  []string{"name is required", "contactEmail must be a valid email address"},
			kinds: []string{"INVALID_FIELD", "INVALID_FIELD"},
		},
		{
			name:  "member cannot create",
			ctx:   member("dev@acme.test", "acme-corp"),
			input: tracker.CreateOrganizationInput{Name: "Globex"},
			errs:  []string{"Not authorized to create organizations"},
			kinds: []string{"FORBIDDEN"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantFailure(t, svc.CreateOrganization(tt.ctx, tt.input), tt.errs, tt.kinds)
		})
	}
}

func TestProjectStatsScenario(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := newService(t, s, tenant.Strict)

	mustOrg(t, svc, "Acme", "acme-corp")
	website := mustProject(t, svc, "acme-corp", "Website", model.ProjectStatusActive)
	mustTask(t, svc, website.ID, "Launch", model.TaskStatusDone)
	mustTask(t, svc, website.ID, "Polish", model.TaskStatusTodo)

	got, err := svc.ProjectStats(adminCtx, "acme-corp")
	if err != nil {
		t.Fatalf("ProjectStats: %v", err)
	}
	want := &model.ProjectStats{
		TotalProjects:     1,
		ActiveProjects:    1,
		CompletedProjects: 0,
		TotalTasks:        2,
		CompletedTasks:    1,
		CompletionRate:    50.0,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}
}

func TestProjectStatsEdgeCases(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := newService(t, s, tenant.Strict)
	mustOrg(t, svc, "Empty", "empty")

	got, err := svc.ProjectStats(adminCtx, "empty")
	if err != nil {
		t.Fatalf("ProjectStats: %v", err)
	}
	if got == nil || got.CompletionRate != 0 || got.TotalTasks != 0 {
		t.Errorf("empty organization stats = %+v, want zeros", got)
	}

	missing, err := svc.ProjectStats(adminCtx, "nope")
	if err != nil {
		t.Fatalf("ProjectStats: %v", err)
	}
	if missing != nil {
		t.Errorf("unknown organization stats = %+v, want nil", missing)
	}
}

func TestUpdateProjectWrongOrganization(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := newService(t, s, tenant.Strict)

	mustOrg(t, svc, "Acme", "acme-corp")
	mustOrg(t, svc, "Wrong", "wrong-org")
	p := mustProject(t, svc, "acme-corp", "Website", "")

	before, err := s.GetProjectByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetProjectByID: %v", err)
	}

	res := svc.UpdateProject(adminCtx, tracker.UpdateProjectInput{ID: p.ID, OrganizationSlug: "wrong-org", Name: ptr("New")})
	wantFailure(t, res, []string{"Project not found"}, []string{"NOT_FOUND"})

	after, err := s.GetProjectByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetProjectByID: %v", err)
	}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("row changed (-before +after):\n%s", diff)
	}
}

func TestUpdateProjectUnknownOrganization(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := newService(t, s, tenant.Strict)

	res := svc.UpdateProject(adminCtx, tracker.UpdateProjectInput{ID: "x", OrganizationSlug: "missing", Name: ptr("New")})
	wantFailure(t, res, []string{"Organization not found"}, []string{"NOT_FOUND"})

	create := svc.CreateProject(adminCtx, tracker.CreateProjectInput{OrganizationSlug: "missing", Name: "Website"})
	wantFailure(t, create, []string{"Organization not found"}, []string{"NOT_FOUND"})
}

func TestUpdateProjectPartialAndIdempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := newService(t, s, tenant.Strict)

	mustOrg(t, svc, "Acme", "acme-corp")
	due := time.Date(2024, time.December, 24, 0, 0, 0, 0, time.UTC)
	created := svc.CreateProject(adminCtx, tracker.CreateProjectInput{
		OrganizationSlug: "acme-corp",
		Name:             "Website",
		Description:      "public site",
		DueDate:          &due,
	})
	if !created.Success {
		t.Fatalf("CreateProject: %v", created.Errors)
	}

	in := tracker.UpdateProjectInput{ID: created.Entity.ID, OrganizationSlug: "acme-corp", Status: ptr(model.ProjectStatusOnHold)}
	once := svc.UpdateProject(adminCtx, in)
	if !once.Success {
		t.Fatalf("UpdateProject: %v", once.Errors)
	}
	twice := svc.UpdateProject(adminCtx, in)
	if !twice.Success {
		t.Fatalf("UpdateProject: %v", twice.Errors)
	}

	ignoreUpdated := cmpopts.IgnoreFields(model.Project{}, "UpdatedAt")
	if diff := cmp.Diff(once.Entity, twice.Entity, ignoreUpdated); diff != "" {
		t.Errorf("second update changed state (-once +twice):\n%s", diff)
	}

	want := *created.Entity
	want.Status = model.ProjectStatusOnHold
	if diff := cmp.Diff(&want, twice.Entity, ignoreUpdated); diff != "" {
		t.Errorf("unsupplied fields changed (-want +got):\n%s", diff)
	}
	if !twice.Entity.UpdatedAt.After(once.Entity.UpdatedAt) {
		t.Errorf("updated_at not refreshed: %v then %v", once.Entity.UpdatedAt, twice.Entity.UpdatedAt)
	}

	empty := svc.UpdateProject(adminCtx, tracker.UpdateProjectInput{ID: created.Entity.ID, OrganizationSlug: "acme-corp"})
	if !empty.Success {
		t.Fatalf("empty UpdateProject: %v", empty.Errors)
	}
	if !empty.Entity.UpdatedAt.After(twice.Entity.UpdatedAt) {
		t.Error("an update with no fields should still refresh updated_at")
	}
}

func TestAddCommentMissingTask(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := newService(t, s, tenant.Strict)

	res := svc.AddComment(adminCtx, tracker.AddCommentInput{TaskID: "missing-id", Content: "hi", AuthorEmail: "a@b.com"})
	wantFailure(t, res, []string{"Task not found"}, []string{"NOT_FOUND"})

	comments, err := s.ListComments(context.Background(), "missing-id")
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("comment rows created: %+v", comments)
	}
}

func TestCreateTaskRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := newService(t, s, tenant.Strict)

	mustOrg(t, svc, "Acme", "acme-corp")
	p := mustProject(t, svc, "acme-corp", "Website", "")
	due := time.Date(2024, time.May, 2, 15, 30, 0, 0, time.UTC)

	res := svc.CreateTask(adminCtx, tracker.CreateTaskInput{
		ProjectID:     p.ID,
		Title:         "Write copy",
		AssigneeEmail: "writer@acme.test",
		DueDate:       &due,
	})
	if !res.Success {
		t.Fatalf("CreateTask: %v", res.Errors)
	}
	if res.Entity.Status != model.TaskStatusTodo || res.Entity.Description != "" {
		t.Errorf("defaults not applied: %+v", res.Entity)
	}

	tasks, err := svc.ListTasks(adminCtx, "acme-corp", p.ID, tracker.TaskQuery{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	if diff := cmp.Diff(res.Entity, &tasks[0]); diff != "" {
		t.Errorf("round trip (-created +listed):\n%s", diff)
	}

	project, err := svc.GetProject(adminCtx, "acme-corp", p.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if project.TaskCount != 1 || project.CompletedTasks != 0 {
		t.Errorf("derived counts = (%d, %d), want (1, 0)", project.TaskCount, project.CompletedTasks)
	}
}

func TestCrossTenantIsolation(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := newService(t, s, tenant.Strict)

	mustOrg(t, svc, "Acme", "acme")
	mustOrg(t, svc, "Globex", "globex")
	pa := mustProject(t, svc, "acme", "Web", "")
	pb := mustProject(t, svc, "globex", "Ops", "")
	tb := mustTask(t, svc, pb.ID, "Patch", "")

	projects, err := svc.ListProjects(adminCtx, "acme", tracker.ProjectQuery{})
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != pa.ID {
		t.Errorf("ListProjects(acme) = %+v, want only %s", projects, pa.ID)
	}

	tasks, err := svc.ListTasks(adminCtx, "acme", pb.ID, tracker.TaskQuery{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("ListTasks(acme, globex project) = %+v, want empty", tasks)
	}

	p, err := svc.GetProject(adminCtx, "acme", pb.ID)
	if err != nil || p != nil {
		t.Errorf("GetProject(acme, globex project) = (%+v, %v), want (nil, nil)", p, err)
	}

	comments, err := svc.ListComments(adminCtx, "acme", tb.ID)
	if err != nil || len(comments) != 0 {
		t.Errorf("ListComments(acme, globex task) = (%+v, %v), want empty", comments, err)
	}

	unknown, err := svc.ListProjects(adminCtx, "missing", tracker.ProjectQuery{})
	if err != nil || len(unknown) != 0 {
		t.Errorf("ListProjects(missing) = (%+v, %v), want empty", unknown, err)
	}

	// A member of acme cannot see globex at all.
	acmeDev := member("dev@acme.test", "acme")
	hidden, err := svc.ListProjects(acmeDev, "globex", tracker.ProjectQuery{})
	if err != nil || len(hidden) != 0 {
		t.Errorf("member ListProjects(globex) = (%+v, %v), want empty", hidden, err)
	}
	orgs, err := svc.ListOrganizations(acmeDev)
	if err != nil {
		t.Fatalf("ListOrganizations: %v", err)
	}
	if len(orgs) != 1 || orgs[0].Slug != "acme" {
		t.Errorf("member ListOrganizations = %+v, want only acme", orgs)
	}
}

func TestWriteScoping(t *testing.T) {
	s := testutil.NewTestStore(t)
	setup := newService(t, s, tenant.Strict)

	mustOrg(t, setup, "Acme", "acme")
	mustOrg(t, setup, "Globex", "globex")
	pb := mustProject(t, setup, "globex", "Ops", "")
	tb := mustTask(t, setup, pb.ID, "Patch", "")

	intruder := member("dev@acme.test", "acme")

	t.Run("strict", func(t *testing.T) {
		svc := newService(t, s, tenant.Strict)

		wantFailure(t, svc.CreateTask(intruder, tracker.CreateTaskInput{ProjectID: pb.ID, Title: "x"}),
			[]string{"Project not found"}, []string{"NOT_FOUND"})
		wantFailure(t, svc.UpdateTask(intruder, tracker.UpdateTaskInput{ID: tb.ID, Title: ptr("x")}),
			[]string{"Task not found"}, []string{"NOT_FOUND"})
		wantFailure(t, svc.AddComment(intruder, tracker.AddCommentInput{TaskID: tb.ID, Content: "x", AuthorEmail: "dev@acme.test"}),
			[]string{"Task not found"}, []string{"NOT_FOUND"})
		wantFailure(t, svc.DeleteTask(intruder, tracker.DeleteTaskInput{ID: tb.ID}),
			[]string{"Task not found"}, []string{"NOT_FOUND"})

		// An admin naming the wrong organization is refused too.
		wantFailure(t, svc.UpdateTask(adminCtx, tracker.UpdateTaskInput{ID: tb.ID, Title: ptr("x"), OrganizationSlug: "acme"}),
			[]string{"Task not found"}, []string{"NOT_FOUND"})

		unchanged, err := s.GetTaskByID(context.Background(), tb.ID)
		if err != nil {
			t.Fatalf("GetTaskByID: %v", err)
		}
		if unchanged.Title != "Patch" {
			t.Errorf("title = %q, want Patch", unchanged.Title)
		}
	})

	t.Run("lenient", func(t *testing.T) {
		svc := newService(t, s, tenant.Lenient)

		res := svc.UpdateTask(intruder, tracker.UpdateTaskInput{ID: tb.ID, Status: ptr(model.TaskStatusInProgress)})
		if !res.Success {
			t.Fatalf("lenient UpdateTask: %v", res.Errors)
		}
		if res.Entity.Status != model.TaskStatusInProgress || res.Entity.Title != "Patch" {
			t.Errorf("updated task = %+v", res.Entity)
		}

		comment := svc.AddComment(intruder, tracker.AddCommentInput{TaskID: tb.ID, Content: "hi", AuthorEmail: "dev@acme.test"})
		if !comment.Success {
			t.Fatalf("lenient AddComment: %v", comment.Errors)
		}

		// Queries stay organization-scoped in lenient mode.
		tasks, err := svc.ListTasks(intruder, "globex", pb.ID, tracker.TaskQuery{})
		if err != nil || len(tasks) != 0 {
			t.Errorf("lenient ListTasks(globex) = (%+v, %v), want empty", tasks, err)
		}
	})
}

func TestValidation(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := newService(t, s, tenant.Strict)
	mustOrg(t, svc, "Acme", "acme")
	p := mustProject(t, svc, "acme", "Web", "")

	wantFailure(t,
		svc.CreateProject(adminCtx, tracker.CreateProjectInput{OrganizationSlug: "acme", Name: "", Status: "BOGUS"}),
		[]string{"name is required", "status must be one of ACTIVE, COMPLETED, ON_HOLD"},
		[]string{"INVALID_FIELD", "INVALID_FIELD"})

	wantFailure(t,
		svc.UpdateProject(adminCtx, tracker.UpdateProjectInput{ID: p.ID, OrganizationSlug: "acme", Name: ptr("")}),
		[]string{"name must not be empty"},
		[]string{"INVALID_FIELD"})

	wantFailure(t,
		svc.CreateTask(adminCtx, tracker.CreateTaskInput{ProjectID: p.ID, Title: "x", AssigneeEmail: "nobody"}),
		[]string{"assigneeEmail must be a valid email address"},
		[]string{"INVALID_FIELD"})

	task := mustTask(t, svc, p.ID, "x", "")
	wantFailure(t,
		svc.UpdateTask(adminCtx, tracker.UpdateTaskInput{ID: task.ID, Status: ptr("FINISHED")}),
		[]string{"status must be one of TODO, IN_PROGRESS, DONE"},
		[]string{"INVALID_FIELD"})

	wantFailure(t,
		svc.AddComment(adminCtx, tracker.AddCommentInput{TaskID: task.ID, Content: "", AuthorEmail: "a@b.com"}),
		[]string{"content is required"},
		[]string{"INVALID_FIELD"})

	cleared := svc.UpdateTask(adminCtx, tracker.UpdateTaskInput{ID: task.ID, AssigneeEmail: ptr("")})
	if !cleared.Success {
		t.Errorf("clearing assignee: %v", cleared.Errors)
	}
}

func TestValidationDisabled(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := newService(t, s, tenant.Strict, tracker.WithValidation(false))
	mustOrg(t, svc, "Acme", "acme")

	res := svc.CreateProject(adminCtx, tracker.CreateProjectInput{OrganizationSlug: "acme", Name: "Web", Status: "ARCHIVED"})
	if !res.Success {
		t.Fatalf("CreateProject: %v", res.Errors)
	}
	if res.Entity.Status != "ARCHIVED" {
		t.Errorf("status = %q, want ARCHIVED stored as supplied", res.Entity.Status)
	}
}

func TestCommentAttribution(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := newService(t, s, tenant.Strict)
	mustOrg(t, svc, "Acme", "acme")
	p := mustProject(t, svc, "acme", "Web", "")
	task := mustTask(t, svc, p.ID, "Ship", "")

	dev := member("dev@acme.test", "acme")

	wantFailure(t,
		svc.AddComment(dev, tracker.AddCommentInput{TaskID: task.ID, Content: "lgtm", AuthorEmail: "boss@acme.test"}),
		[]string{"authorEmail must match the authenticated caller"},
		[]string{"INVALID_FIELD"})

	res := svc.AddComment(dev, tracker.AddCommentInput{TaskID: task.ID, Content: "lgtm"})
	if !res.Success {
		t.Fatalf("AddComment: %v", res.Errors)
	}
	if res.Entity.AuthorEmail != "dev@acme.test" {
		t.Errorf("author = %q, want caller subject", res.Entity.AuthorEmail)
	}

	second := svc.AddComment(dev, tracker.AddCommentInput{TaskID: task.ID, Content: "shipped", AuthorEmail: "dev@acme.test"})
	if !second.Success {
		t.Fatalf("AddComment: %v", second.Errors)
	}

	comments, err := svc.ListComments(dev, "acme", task.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	got := []string{}
	for _, c := range comments {
		got = append(got, c.Content)
	}
	if diff := cmp.Diff([]string{"lgtm", "shipped"}, got); diff != "" {
		t.Errorf("comment order (-want +got):\n%s", diff)
	}
}

func TestDeleteCascades(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := newService(t, s, tenant.Strict)
	mustOrg(t, svc, "Acme", "acme")
	p := mustProject(t, svc, "acme", "Web", "")
	keep := mustTask(t, svc, p.ID, "Keep", "")
	drop := mustTask(t, svc, p.ID, "Drop", model.TaskStatusDone)

	deleted := svc.DeleteTask(adminCtx, tracker.DeleteTaskInput{ID: drop.ID, OrganizationSlug: "acme"})
	if !deleted.Success || deleted.Entity.ID != drop.ID {
		t.Fatalf("DeleteTask = %+v", deleted)
	}
	tasks, err := svc.ListTasks(adminCtx, "acme", p.ID, tracker.TaskQuery{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != keep.ID {
		t.Errorf("remaining tasks = %+v, want only %s", tasks, keep.ID)
	}

	gone := svc.DeleteProject(adminCtx, tracker.DeleteProjectInput{ID: p.ID, OrganizationSlug: "acme"})
	if !gone.Success {
		t.Fatalf("DeleteProject: %v", gone.Errors)
	}
	if _, err := s.GetTaskByID(context.Background(), keep.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("task survived project delete: %v", err)
	}

	again := svc.DeleteProject(adminCtx, tracker.DeleteProjectInput{ID: p.ID, OrganizationSlug: "acme"})
	wantFailure(t, again, []string{"Project not found"}, []string{"NOT_FOUND"})
}

func TestStatsCacheInvalidation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	s := testutil.NewTestStore(t)
	svc := newService(t, s, tenant.Strict, tracker.WithCache(cache.NewRedis(client, time.Minute)))
	org := mustOrg(t, svc, "Acme", "acme")
	p := mustProject(t, svc, "acme", "Web", "")
	key := "tracker:stats:" + org.ID

	first, err := svc.ProjectStats(adminCtx, "acme")
	if err != nil {
		t.Fatalf("ProjectStats: %v", err)
	}
	if first.TotalTasks != 0 {
		t.Fatalf("total tasks = %d, want 0", first.TotalTasks)
	}
	if !mr.Exists(key) {
		t.Fatal("stats were not cached")
	}

	task := mustTask(t, svc, p.ID, "Ship", "")
	if mr.Exists(key) {
		t.Error("CreateTask should invalidate cached stats")
	}

	second, err := svc.ProjectStats(adminCtx, "acme")
	if err != nil {
		t.Fatalf("ProjectStats: %v", err)
	}
	if second.TotalTasks != 1 {
		t.Errorf("total tasks after create = %d, want 1", second.TotalTasks)
	}

	res := svc.AddComment(adminCtx, tracker.AddCommentInput{TaskID: task.ID, Content: "hi", AuthorEmail: "root@tracker.test"})
	if !res.Success {
		t.Fatalf("AddComment: %v", res.Errors)
	}
	if !mr.Exists(key) {
		t.Error("AddComment must not invalidate cached stats")
	}

	done := svc.UpdateTask(adminCtx, tracker.UpdateTaskInput{ID: task.ID, Status: ptr(model.TaskStatusDone)})
	if !done.Success {
		t.Fatalf("UpdateTask: %v", done.Errors)
	}
	third, err := svc.ProjectStats(adminCtx, "acme")
	if err != nil {
		t.Fatalf("ProjectStats: %v", err)
	}
	if third.CompletedTasks != 1 || third.CompletionRate != 100 {
		t.Errorf("stats after completing task = %+v", third)
	}
}

// faultyStore fails or panics on selected operations.
type faultyStore struct {
	store.Store
	createProject func() error
	listProjects  error
}

func (f *faultyStore) CreateProject(ctx context.Context, p *model.Project) error {
	if f.createProject != nil {
		return f.createProject()
	}
	return f.Store.CreateProject(ctx, p)
}

func (f *faultyStore) ListProjects(ctx context.Context, filter store.ProjectFilter) ([]model.Project, error) {
	if f.listProjects != nil {
		return nil, f.listProjects
	}
	return f.Store.ListProjects(ctx, filter)
}

func TestPersistenceFaults(t *testing.T) {
	base := testutil.NewTestStore(t)
	testutil.MustCreateOrganization(t, base, "Acme")

	t.Run("store error", func(t *testing.T) {
		fs := &faultyStore{Store: base, createProject: func() error { return errors.New("disk I/O error") }}
		svc := newService(t, fs, tenant.Strict)
		wantFailure(t,
			svc.CreateProject(adminCtx, tracker.CreateProjectInput{OrganizationSlug: "acme", Name: "Web"}),
			[]string{"disk I/O error"},
			[]string{"PERSISTENCE_FAULT"})
	})

	t.Run("panic", func(t *testing.T) {
		fs := &faultyStore{Store: base, createProject: func() error { panic("boom") }}
		svc := newService(t, fs, tenant.Strict)
		wantFailure(t,
			svc.CreateProject(adminCtx, tracker.CreateProjectInput{OrganizationSlug: "acme", Name: "Web"}),
			[]string{"unexpected failure in createProject"},
			[]string{"UNEXPECTED"})
	})

	t.Run("read fault", func(t *testing.T) {
		fs := &faultyStore{Store: base, listProjects: errors.New("connection reset")}
		svc := newService(t, fs, tenant.Strict)
		if _, err := svc.ListProjects(adminCtx, "acme", tracker.ProjectQuery{}); err == nil {
			t.Error("expected read fault to be returned")
		}
	})
}

func TestFailureLogLevels(t *testing.T) {
	base := testutil.NewTestStore(t)
	testutil.MustCreateOrganization(t, base, "Acme")

	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.InfoLevel)

	denied := newService(t, base, tenant.Strict, tracker.WithLogger(log))
	wantFailure(t,
		denied.CreateOrganization(member("dev@acme.test", "acme"), tracker.CreateOrganizationInput{Name: "Globex"}),
		[]string{"Not authorized to create organizations"},
		[]string{"FORBIDDEN"})
	if buf.Len() != 0 {
		t.Errorf("denied creation logged above debug: %s", buf.String())
	}

	fs := &faultyStore{Store: base, createProject: func() error { return errors.New("disk I/O error") }}
	faulty := newService(t, fs, tenant.Strict, tracker.WithLogger(log))
	faulty.CreateProject(adminCtx, tracker.CreateProjectInput{OrganizationSlug: "acme", Name: "Web"})
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Errorf("persistence fault not logged at error level: %s", buf.String())
	}
}

func TestListFilters(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := newService(t, s, tenant.Strict)
	mustOrg(t, svc, "Acme", "acme")
	active := mustProject(t, svc, "acme", "Website", model.ProjectStatusActive)
	mustProject(t, svc, "acme", "Archive", model.ProjectStatusCompleted)

	for _, in := range []tracker.CreateTaskInput{
		{ProjectID: active.ID, Title: "Design", Status: model.TaskStatusTodo, AssigneeEmail: "ann@acme.test"},
		{ProjectID: active.ID, Title: "Build", Status: model.TaskStatusDone, AssigneeEmail: "bob@acme.test"},
		{ProjectID: active.ID, Title: "Ship", Status: model.TaskStatusTodo, AssigneeEmail: "bob@acme.test"},
	} {
		if res := svc.CreateTask(adminCtx, in); !res.Success {
			t.Fatalf("CreateTask(%q): %v", in.Title, res.Errors)
		}
	}

	projects, err := svc.ListProjects(adminCtx, "acme", tracker.ProjectQuery{Status: ptr(model.ProjectStatusCompleted)})
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "Archive" {
		t.Errorf("completed projects = %+v, want only Archive", projects)
	}

	tests := []struct {
		name string
		q    tracker.TaskQuery
		want []string
	}{
		{name: "no filter", q: tracker.TaskQuery{}, want: []string{"Ship", "Build", "Design"}},
		{name: "status", q: tracker.TaskQuery{Status: ptr(model.TaskStatusTodo)}, want: []string{"Ship", "Design"}},
		{name: "assignee", q: tracker.TaskQuery{AssigneeEmail: ptr("bob@acme.test")}, want: []string{"Ship", "Build"}},
		{name: "both", q: tracker.TaskQuery{Status: ptr(model.TaskStatusDone), AssigneeEmail: ptr("bob@acme.test")}, want: []string{"Build"}},
		{name: "no match", q: tracker.TaskQuery{AssigneeEmail: ptr("nobody@acme.test")}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := svc.ListTasks(adminCtx, "acme", active.ID, tt.q)
			if err != nil {
				t.Fatalf("ListTasks: %v", err)
			}
			var got []string
			for _, task := range tasks {
				got = append(got, task.Title)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("titles (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTraversalHidesForeignChildren(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := newService(t, s, tenant.Lenient)
	mustOrg(t, svc, "Acme", "acme")
	globex := mustOrg(t, svc, "Globex", "globex")
	secret := mustProject(t, svc, "globex", "Secret Plan", model.ProjectStatusActive)
	task := mustTask(t, svc, secret.ID, "Steal moon", model.TaskStatusTodo)
	testutil.MustCreateComment(t, s, task.ID, "classified", "boss@globex.test")

	intruder := member("dev@acme.test", "acme")

	projects, err := svc.ProjectsOf(intruder, globex)
	if err != nil || len(projects) != 0 {
		t.Errorf("ProjectsOf(globex) = (%+v, %v), want empty", projects, err)
	}
	tasks, err := svc.TasksOf(intruder, secret)
	if err != nil || len(tasks) != 0 {
		t.Errorf("TasksOf(globex project) = (%+v, %v), want empty", tasks, err)
	}
	comments, err := svc.CommentsOf(intruder, task)
	if err != nil || len(comments) != 0 {
		t.Errorf("CommentsOf(globex task) = (%+v, %v), want empty", comments, err)
	}

	if tasks, _ := svc.TasksOf(adminCtx, secret); len(tasks) != 1 {
		t.Errorf("admin TasksOf = %+v, want one task", tasks)
	}
	if comments, _ := svc.CommentsOf(adminCtx, task); len(comments) != 1 {
		t.Errorf("admin CommentsOf = %+v, want one comment", comments)
	}
}
