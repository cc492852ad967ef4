package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/twodo/internal/client/clienttest"
	"github.com/sandeepkv93/twodo/internal/model"
)

// isolate points every config and data path into a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("TWODO_MODE", "local")
	t.Setenv("TWODO_STORAGE_PATH", filepath.Join(dir, "tasks.db"))
	t.Setenv("TWODO_LOG_FILE", filepath.Join(dir, "twodo.log"))
	t.Setenv("TWODO_UI_TIMEZONE", "UTC")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "twodo %v", args)
	return out
}

func listJSON(t *testing.T, filter string) []model.Task {
	t.Helper()
	var tasks []model.Task
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "list", "--filter", filter, "--json")), &tasks))
	return tasks
}

func TestLocalTaskLifecycle(t *testing.T) {
	isolate(t)

	out := mustRun(t, "add", "buy", "milk", "--priority", "high", "--tag", "#home", "--important")
	assert.Contains(t, out, "buy milk")
	assert.Contains(t, out, "high")
	assert.Contains(t, out, "#home")

	tasks := listJSON(t, "All")
	require.Len(t, tasks, 1)
	task := tasks[0]
	assert.Equal(t, model.PriorityHigh, task.Priority.Level)
	assert.True(t, task.Metadata.IsImportant)
	assert.Equal(t, []string{"home"}, task.Tags)

	out = mustRun(t, "done", task.ID[:8])
	assert.Contains(t, out, "[x]")
	require.Len(t, listJSON(t, "Completed"), 1)

	out = mustRun(t, "rm", task.ID)
	assert.Contains(t, out, "deleted 1 task(s)")
	assert.Contains(t, mustRun(t, "list", "--filter", "All"), "All: no tasks")
}

func TestAddWithDatesAndRepeat(t *testing.T) {
	isolate(t)

	mustRun(t, "add", "standup", "--due", "2030-01-02 09:30", "--remind", "2030-01-02 09:00", "--repeat", "weekly")
	tasks := listJSON(t, "Planned")
	require.Len(t, tasks, 1)
	temporal := tasks[0].Temporal
	require.NotNil(t, temporal.DueDate)
	require.NotNil(t, temporal.Reminder)
	require.NotNil(t, temporal.Recurrence)
	assert.Equal(t, "2030-01-02T09:30:00Z", *temporal.DueDate)
	assert.Equal(t, "Weekly", *temporal.Recurrence)
}

func TestAddRejectsBadFlags(t *testing.T) {
	isolate(t)

	_, err := run(t, "add", "x", "--category", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")

	_, err = run(t, "add", "x", "--priority", "urgent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown priority")

	_, err = run(t, "add", "x", "--parse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote mode")

	assert.Empty(t, listJSON(t, "All"))
}

func TestResolveTaskByPrefix(t *testing.T) {
	isolate(t)
	mustRun(t, "add", "one")
	mustRun(t, "add", "two")

	_, err := run(t, "star", "zzzz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no task matches")
}

func TestCategoryCommands(t *testing.T) {
	isolate(t)

	out := mustRun(t, "categories", "add", "Side", "Projects")
	assert.Contains(t, out, "added Side Projects (side-projects)")
	assert.Contains(t, mustRun(t, "categories"), "side-projects")

	mustRun(t, "add", "ship it", "--category", "side-projects")
	out = mustRun(t, "categories", "rename", "side-projects", "Hobby")
	assert.Contains(t, out, "renamed side-projects to Hobby (hobby)")

	tasks := listJSON(t, "hobby")
	require.Len(t, tasks, 1)
	assert.Equal(t, "ship it", tasks[0].Title)

	_, err := run(t, "categories", "rm", "blue")
	require.Error(t, err, "builtin categories cannot be deleted")

	assert.Contains(t, mustRun(t, "categories", "rm", "hobby"), "deleted hobby")
	assert.NotContains(t, mustRun(t, "categories"), "hobby")
}

func TestConfigCommands(t *testing.T) {
	dir := isolate(t)
	global := filepath.Join(dir, ".twodo", "config.yaml")

	assert.Contains(t, mustRun(t, "config", "init"), "wrote "+global)
	_, err := run(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	mustRun(t, "config", "init", "--force")

	out := mustRun(t, "config", "show")
	assert.Contains(t, out, "mode: local")
	assert.Contains(t, out, "tasks.db")

	out = mustRun(t, "config", "path")
	assert.Contains(t, out, global+" (found)")
	assert.Contains(t, out, "project")
}

func TestModeFlagIsValidated(t *testing.T) {
	isolate(t)
	_, err := run(t, "--mode", "cloud", "list")
	require.Error(t, err)
}

func TestRemoteModeGoesThroughServer(t *testing.T) {
	isolate(t)
	srv := clienttest.New(t)
	srv.Seed(t, `{"id":"a1","title":"from server"}`)
	srv.SeedNotification(clienttest.Notification{ID: "n1", Message: "Reminder: from server", Timestamp: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)})

	t.Setenv("TWODO_MODE", "remote")
	t.Setenv("TWODO_API_BASE_URL", srv.URL)
	t.Setenv("TWODO_API_TIMEOUT", "2s")
	t.Setenv("TWODO_TELEMETRY_ENABLED", "false")

	assert.Contains(t, mustRun(t, "list", "--filter", "All"), "from server")

	mustRun(t, "star", "a1")
	rec, ok := srv.Task("a1")
	require.True(t, ok)
	assert.Contains(t, string(rec["metadata"]), `"isImportant":true`)

	mustRun(t, "add", "new one")
	assert.Equal(t, 2, srv.TaskCount())

	out := mustRun(t, "notifications")
	assert.Contains(t, out, "1 unread")
	assert.Contains(t, out, "Reminder: from server")

	assert.Contains(t, mustRun(t, "notifications", "--clear"), "notifications cleared")
	assert.Empty(t, srv.Notifications())
}

func TestRemoteCategoryRenameReachesServer(t *testing.T) {
	isolate(t)
	srv := clienttest.New(t)
	srv.Seed(t, `{"id":"a1","title":"build shed","metadata":{"category":"side-project"}}`)

	t.Setenv("TWODO_MODE", "remote")
	t.Setenv("TWODO_API_BASE_URL", srv.URL)
	t.Setenv("TWODO_TELEMETRY_ENABLED", "false")

	mustRun(t, "categories", "add", "side", "project")
	assert.Contains(t, mustRun(t, "categories", "rename", "side-project", "Hobby"), "renamed side-project to Hobby (hobby)")

	rec, ok := srv.Task("a1")
	require.True(t, ok)
	assert.Contains(t, string(rec["metadata"]), `"category":"hobby"`)
	assert.Contains(t, mustRun(t, "list", "--filter", "hobby"), "build shed")

	assert.Contains(t, mustRun(t, "categories", "rm", "hobby"), "deleted hobby")
	rec, _ = srv.Task("a1")
	assert.Contains(t, string(rec["metadata"]), `"category":null`)
}

func TestRemoteModeReportsUnreachableServer(t *testing.T) {
	isolate(t)
	srv := clienttest.New(t)
	srv.FailNext(1, 503)

	t.Setenv("TWODO_MODE", "remote")
	t.Setenv("TWODO_API_BASE_URL", srv.URL)
	t.Setenv("TWODO_TELEMETRY_ENABLED", "false")

	_, err := run(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load tasks from")
}
