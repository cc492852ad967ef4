package update

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/twodo/internal/client"
	"github.com/sandeepkv93/twodo/internal/client/clienttest"
	"github.com/sandeepkv93/twodo/internal/model"
	"github.com/sandeepkv93/twodo/internal/normalize"
	"github.com/sandeepkv93/twodo/internal/remote"
	"github.com/sandeepkv93/twodo/internal/scheduler"
	"github.com/sandeepkv93/twodo/internal/store"
)

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestStore() *store.Store {
	n := normalize.New(
		normalize.WithClock(func() time.Time { return testNow }),
		normalize.WithLocation(time.UTC),
	)
	seq := 0
	return store.New(n, store.WithIDGenerator(func() string {
		seq++
		return fmt.Sprintf("t%d", seq)
	}))
}

func newTestModel(t *testing.T, deps Deps) Model {
	t.Helper()
	if deps.Store == nil {
		deps.Store = newTestStore()
	}
	deps.Location = time.UTC
	deps.Now = func() time.Time { return testNow }
	if deps.DefaultFilter == "" {
		deps.DefaultFilter = "All"
	}
	return NewModel(deps)
}

func mustCreate(t *testing.T, st *store.Store, raw normalize.Raw) model.Task {
	t.Helper()
	task, err := st.Create(raw)
	if err != nil {
		t.Fatalf("create %q: %v", raw.Title, err)
	}
	return task
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// press feeds keys in order and returns the model with the last command.
func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

// drain runs cmd and every command it batches, collecting the messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// settle delivers the results of cmd back into the model, skipping spinner
// ticks.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range drain(cmd) {
		switch msg.(type) {
		case mutationMsg, quickAddMsg, categoryMsg, notificationsSyncedMsg:
			next, _ := m.Update(msg)
			m = next.(Model)
		}
	}
	return m
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel(Deps{Store: newTestStore()})
	if m.Mode != ModeBrowse {
		t.Fatalf("expected browse mode, got %q", m.Mode)
	}
	if m.Query.Filter != store.FilterToday {
		t.Fatalf("expected Today as the default list, got %q", m.Query.Filter)
	}
	if m.async {
		t.Fatal("local backend should not be async")
	}

	m = newTestModel(t, Deps{DefaultFilter: "important"})
	if m.Query.Filter != store.FilterImportant {
		t.Fatalf("expected Important, got %q", m.Query.Filter)
	}
}

func TestQuickAddWithKeyboard(t *testing.T) {
	st := newTestStore()
	m := newTestModel(t, Deps{Store: st})

	m, _ = press(t, m, "a")
	if m.Mode != ModeAdd {
		t.Fatalf("expected add mode, got %q", m.Mode)
	}
	m, _ = press(t, m, "buy milk", "enter")

	if m.Mode != ModeBrowse {
		t.Fatalf("expected browse mode after submit, got %q", m.Mode)
	}
	all := st.All()
	if len(all) != 1 || all[0].Title != "buy milk" {
		t.Fatalf("unexpected tasks: %+v", all)
	}
	if sel, ok := st.Selected(); !ok || sel.ID != all[0].ID {
		t.Fatalf("expected new task selected, got %+v %v", sel, ok)
	}
	if m.Status.Text != "added: buy milk" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

func TestQuickAddRejectsBlankTitle(t *testing.T) {
	st := newTestStore()
	m := newTestModel(t, Deps{Store: st})

	m, _ = press(t, m, "a", "   ", "enter")
	if !m.Status.IsError {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
	if st.Len() != 0 {
		t.Fatalf("expected no tasks, got %d", st.Len())
	}
}

func TestCursorNavigationUpdatesSelection(t *testing.T) {
	st := newTestStore()
	first := mustCreate(t, st, normalize.Raw{Title: "first"})
	second := mustCreate(t, st, normalize.Raw{Title: "second"})
	m := newTestModel(t, Deps{Store: st})

	if sel, _ := st.Selected(); sel.ID != first.ID {
		t.Fatalf("expected first selected, got %q", sel.ID)
	}
	m, _ = press(t, m, "j")
	if m.Cursor != 1 {
		t.Fatalf("expected cursor 1, got %d", m.Cursor)
	}
	if sel, _ := st.Selected(); sel.ID != second.ID {
		t.Fatalf("expected second selected, got %q", sel.ID)
	}
	m, _ = press(t, m, "j", "j")
	if m.Cursor != 1 {
		t.Fatalf("cursor should clamp at the end, got %d", m.Cursor)
	}
	m, _ = press(t, m, "k", "k")
	if m.Cursor != 0 {
		t.Fatalf("cursor should clamp at the start, got %d", m.Cursor)
	}
}

func TestTogglesAndDelete(t *testing.T) {
	st := newTestStore()
	task := mustCreate(t, st, normalize.Raw{Title: "water plants"})
	m := newTestModel(t, Deps{Store: st})

	m, _ = press(t, m, "space")
	got, _ := st.Get(task.ID)
	if !got.Completed() {
		t.Fatal("expected task completed")
	}
	if m.Status.Text != "completed: water plants" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}

	m, _ = press(t, m, "s")
	got, _ = st.Get(task.ID)
	if !got.Metadata.IsImportant {
		t.Fatal("expected task starred")
	}

	m, _ = press(t, m, "d")
	if st.Len() != 0 {
		t.Fatalf("expected task deleted, %d left", st.Len())
	}
	if _, ok := st.Selected(); ok {
		t.Fatal("selection should be cleared")
	}
	if m.Status.Text != "deleted: 1 task(s)" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

func TestCycleFilterWalksListsThenCategories(t *testing.T) {
	m := newTestModel(t, Deps{})

	m, _ = press(t, m, "tab")
	if m.Query.Filter != store.FilterActive {
		t.Fatalf("expected Active after All, got %q", m.Query.Filter)
	}
	m, _ = press(t, m, "tab")
	if m.Query.Filter != store.FilterCategory || m.Query.Category != "blue" {
		t.Fatalf("expected first category, got %+v", m.Query)
	}
	m, _ = press(t, m, "h", "h")
	if m.Query.Filter != store.FilterAll {
		t.Fatalf("expected All after stepping back, got %q", m.Query.Filter)
	}
}

func TestSearchFiltersAsYouType(t *testing.T) {
	st := newTestStore()
	mustCreate(t, st, normalize.Raw{Title: "buy milk"})
	mustCreate(t, st, normalize.Raw{Title: "call bank", Description: "about the MILK money"})
	mustCreate(t, st, normalize.Raw{Title: "gym"})
	m := newTestModel(t, Deps{Store: st})

	m, _ = press(t, m, "f", "milk")
	if m.Query.Search != "milk" {
		t.Fatalf("expected search text, got %q", m.Query.Search)
	}
	if got := len(m.visible()); got != 2 {
		t.Fatalf("expected 2 matches, got %d", got)
	}

	m, _ = press(t, m, "enter")
	if m.Mode != ModeBrowse || m.Query.Search != "milk" {
		t.Fatalf("enter should keep the search, got mode=%q search=%q", m.Mode, m.Query.Search)
	}
	m, _ = press(t, m, "esc")
	if m.Query.Search != "" || len(m.visible()) != 3 {
		t.Fatalf("esc should clear the search, got %q", m.Query.Search)
	}
}

func TestPaletteEditsSelectedTask(t *testing.T) {
	st := newTestStore()
	task := mustCreate(t, st, normalize.Raw{Title: "pay rent"})
	m := newTestModel(t, Deps{Store: st})

	run := func(cmd string) {
		t.Helper()
		m, _ = press(t, m, "/", cmd, "enter")
		if m.Status.IsError {
			t.Fatalf("%s: %s", cmd, m.Status.Text)
		}
	}

	run("due tomorrow")
	got, _ := st.Get(task.ID)
	due, ok := got.DueTime(time.UTC)
	if !ok || !due.Equal(time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected due date: %v %v", due, ok)
	}

	run("priority critical")
	run("tag #home")
	run("repeat weekly")
	got, _ = st.Get(task.ID)
	if got.Priority.Level != model.PriorityCritical {
		t.Fatalf("unexpected priority: %q", got.Priority.Level)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "home" {
		t.Fatalf("unexpected tags: %v", got.Tags)
	}
	if got.Temporal.Recurrence == nil || *got.Temporal.Recurrence != "Weekly" {
		t.Fatalf("unexpected recurrence: %v", got.Temporal.Recurrence)
	}

	run("category add Side Projects")
	run("category set side projects")
	got, _ = st.Get(task.ID)
	if !got.HasCategory("side-projects") {
		t.Fatalf("expected category, got %+v", got.Metadata)
	}

	run("repeat none")
	got, _ = st.Get(task.ID)
	if got.Temporal.Recurrence != nil {
		t.Fatalf("expected recurrence cleared, got %q", *got.Temporal.Recurrence)
	}
}

func TestPaletteViewCommands(t *testing.T) {
	st := newTestStore()
	mustCreate(t, st, normalize.Raw{Title: "buy milk"})
	m := newTestModel(t, Deps{Store: st})

	m, _ = press(t, m, "/", "filter Important", "enter")
	if m.Query.Filter != store.FilterImportant {
		t.Fatalf("expected Important filter, got %q", m.Query.Filter)
	}
	m, _ = press(t, m, "/", "search milk", "enter")
	if m.Query.Search != "milk" || m.Query.Filter != store.FilterImportant {
		t.Fatalf("search should keep the filter, got %+v", m.Query)
	}

	m, _ = press(t, m, "/", "filter nowhere", "enter")
	if !m.Status.IsError {
		t.Fatal("expected unknown filter error")
	}
	m, _ = press(t, m, "/", "launch rockets", "enter")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "unknown_command") {
		t.Fatalf("expected unknown command error, got %+v", m.Status)
	}
	m, _ = press(t, m, "/", "priority high", "enter")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "no task selected") {
		t.Fatalf("expected selection error on empty list, got %+v", m.Status)
	}
}

func TestPaletteRejectsPastDueDate(t *testing.T) {
	st := newTestStore()
	task := mustCreate(t, st, normalize.Raw{Title: "report"})
	m := newTestModel(t, Deps{Store: st})

	m, _ = press(t, m, "/", "due 2024-06-01", "enter")
	if !m.Status.IsError {
		t.Fatalf("expected validation failure, got %+v", m.Status)
	}
	if !errors.Is(m.LastError, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", m.LastError)
	}
	got, _ := st.Get(task.ID)
	if got.Temporal.DueDate != nil {
		t.Fatalf("due date should be unchanged, got %q", *got.Temporal.DueDate)
	}
}

func TestReminderRingsBell(t *testing.T) {
	st := newTestStore()
	open := mustCreate(t, st, normalize.Raw{Title: "stretch"})
	done := mustCreate(t, st, normalize.Raw{Title: "old", Status: "COMPLETED"})
	m := newTestModel(t, Deps{Store: st})

	next, _ := m.Update(ReminderDueMsg{Event: scheduler.ReminderEvent{TaskID: done.ID, Title: done.Title}})
	m = next.(Model)
	if m.center.Unread() != 0 {
		t.Fatal("completed task should not ring")
	}

	next, _ = m.Update(ReminderDueMsg{Event: scheduler.ReminderEvent{TaskID: open.ID, Title: open.Title}})
	m = next.(Model)
	if m.center.Unread() != 1 {
		t.Fatalf("expected one unread, got %d", m.center.Unread())
	}
	if m.Status.Text != "Reminder: stretch" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	if !strings.Contains(m.View(), "bell: 1 unread") {
		t.Fatal("expected bell count in header")
	}

	m, _ = press(t, m, "N")
	if m.center.Unread() != 0 {
		t.Fatal("expected all read")
	}
}

func TestMutationsScheduleReminders(t *testing.T) {
	st := newTestStore()
	task := mustCreate(t, st, normalize.Raw{Title: "dentist"})
	engine := scheduler.NewEngine(4)
	m := newTestModel(t, Deps{Store: st, Scheduler: engine})

	m, _ = press(t, m, "/", "remind 2030-01-02 08:00", "enter")
	if m.Status.IsError {
		t.Fatalf("remind failed: %s", m.Status.Text)
	}
	if engine.Pending() != 1 {
		t.Fatalf("expected one pending reminder, got %d", engine.Pending())
	}

	m, _ = press(t, m, "d")
	if engine.Pending() != 0 {
		t.Fatalf("delete should cancel the reminder, got %d pending", engine.Pending())
	}
	if _, err := st.Get(task.ID); err == nil {
		t.Fatal("task should be gone")
	}
}

func TestViewRendersSidebarBucketsAndDetails(t *testing.T) {
	st := newTestStore()
	mustCreate(t, st, normalize.Raw{
		Title:       "pay rent",
		Description: "transfer **today**",
		Temporal:    &normalize.RawTemporal{DueDate: normalize.Some("2024-06-10T15:00:00Z")},
	})
	mustCreate(t, st, normalize.Raw{
		Title:    "file taxes",
		Temporal: &normalize.RawTemporal{DueDate: normalize.Some("2024-06-01")},
	})
	mustCreate(t, st, normalize.Raw{Title: "someday"})
	m := newTestModel(t, Deps{Store: st})

	out := m.View()
	for _, want := range []string{
		"[local] All",
		"lists:",
		"All (3)",
		"Overdue (1)",
		"Due Today (1)",
		"Unscheduled (1)",
		"details:",
		"title: file taxes",
		"bell: -",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}

	m, _ = press(t, m, "j")
	out = m.View()
	if !strings.Contains(out, "title: pay rent") || !strings.Contains(out, "due: Today at 3 PM") {
		t.Fatalf("expected details of the second task:\n%s", out)
	}

	m, _ = press(t, m, "?")
	if !strings.Contains(m.View(), "help (browse)") {
		t.Fatal("expected help panel")
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m := newTestModel(t, Deps{})
	next, _ := m.Update(SetStatusMsg{Text: "ready"})
	m = next.(Model)
	if m.Status.Text != "ready" || m.Status.IsError {
		t.Fatalf("unexpected status: %+v", m.Status)
	}

	next, _ = m.Update(AppErrorMsg{Err: errors.New("boom")})
	m = next.(Model)
	if m.LastError == nil || !m.Status.IsError || m.Status.Text != "boom" {
		t.Fatalf("unexpected error state: %+v %v", m.Status, m.LastError)
	}

	next, _ = m.Update(ClearStatusMsg{})
	m = next.(Model)
	if m.Status.Text != "" {
		t.Fatalf("expected cleared status, got %+v", m.Status)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m := newTestModel(t, Deps{})
	m, cmd := press(t, m, "q")
	if !m.Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
}

type remoteHarness struct {
	srv   *clienttest.Server
	store *store.Store
	svc   *remote.Service
}

func newRemoteHarness(t *testing.T) remoteHarness {
	t.Helper()
	srv := clienttest.New(t)
	st := newTestStore()
	svc := remote.New(client.New(srv.URL, 2*time.Second), st)
	return remoteHarness{srv: srv, store: st, svc: svc}
}

func TestRemoteToggleWaitsForServer(t *testing.T) {
	h := newRemoteHarness(t)
	h.srv.Seed(t, `{"id":"r1","title":"ship release"}`)
	if _, err := h.svc.Pull(context.Background()); err != nil {
		t.Fatalf("pull: %v", err)
	}
	m := newTestModel(t, Deps{Store: h.store, Backend: h.svc, QuickAdd: h.svc})
	if !m.async {
		t.Fatal("remote backend should be async")
	}

	m, cmd := press(t, m, "space")
	if m.Pending != 1 {
		t.Fatalf("expected a pending request, got %d", m.Pending)
	}
	if got, _ := h.store.Get("r1"); got.Completed() {
		t.Fatal("store must not change before the server answers")
	}
	if !strings.Contains(m.View(), "pending") {
		t.Fatal("expected pending indicator")
	}

	m = settle(t, m, cmd)
	if m.Pending != 0 {
		t.Fatalf("expected no pending requests, got %d", m.Pending)
	}
	if got, _ := h.store.Get("r1"); !got.Completed() {
		t.Fatal("expected task completed after ack")
	}
}

func TestRemoteFailureLeavesStore(t *testing.T) {
	h := newRemoteHarness(t)
	h.srv.Seed(t, `{"id":"r1","title":"ship release"}`)
	if _, err := h.svc.Pull(context.Background()); err != nil {
		t.Fatalf("pull: %v", err)
	}
	m := newTestModel(t, Deps{Store: h.store, Backend: h.svc})
	h.srv.FailNext(1, http.StatusInternalServerError)

	m, cmd := press(t, m, "s")
	m = settle(t, m, cmd)
	if !m.Status.IsError {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
	if !errors.Is(m.LastError, model.ErrNetwork) {
		t.Fatalf("expected network error, got %v", m.LastError)
	}
	if got, _ := h.store.Get("r1"); got.Metadata.IsImportant {
		t.Fatal("store must be unchanged on failure")
	}
}

func TestRemoteQuickAddUsesParser(t *testing.T) {
	h := newRemoteHarness(t)
	m := newTestModel(t, Deps{Store: h.store, Backend: h.svc, QuickAdd: h.svc})

	m, cmd := press(t, m, "a", "book flights", "enter")
	m = settle(t, m, cmd)
	if m.Status.Text != "Created task: book flights" {
		t.Fatalf("expected parser feedback, got %+v", m.Status)
	}
	if h.store.Len() != 1 || h.srv.TaskCount() != 1 {
		t.Fatalf("expected one task on both sides, got %d/%d", h.store.Len(), h.srv.TaskCount())
	}
}

func TestStaleQuickAddIsIgnored(t *testing.T) {
	h := newRemoteHarness(t)
	m := newTestModel(t, Deps{Store: h.store, Backend: h.svc, QuickAdd: h.svc})
	m.addSeq = 2
	m.Pending = 2
	m.Status = StatusBar{Text: "parsing..."}

	next, _ := m.Update(quickAddMsg{Seq: 1, Feedback: "old answer", Task: model.Task{ID: "x", Title: "old"}})
	m = next.(Model)
	if m.Status.Text != "parsing..." {
		t.Fatalf("stale result should be dropped, got %+v", m.Status)
	}
	if m.Pending != 1 {
		t.Fatalf("expected one request still pending, got %d", m.Pending)
	}

	next, _ = m.Update(mutationMsg{Op: "update", Err: remote.ErrStale})
	m = next.(Model)
	if m.Status.IsError {
		t.Fatal("stale mutation should not surface as an error")
	}
}

func TestInitSyncsRemoteNotifications(t *testing.T) {
	h := newRemoteHarness(t)
	h.srv.SeedNotification(clienttest.Notification{ID: "n1", Message: "Server says hi", Timestamp: testNow})
	m := newTestModel(t, Deps{Store: h.store, Backend: h.svc, Notifications: h.svc, Center: h.svc.Notifications()})

	m = settle(t, m, m.Init())
	if m.center.Unread() != 1 {
		t.Fatalf("expected synced notification, got %d unread", m.center.Unread())
	}
	m, _ = press(t, m, "n")
	if !strings.Contains(m.View(), "Server says hi") {
		t.Fatal("expected notification in view")
	}
}

func TestRemoteCategoryRenameSurvivesPull(t *testing.T) {
	h := newRemoteHarness(t)
	h.srv.Seed(t, `{"id":"r1","title":"build shed","metadata":{"categories":["side-project"]}}`)
	if _, err := h.svc.Pull(context.Background()); err != nil {
		t.Fatalf("pull: %v", err)
	}
	if _, err := h.store.AddCategory("side project"); err != nil {
		t.Fatalf("add category: %v", err)
	}
	m := newTestModel(t, Deps{Store: h.store, Backend: h.svc, DefaultFilter: "side-project"})

	m, cmd := press(t, m, "/", "category rename side-project Hobby", "enter")
	if m.Pending != 1 {
		t.Fatalf("expected a pending request, got %d", m.Pending)
	}
	if _, ok := h.store.Category("side-project"); !ok {
		t.Fatal("store must not change before the server answers")
	}

	m = settle(t, m, cmd)
	if m.Status.IsError || m.Status.Text != "category renamed: Hobby" {
		t.Fatalf("unexpected status %+v", m.Status)
	}
	if m.Query.Category != "hobby" {
		t.Fatalf("expected filter to follow the rename, got %+v", m.Query)
	}

	if _, err := h.svc.Pull(context.Background()); err != nil {
		t.Fatalf("pull: %v", err)
	}
	got, _ := h.store.Get("r1")
	if !got.HasCategory("hobby") || got.HasCategory("side-project") {
		t.Fatalf("expected renamed category after pull, got %+v", got.Metadata)
	}
}

func TestRemoteEditParsesIntoSelectedTask(t *testing.T) {
	h := newRemoteHarness(t)
	h.srv.Seed(t, `{"id":"r1","title":"buy milk"}`)
	if _, err := h.svc.Pull(context.Background()); err != nil {
		t.Fatalf("pull: %v", err)
	}
	var (
		mu       sync.Mutex
		sessions []map[string]any
		inputs   []string
	)
	h.srv.OnParse(func(input string, session map[string]any) (int, any) {
		mu.Lock()
		defer mu.Unlock()
		sessions = append(sessions, session)
		inputs = append(inputs, input)
		return http.StatusOK, map[string]any{
			"success":  true,
			"task":     map[string]any{"title": "Buy oat milk", "priority": "High"},
			"feedback": map[string]any{"display": "Updated task"},
		}
	})
	m := newTestModel(t, Deps{Store: h.store, Backend: h.svc, QuickAdd: h.svc})

	m, cmd := press(t, m, "e", " tomorrow", "enter")
	if m.Pending != 1 {
		t.Fatalf("expected a pending parse, got %d", m.Pending)
	}
	m = settle(t, m, cmd)
	if m.Status.Text != "Updated task" {
		t.Fatalf("expected parser feedback, got %+v", m.Status)
	}
	got, _ := h.store.Get("r1")
	if got.Title != "Buy oat milk" || got.Priority.Level != model.PriorityHigh {
		t.Fatalf("expected parsed fields applied, got %q %q", got.Title, got.Priority.Level)
	}
	if h.srv.TaskCount() != 1 {
		t.Fatalf("edit must not create a task, server has %d", h.srv.TaskCount())
	}
	if rec, _ := h.srv.Task("r1"); string(rec["title"]) != `"Buy oat milk"` {
		t.Fatalf("server not updated: %s", rec["title"])
	}

	m, cmd = press(t, m, "e", "enter")
	_ = settle(t, m, cmd)

	mu.Lock()
	defer mu.Unlock()
	if len(sessions) != 2 {
		t.Fatalf("expected two parse calls, got %d", len(sessions))
	}
	if inputs[0] != "buy milk tomorrow" {
		t.Fatalf("expected the title to prefill the input, got %q", inputs[0])
	}
	if len(sessions[0]) != 0 {
		t.Fatalf("expected empty session on the first call, got %v", sessions[0])
	}
	if sessions[1]["lastTaskId"] != "r1" || sessions[1]["lastAction"] != "update" {
		t.Fatalf("expected session to name the edited task, got %v", sessions[1])
	}
}

func TestLocalEditRenamesSelectedTask(t *testing.T) {
	st := newTestStore()
	task := mustCreate(t, st, normalize.Raw{Title: "pay rent"})
	m := newTestModel(t, Deps{Store: st})

	m, _ = press(t, m, "e")
	if m.Mode != ModeAdd || m.addInput.Value() != "pay rent" {
		t.Fatalf("expected edit input with the title, got %q %q", m.Mode, m.addInput.Value())
	}
	m, _ = press(t, m, " today", "enter")
	got, _ := st.Get(task.ID)
	if got.Title != "pay rent today" {
		t.Fatalf("unexpected title %q", got.Title)
	}
	if st.Len() != 1 {
		t.Fatalf("edit must not create a task, have %d", st.Len())
	}
	if m.Status.Text != "edited: pay rent today" {
		t.Fatalf("unexpected status %+v", m.Status)
	}
}
