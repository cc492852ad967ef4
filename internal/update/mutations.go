package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/twodo/internal/model"
	"github.com/sandeepkv93/twodo/internal/normalize"
	"github.com/sandeepkv93/twodo/internal/remote"
	"github.com/sandeepkv93/twodo/internal/store"
)

// run applies a backend call. Local backends complete inline; remote ones run
// as a command while the spinner shows.
func (m Model) run(op string, fn func(context.Context) mutationMsg) (Model, tea.Cmd) {
	timeout := m.timeout
	cmd := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		msg := fn(ctx)
		msg.Op = op
		return msg
	}
	if !m.async {
		return m.applyMutation(cmd().(mutationMsg))
	}
	m.Pending++
	m.Status = StatusBar{Text: op + " pending"}
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) applyMutation(msg mutationMsg) (Model, tea.Cmd) {
	if m.async && m.Pending > 0 {
		m.Pending--
	}
	if errors.Is(msg.Err, remote.ErrStale) {
		m.logger.Debug("stale response dropped", "op", msg.Op)
		return m, nil
	}
	if msg.Err != nil {
		m.LastError = msg.Err
		m.Status = StatusBar{Text: fmt.Sprintf("%s failed: %v", msg.Op, msg.Err), IsError: true}
		m.logger.Warn("mutation failed", "op", msg.Op, "error", msg.Err)
		return m, nil
	}

	for _, id := range msg.Removed {
		if m.scheduler != nil {
			m.scheduler.Cancel(id)
		}
	}
	if msg.Task.ID != "" {
		m.scheduleReminder(msg.Task)
		m.focusTask(msg.Task.ID)
		m.Status = StatusBar{Text: fmt.Sprintf("%s: %s", msg.Op, msg.Task.Title)}
	} else {
		m.syncSelection()
		m.Status = StatusBar{Text: fmt.Sprintf("%s: %d task(s)", msg.Op, len(msg.Removed))}
	}
	return m, nil
}

func (m *Model) scheduleReminder(task model.Task) {
	if m.scheduler == nil {
		return
	}
	if _, err := m.scheduler.ScheduleTask(task, m.loc); err != nil {
		m.logger.Warn("reminder not scheduled", "task_id", task.ID, "error", err)
	}
}

func (m Model) updateSelected(op string, patch normalize.Patch) (Model, tea.Cmd) {
	task, ok := m.currentTask()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return m, nil
	}
	backend, id := m.backend, task.ID
	return m.run(op, func(ctx context.Context) mutationMsg {
		updated, err := backend.Update(ctx, id, patch)
		return mutationMsg{Task: updated, Err: err}
	})
}

func (m Model) toggleComplete() (Model, tea.Cmd) {
	task, ok := m.currentTask()
	if !ok {
		return m, nil
	}
	op := "completed"
	if task.Completed() {
		op = "reopened"
	}
	backend, id := m.backend, task.ID
	return m.run(op, func(ctx context.Context) mutationMsg {
		updated, err := backend.ToggleComplete(ctx, id)
		return mutationMsg{Task: updated, Err: err}
	})
}

func (m Model) toggleImportant() (Model, tea.Cmd) {
	task, ok := m.currentTask()
	if !ok {
		return m, nil
	}
	backend, id := m.backend, task.ID
	return m.run("starred", func(ctx context.Context) mutationMsg {
		updated, err := backend.ToggleImportant(ctx, id)
		return mutationMsg{Task: updated, Err: err}
	})
}

func (m Model) deleteSelected() (Model, tea.Cmd) {
	task, ok := m.currentTask()
	if !ok {
		return m, nil
	}
	backend, id := m.backend, task.ID
	return m.run("deleted", func(ctx context.Context) mutationMsg {
		n, err := backend.Delete(ctx, id)
		if n == 0 {
			return mutationMsg{Err: err}
		}
		return mutationMsg{Removed: []string{id}, Err: err}
	})
}

// submitAdd creates a task from free text, or edits task id when id is set.
// With a server-side parser the text is interpreted remotely and only the
// newest request's result is shown.
func (m Model) submitAdd(id, input string) (Model, tea.Cmd) {
	input = strings.TrimSpace(input)
	if input == "" {
		m.Status = StatusBar{Text: "title is required", IsError: true}
		return m, nil
	}
	if m.quickAdd == nil {
		backend := m.backend
		if id != "" {
			return m.run("edited", func(ctx context.Context) mutationMsg {
				task, err := backend.Update(ctx, id, normalize.Patch{Title: &input})
				return mutationMsg{Task: task, Err: err}
			})
		}
		return m.run("added", func(ctx context.Context) mutationMsg {
			task, err := backend.Create(ctx, normalize.Raw{Title: input})
			return mutationMsg{Task: task, Err: err}
		})
	}

	op := "added"
	if id != "" {
		op = "updated"
	}
	m.addSeq++
	seq, adder, timeout := m.addSeq, m.quickAdd, m.timeout
	m.Pending++
	m.Status = StatusBar{Text: "parsing..."}
	return m, tea.Batch(func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		var (
			task model.Task
			res  remote.ParseResult
			err  error
		)
		if id == "" {
			task, res, err = adder.QuickAdd(ctx, input)
		} else {
			task, res, err = adder.ParseInto(ctx, id, input)
		}
		return quickAddMsg{Seq: seq, Op: op, Task: task, Feedback: res.Feedback.Display, Err: err}
	}, m.spinner.Tick)
}

func (m Model) applyQuickAdd(msg quickAddMsg) (Model, tea.Cmd) {
	if m.Pending > 0 {
		m.Pending--
	}
	if msg.Seq != m.addSeq || errors.Is(msg.Err, remote.ErrStale) {
		return m, nil
	}
	if msg.Op == "" {
		msg.Op = "added"
	}
	if msg.Err != nil {
		m.LastError = msg.Err
		text := msg.Feedback
		if text == "" {
			text = msg.Err.Error()
		}
		verb := "add"
		if msg.Op == "updated" {
			verb = "update"
		}
		m.Status = StatusBar{Text: verb + " failed: " + text, IsError: true}
		return m, nil
	}
	m.scheduleReminder(msg.Task)
	m.focusTask(msg.Task.ID)
	text := msg.Feedback
	if text == "" {
		text = msg.Op + ": " + msg.Task.Title
	}
	m.Status = StatusBar{Text: text}
	return m, nil
}

// runCategory renames or deletes a category through the backend. The list
// filter follows the change once it lands.
func (m Model) runCategory(op, from string, fn func(context.Context) categoryMsg) (Model, tea.Cmd) {
	timeout := m.timeout
	cmd := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		msg := fn(ctx)
		msg.Op, msg.From = op, from
		return msg
	}
	if !m.async {
		return m.applyCategoryChange(cmd().(categoryMsg))
	}
	m.Pending++
	m.Status = StatusBar{Text: "category " + op + " pending"}
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) applyCategoryChange(msg categoryMsg) (Model, tea.Cmd) {
	if m.async && m.Pending > 0 {
		m.Pending--
	}
	if msg.Err != nil {
		m.LastError = msg.Err
		m.Status = StatusBar{Text: fmt.Sprintf("category %s failed: %v", msg.Op, msg.Err), IsError: true}
		m.logger.Warn("category change failed", "op", msg.Op, "key", msg.From, "error", msg.Err)
		return m, nil
	}
	onFilter := m.Query.Filter == store.FilterCategory && m.Query.Category == msg.From
	switch msg.Op {
	case "rename":
		if onFilter {
			m.Query.Category = msg.Category.Key
		}
		m.Status = StatusBar{Text: "category renamed: " + msg.Category.Label}
	case "delete":
		if onFilter {
			m.Query = store.Query{Filter: store.FilterAll, Search: m.Query.Search}
		}
		m.Status = StatusBar{Text: "category deleted: " + msg.From}
	}
	m.syncSelection()
	return m, nil
}

func syncNotificationsCmd(s NotificationSyncer, timeout time.Duration) tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		unread, err := s.SyncNotifications(ctx)
		return notificationsSyncedMsg{Unread: unread, Err: err}
	}
}
