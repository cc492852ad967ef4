package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/twodo/internal/scheduler"
)

func waitForReminderCmd(ch <-chan scheduler.ReminderEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Event: ev}
	}
}

type reminderData struct {
	TaskID string `json:"taskId"`
}

// onReminder rings the bell. Reminders for tasks deleted or completed since
// scheduling are dropped.
func (m *Model) onReminder(ev scheduler.ReminderEvent) {
	task, err := m.store.Get(ev.TaskID)
	if err != nil || task.Completed() {
		m.logger.Debug("reminder dropped", "task_id", ev.TaskID)
		return
	}
	m.center.Push(ev.Message(), reminderData{TaskID: ev.TaskID})
	m.Status = StatusBar{Text: ev.Message()}
}

// ScheduleAll queues reminders for every stored task. It returns how many are
// pending.
func (m Model) ScheduleAll() int {
	if m.scheduler == nil {
		return 0
	}
	return m.scheduler.SyncTasks(m.store.All(), m.loc)
}
