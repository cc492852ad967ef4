package model

import (
	"errors"
	"strings"
	"time"
)

// Reminder is the scheduling view of a task's temporal.reminder.
type Reminder struct {
	TaskID      string
	Title       string
	TriggerTime time.Time
}

func (r Reminder) Validate() error {
	if strings.TrimSpace(r.TaskID) == "" {
		return errors.New("model: reminder task_id is required")
	}
	if r.TriggerTime.IsZero() {
		return errors.New("model: reminder trigger_time is required")
	}
	return nil
}

// ReminderFor extracts a pending reminder. Completed tasks and tasks without a
// parseable reminder have none.
func ReminderFor(task Task, loc *time.Location) (Reminder, bool) {
	if task.Completed() {
		return Reminder{}, false
	}
	at, ok := task.ReminderTime(loc)
	if !ok {
		return Reminder{}, false
	}
	return Reminder{TaskID: task.ID, Title: task.Title, TriggerTime: at}, true
}
