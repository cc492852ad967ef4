package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidStatus   = errors.New("model: invalid task status")
	ErrInvalidPriority = errors.New("model: invalid task priority")
)

type Status string

const (
	StatusTodo      Status = "TODO"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusCompleted:
		return true
	default:
		return false
	}
}

type PriorityLevel string

const (
	PriorityLow         PriorityLevel = "Low"
	PriorityMedium      PriorityLevel = "Medium"
	PriorityHigh        PriorityLevel = "High"
	PriorityCritical    PriorityLevel = "Critical"
	PriorityUnspecified PriorityLevel = "Unspecified"
)

var PriorityLevels = []PriorityLevel{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical, PriorityUnspecified}

func (p PriorityLevel) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical, PriorityUnspecified:
		return true
	default:
		return false
	}
}

// Elevated reports whether the level implies the task is important.
func (p PriorityLevel) Elevated() bool {
	return p == PriorityHigh || p == PriorityCritical
}

// ParsePriorityLevel matches a level name case-insensitively.
func ParsePriorityLevel(s string) (PriorityLevel, bool) {
	s = strings.TrimSpace(s)
	for _, level := range PriorityLevels {
		if strings.EqualFold(s, string(level)) {
			return level, true
		}
	}
	return "", false
}

type Priority struct {
	Level     PriorityLevel `json:"level"`
	Reasoning string        `json:"reasoning"`
}

// Temporal values are ISO-8601 strings so that a value this client cannot
// parse still survives a load and save.
type Temporal struct {
	DueDate    *string `json:"due_date"`
	StartDate  *string `json:"start_date"`
	Reminder   *string `json:"reminder"`
	Recurrence *string `json:"recurrence"`
}

type Metadata struct {
	IsImportant bool     `json:"isImportant"`
	IsToday     bool     `json:"isToday"`
	Category    *string  `json:"category"`
	Categories  []string `json:"categories"`
}

type Task struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Priority     Priority  `json:"priority"`
	Temporal     Temporal  `json:"temporal"`
	Status       Status    `json:"status"`
	Tags         []string  `json:"tags"`
	Dependencies []string  `json:"dependencies"`
	Metadata     Metadata  `json:"metadata"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// HasCategory reports whether key is the task's primary category or one of
// its category tags.
func (t Task) HasCategory(key string) bool {
	if t.Metadata.Category != nil && *t.Metadata.Category == key {
		return true
	}
	for _, c := range t.Metadata.Categories {
		if c == key {
			return true
		}
	}
	return false
}

// DueTime parses the due date in loc. ok is false when no due date is set or
// the stored value is not a recognized timestamp.
func (t Task) DueTime(loc *time.Location) (time.Time, bool) {
	return parseOptional(t.Temporal.DueDate, loc)
}

func (t Task) ReminderTime(loc *time.Location) (time.Time, bool) {
	return parseOptional(t.Temporal.Reminder, loc)
}

func parseOptional(v *string, loc *time.Location) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}
	ts, _, err := ParseTimestamp(*v, loc)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// Clone returns a deep copy; tasks handed out by the store never share
// pointers or slices with its internal state.
func (t Task) Clone() Task {
	out := t
	out.Temporal = Temporal{
		DueDate:    cloneString(t.Temporal.DueDate),
		StartDate:  cloneString(t.Temporal.StartDate),
		Reminder:   cloneString(t.Temporal.Reminder),
		Recurrence: cloneString(t.Temporal.Recurrence),
	}
	out.Metadata.Category = cloneString(t.Metadata.Category)
	out.Metadata.Categories = cloneStrings(t.Metadata.Categories)
	out.Tags = cloneStrings(t.Tags)
	out.Dependencies = cloneStrings(t.Dependencies)
	return out
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if !t.Priority.Level.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority.Level)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return errors.New("model: task updated_at precedes created_at")
	}
	return nil
}

func StringPtr(s string) *string {
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
