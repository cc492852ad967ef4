package update

import (
	"strings"

	"github.com/sandeepkv93/twodo/internal/model"
	"github.com/sandeepkv93/twodo/internal/store"
	"github.com/sandeepkv93/twodo/internal/views"
)

// groups are the non-empty due-date buckets of the current query.
func (m Model) groups() []model.BucketGroup {
	all := m.store.Buckets(m.Query, m.clock()).Groups()
	out := make([]model.BucketGroup, 0, len(all))
	for _, g := range all {
		if len(g.Tasks) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// visible flattens the groups in display order; Cursor indexes into it.
func (m Model) visible() []model.Task {
	var out []model.Task
	for _, g := range m.groups() {
		out = append(out, g.Tasks...)
	}
	return out
}

func (m Model) currentTask() (model.Task, bool) {
	tasks := m.visible()
	if m.Cursor < 0 || m.Cursor >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.Cursor], true
}

// syncSelection clamps the cursor and mirrors it into the store selection.
func (m *Model) syncSelection() {
	tasks := m.visible()
	if m.Cursor >= len(tasks) {
		m.Cursor = len(tasks) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if len(tasks) == 0 {
		m.store.ClearSelection()
		return
	}
	_ = m.store.Select(tasks[m.Cursor].ID)
}

// focusTask moves the cursor onto id when it is visible.
func (m *Model) focusTask(id string) {
	for i, task := range m.visible() {
		if task.ID == id {
			m.Cursor = i
			break
		}
	}
	m.syncSelection()
}

func (m *Model) moveCursor(delta int) {
	m.Cursor += delta
	m.syncSelection()
}

// cycleFilter steps through the named filters and then the categories.
func (m *Model) cycleFilter(delta int) {
	queries := m.sidebarQueries()
	idx := 0
	for i, q := range queries {
		if q.Filter == m.Query.Filter && q.Category == m.Query.Category {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(queries)) % len(queries)
	search := m.Query.Search
	m.Query = queries[idx]
	m.Query.Search = search
	m.Cursor = 0
	m.syncSelection()
}

func (m Model) sidebarQueries() []store.Query {
	out := make([]store.Query, 0, len(store.Filters))
	for _, f := range store.Filters {
		out = append(out, store.Query{Filter: f})
	}
	for _, c := range m.store.Categories() {
		out = append(out, store.Query{Filter: store.FilterCategory, Category: c.Key})
	}
	return out
}

func (m Model) sidebarData() views.SidebarData {
	counts := m.store.Counts()
	var data views.SidebarData
	for _, f := range store.Filters {
		data.Filters = append(data.Filters, views.SidebarItem{
			Label:  string(f),
			Count:  counts[string(f)],
			Active: m.Query.Filter == f,
		})
	}
	for _, c := range m.store.Categories() {
		data.Categories = append(data.Categories, views.SidebarItem{
			Label:  c.Label,
			Count:  counts[c.Key],
			Active: m.Query.Filter == store.FilterCategory && m.Query.Category == c.Key,
			Color:  c.Color,
		})
	}
	return data
}

func (m Model) listTitle() string {
	if m.Query.Filter == store.FilterCategory {
		if c, ok := m.store.Category(m.Query.Category); ok {
			return c.Label
		}
	}
	return m.Query.Label()
}

func (m Model) taskListData() views.TaskListData {
	now := m.clock()
	data := views.TaskListData{
		Title:  m.listTitle(),
		Search: m.Query.Search,
	}
	if sel, ok := m.currentTask(); ok {
		data.SelectedID = sel.ID
	}
	for _, g := range m.groups() {
		group := views.TaskGroupData{Label: g.Label}
		for _, task := range g.Tasks {
			row := views.TaskRowData{
				ID:        task.ID,
				Title:     task.Title,
				Done:      task.Completed(),
				Important: task.Metadata.IsImportant,
				Priority:  string(task.Priority.Level),
				Overdue:   g.Key == model.BucketOverdue,
				Repeats:   task.Temporal.Recurrence != nil,
			}
			if task.Temporal.DueDate != nil {
				row.Due = model.FormatStoredDate(*task.Temporal.DueDate, now, m.showTZ)
			}
			group.Tasks = append(group.Tasks, row)
		}
		data.Groups = append(data.Groups, group)
	}
	return data
}

func (m Model) detailsData() views.DetailsData {
	task, ok := m.currentTask()
	if !ok {
		return views.DetailsData{}
	}
	now := m.clock()
	format := func(v *string) string {
		if v == nil {
			return ""
		}
		return model.FormatStoredDate(*v, now, m.showTZ)
	}
	data := views.DetailsData{
		ID:          task.ID,
		Title:       task.Title,
		Status:      string(task.Status),
		Priority:    string(task.Priority.Level),
		Reasoning:   task.Priority.Reasoning,
		Due:         format(task.Temporal.DueDate),
		Start:       format(task.Temporal.StartDate),
		Reminder:    format(task.Temporal.Reminder),
		Tags:        task.Tags,
		Description: views.RenderMarkdown(task.Description),
	}
	if task.Temporal.Recurrence != nil {
		data.Repeat, data.NextRepeats = m.describeRecurrence(task, *task.Temporal.Recurrence)
	}
	for _, key := range taskCategories(task) {
		if c, ok := m.store.Category(key); ok {
			data.Categories = append(data.Categories, c.Label)
		}
	}
	return data
}

// describeRecurrence renders the rule and previews the next three
// occurrences, anchored on the due date when there is one.
func (m Model) describeRecurrence(task model.Task, encoded string) (string, []string) {
	rule, ok := model.DecodeRecurrence(encoded)
	if !ok {
		return encoded, nil
	}
	now := m.clock()
	anchor := now
	if due, ok := task.DueTime(m.loc); ok {
		anchor = due
	}
	next, err := model.PreviewRecurrence(rule, anchor, now, 3)
	if err != nil {
		return model.FormatRecurrence(rule), nil
	}
	out := make([]string, 0, len(next))
	for _, ts := range next {
		out = append(out, model.FormatTaskDate(ts, now, model.DateFormat{WithTime: ts.Hour() != 0 || ts.Minute() != 0}))
	}
	return model.FormatRecurrence(rule), out
}

func taskCategories(task model.Task) []string {
	var keys []string
	seen := map[string]bool{}
	if task.Metadata.Category != nil {
		keys = append(keys, *task.Metadata.Category)
		seen[*task.Metadata.Category] = true
	}
	for _, c := range task.Metadata.Categories {
		if !seen[c] {
			keys = append(keys, c)
			seen[c] = true
		}
	}
	return keys
}

func (m Model) notificationData() []views.NotificationData {
	list := m.center.List()
	out := make([]views.NotificationData, 0, len(list))
	now := m.clock()
	for _, n := range list {
		out = append(out, views.NotificationData{
			Message: strings.TrimSpace(n.Message),
			When:    model.FormatTaskDate(n.Timestamp, now, model.DateFormat{WithTime: true}),
			Unread:  !n.IsRead,
		})
	}
	return out
}
