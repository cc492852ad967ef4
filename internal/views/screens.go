package views

import (
	"fmt"
	"strings"
)

type SidebarItem struct {
	Label  string
	Count  int
	Active bool
	// category color, empty for the named filters
	Color string
}

type SidebarData struct {
	Filters    []SidebarItem
	Categories []SidebarItem
}

type TaskRowData struct {
	ID        string
	Title     string
	Done      bool
	Important bool
	Priority  string
	Due       string
	Overdue   bool
	Repeats   bool
}

type TaskGroupData struct {
	Label string
	Tasks []TaskRowData
}

type TaskListData struct {
	Title      string
	Search     string
	Groups     []TaskGroupData
	SelectedID string
	InputView  string
	Pending    string
}

type DetailsData struct {
	ID          string
	Title       string
	Status      string
	Priority    string
	Reasoning   string
	Due         string
	Start       string
	Reminder    string
	Repeat      string
	NextRepeats []string
	Categories  []string
	Tags        []string
	Description string
}

type NotificationData struct {
	Message string
	When    string
	Unread  bool
}

type HelpPanelData struct {
	Mode     string
	Bindings []string
	HelpView string
}

func RenderSidebar(data SidebarData) string {
	var b strings.Builder
	b.WriteString("lists:\n")
	for _, item := range data.Filters {
		b.WriteString(sidebarLine(item))
	}
	if len(data.Categories) > 0 {
		b.WriteString("\ncategories:\n")
		for _, item := range data.Categories {
			b.WriteString(sidebarLine(item))
		}
	}
	return strings.TrimSpace(b.String())
}

func sidebarLine(item SidebarItem) string {
	cursor := " "
	if item.Active {
		cursor = ">"
	}
	return fmt.Sprintf("%s %s (%d)\n", cursor, item.Label, item.Count)
}

func RenderTaskList(data TaskListData) string {
	var b strings.Builder
	b.WriteString(data.Title + ":")
	if data.Search != "" {
		b.WriteString(fmt.Sprintf(" search=%q", data.Search))
	}
	b.WriteString("\n")
	if data.InputView != "" {
		b.WriteString(data.InputView + "\n")
	}
	if data.Pending != "" {
		b.WriteString(data.Pending + "\n")
	}

	empty := true
	for _, g := range data.Groups {
		if len(g.Tasks) == 0 {
			continue
		}
		empty = false
		b.WriteString("\n" + bucketStyle.Render(fmt.Sprintf("%s (%d)", g.Label, len(g.Tasks))) + "\n")
		for _, row := range g.Tasks {
			b.WriteString(renderTaskRow(row, row.ID == data.SelectedID) + "\n")
		}
	}
	if empty {
		b.WriteString("\n(no tasks)")
	}
	return strings.TrimSpace(b.String())
}

func renderTaskRow(row TaskRowData, selected bool) string {
	cursor := " "
	if selected {
		cursor = ">"
	}
	check := "[ ]"
	if row.Done {
		check = "[x]"
	}
	title := row.Title
	if row.Done {
		title = doneStyle.Render(title)
	}
	line := fmt.Sprintf("%s %s %s %s", cursor, check, priorityBadge(row.Priority), title)
	if row.Important {
		line += " *"
	}
	if row.Due != "" {
		due := "due:" + row.Due
		if row.Overdue && !row.Done {
			due = overdueStyle.Render(due)
		}
		line += " " + due
	}
	if row.Repeats {
		line += " (repeats)"
	}
	return line
}

func priorityBadge(level string) string {
	switch strings.ToUpper(level) {
	case "CRITICAL":
		return "[!!]"
	case "HIGH":
		return "[! ]"
	case "LOW":
		return "[. ]"
	default:
		return "[  ]"
	}
}

func RenderDetails(data DetailsData) string {
	if strings.TrimSpace(data.ID) == "" {
		return "details:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString(fmt.Sprintf("title: %s\n", data.Title))
	b.WriteString(fmt.Sprintf("status: %s\n", data.Status))
	b.WriteString(fmt.Sprintf("priority: %s\n", data.Priority))
	if data.Reasoning != "" {
		b.WriteString(fmt.Sprintf("why: %s\n", data.Reasoning))
	}
	writeOptional(&b, "due", data.Due)
	writeOptional(&b, "start", data.Start)
	writeOptional(&b, "reminder", data.Reminder)
	if data.Repeat != "" {
		b.WriteString("repeat: " + strings.ReplaceAll(data.Repeat, "\n", ", ") + "\n")
		for _, next := range data.NextRepeats {
			b.WriteString("  next: " + next + "\n")
		}
	}
	if len(data.Categories) > 0 {
		b.WriteString("categories: " + strings.Join(data.Categories, ", ") + "\n")
	}
	if len(data.Tags) > 0 {
		b.WriteString("tags: #" + strings.Join(data.Tags, " #") + "\n")
	}
	if data.Description != "" {
		b.WriteString("\n" + data.Description)
	}
	return strings.TrimSpace(b.String())
}

func writeOptional(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(fmt.Sprintf("%s: %s\n", label, value))
}

func RenderBell(unread int) string {
	if unread <= 0 {
		return "bell: -"
	}
	return fmt.Sprintf("bell: %d unread", unread)
}

func RenderNotifications(items []NotificationData) string {
	if len(items) == 0 {
		return "notifications: (none)"
	}
	var b strings.Builder
	b.WriteString("notifications:\n")
	for _, n := range items {
		mark := " "
		if n.Unread {
			mark = "*"
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", mark, n.When, n.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help (%s):\n%s\n%s",
		strings.ToLower(data.Mode),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
