package update

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/twodo/internal/views"
)

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.scheduler != nil {
		cmds = append(cmds, waitForReminderCmd(m.scheduler.C()))
	}
	if m.syncer != nil {
		cmds = append(cmds, syncNotificationsCmd(m.syncer, m.timeout))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.Mode {
		case ModePalette:
			return m.handlePaletteKey(typed)
		case ModeAdd:
			return m.handleAddKey(typed)
		case ModeSearch:
			return m.handleSearchKey(typed)
		}
		return m.handleBrowseKey(typed)
	case tea.WindowSizeMsg:
		m.width = typed.Width
		return m, nil
	case spinner.TickMsg:
		if m.Pending > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(typed)
			return m, cmd
		}
		return m, nil
	case mutationMsg:
		return m.applyMutation(typed)
	case quickAddMsg:
		return m.applyQuickAdd(typed)
	case categoryMsg:
		return m.applyCategoryChange(typed)
	case notificationsSyncedMsg:
		if typed.Err != nil {
			m.logger.Warn("notification sync failed", "error", typed.Err)
			m.Status = StatusBar{Text: "notifications unavailable: " + typed.Err.Error(), IsError: true}
		}
		return m, nil
	case ReminderDueMsg:
		m.onReminder(typed.Event)
		if m.scheduler != nil {
			return m, waitForReminderCmd(m.scheduler.C())
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.Quitting = true
		return m, tea.Quit
	case "?":
		m.HelpVisible = !m.HelpVisible
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "tab", "l":
		m.cycleFilter(1)
	case "shift+tab", "h":
		m.cycleFilter(-1)
	case "a":
		m.Mode = ModeAdd
		m.editID = ""
		m.addInput.Prompt = "add> "
		m.addInput.SetValue("")
		m.addInput.Focus()
	case "e":
		task, ok := m.currentTask()
		if !ok {
			return m, nil
		}
		m.Mode = ModeAdd
		m.editID = task.ID
		m.addInput.Prompt = "edit> "
		m.addInput.SetValue(task.Title)
		m.addInput.CursorEnd()
		m.addInput.Focus()
	case "f":
		m.Mode = ModeSearch
		m.searchInput.SetValue(m.Query.Search)
		m.searchInput.Focus()
	case "/", ":":
		m.Mode = ModePalette
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
	case "esc":
		if m.Query.Search != "" {
			m.Query.Search = ""
			m.syncSelection()
			m.Status = StatusBar{Text: "search cleared"}
		}
	case " ", "x":
		return m.toggleComplete()
	case "s":
		return m.toggleImportant()
	case "d":
		return m.deleteSelected()
	case "n":
		m.ShowNotifications = !m.ShowNotifications
	case "N":
		m.center.MarkAllRead()
		m.Status = StatusBar{Text: "notifications marked read"}
	}
	return m, nil
}

func (m Model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Mode = ModeBrowse
		m.editID = ""
		m.addInput.Blur()
		return m, nil
	case "enter":
		text, id := m.addInput.Value(), m.editID
		m.Mode = ModeBrowse
		m.editID = ""
		m.addInput.SetValue("")
		m.addInput.Blur()
		return m.submitAdd(id, text)
	}
	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

// handleSearchKey filters live as the user types.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Mode = ModeBrowse
		m.searchInput.Blur()
		m.Query.Search = ""
		m.syncSelection()
		return m, nil
	case "enter":
		m.Mode = ModeBrowse
		m.searchInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.Query.Search = strings.TrimSpace(m.searchInput.Value())
	m.Cursor = 0
	m.syncSelection()
	return m, cmd
}

func (m Model) View() string {
	list := m.taskListData()
	switch m.Mode {
	case ModeAdd:
		list.InputView = m.addInput.View()
	case ModeSearch:
		list.InputView = m.searchInput.View()
	}
	if m.Pending > 0 {
		list.Pending = m.spinner.View() + " pending"
	}

	var overlay []string
	if m.Mode == ModePalette {
		overlay = append(overlay, views.RenderCommandPalette(true, m.commandInput.Value()))
	}
	if m.HelpVisible {
		overlay = append(overlay, m.renderHelpView())
	}

	frame := views.Frame{
		Mode:          "local",
		ListTitle:     m.listTitle(),
		Bell:          views.RenderBell(m.center.Unread()),
		Lists:         views.RenderSidebar(m.sidebarData()),
		Tasks:         views.RenderTaskList(list),
		Details:       views.RenderDetails(m.detailsData()),
		Overlay:       strings.Join(overlay, "\n\n"),
		Status:        m.Status.Text,
		StatusIsError: m.Status.IsError,
		Keys:          "j/k move | tab list | a add | e edit | f search | / cmd | space done | s star | d delete | n bell | ? help | q quit",
		Width:         m.width,
	}
	if m.async {
		frame.Mode = "remote"
	}
	if m.ShowNotifications {
		frame.Notifications = views.RenderNotifications(m.notificationData())
	}
	return views.RenderFrame(frame)
}
