package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/twodo/internal/commands"
	"github.com/sandeepkv93/twodo/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpView() string {
	var plain []string
	for _, kb := range m.modeBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	bindings := m.helpBindings()
	return views.RenderHelpPanel(views.HelpPanelData{
		Mode:     string(m.Mode),
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) modeBindings() []KeyBinding {
	switch m.Mode {
	case ModeAdd:
		return []KeyBinding{
			{Key: "enter", Action: "create task"},
			{Key: "esc", Action: "cancel"},
		}
	case ModeSearch:
		return []KeyBinding{
			{Key: "enter", Action: "keep search"},
			{Key: "esc", Action: "clear search"},
		}
	case ModePalette:
		out := make([]KeyBinding, 0, len(commands.Types))
		for _, t := range commands.Types {
			out = append(out, KeyBinding{Key: "/" + string(t), Action: "command"})
		}
		return out
	default:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "tab/h/l", Action: "switch list"},
			{Key: "a", Action: "quick add"},
			{Key: "e", Action: "edit selected"},
			{Key: "f", Action: "search"},
			{Key: "/", Action: "command palette"},
			{Key: "space", Action: "toggle complete"},
			{Key: "s", Action: "toggle important"},
			{Key: "d", Action: "delete task"},
			{Key: "n/N", Action: "show bell / mark all read"},
			{Key: "q", Action: "quit"},
		}
	}
}

func (m Model) helpBindings() []key.Binding {
	kbs := m.modeBindings()
	out := make([]key.Binding, 0, len(kbs))
	for _, kb := range kbs {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
