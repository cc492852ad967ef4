package update

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/twodo/internal/commands"
	"github.com/sandeepkv93/twodo/internal/model"
	"github.com/sandeepkv93/twodo/internal/normalize"
	"github.com/sandeepkv93/twodo/internal/store"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		raw := m.commandInput.Value()
		m.closePalette()
		return m.executePaletteCommand(raw)
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	return m, cmd
}

func (m *Model) closePalette() {
	m.Mode = ModeBrowse
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

// executePaletteCommand runs raw through the command parser. View commands
// apply immediately; task edits target the selected task through the
// backend.
func (m Model) executePaletteCommand(raw string) (Model, tea.Cmd) {
	cmd, err := commands.Parse(strings.TrimSpace(raw))
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var (
		patch  *normalize.Patch
		addTxt string
		catJob *categoryJob
	)
	edit := func(p normalize.Patch, what string) (commands.Result, error) {
		if _, ok := m.currentTask(); !ok {
			return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no task selected"}
		}
		patch = &p
		return commands.Result{Message: what}, nil
	}
	now := m.clock()

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			addTxt = a.Title
			return commands.Result{Message: "adding " + a.Title}, nil
		},
		Search: func(s commands.SearchArgs) (commands.Result, error) {
			m.Query.Search = s.Text
			m.Cursor = 0
			if s.Text == "" {
				return commands.Result{Message: "search cleared"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("search: %s", s.Text)}, nil
		},
		Filter: func(f commands.FilterArgs) (commands.Result, error) {
			q := store.ParseFilter(f.Name)
			if q.Filter == store.FilterCategory {
				if _, ok := m.store.Category(q.Category); !ok {
					return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "unknown filter: " + f.Name}
				}
			}
			q.Search = m.Query.Search
			m.Query = q
			m.Cursor = 0
			return commands.Result{Message: "filter: " + m.listTitle()}, nil
		},
		Due: func(d commands.DateArgs) (commands.Result, error) {
			v, err := commands.ResolveDate(d, now)
			if err != nil {
				return commands.Result{}, err
			}
			return edit(normalize.SetDueDate(v), "due date set")
		},
		Remind: func(d commands.DateArgs) (commands.Result, error) {
			v, err := commands.ResolveDate(d, now)
			if err != nil {
				return commands.Result{}, err
			}
			return edit(normalize.SetReminder(v), "reminder set")
		},
		Repeat: func(r commands.RepeatArgs) (commands.Result, error) {
			if r.Rule == nil {
				return edit(normalize.SetRecurrence(""), "repeat cleared")
			}
			enc, err := model.EncodeRecurrence(*r.Rule)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			return edit(normalize.SetRecurrence(enc), "repeat set")
		},
		Category: func(c commands.CategoryArgs) (commands.Result, error) {
			return m.applyCategory(c, edit, &catJob)
		},
		Priority: func(p commands.PriorityArgs) (commands.Result, error) {
			return edit(normalize.SetPriority(p.Level), "priority set")
		},
		Tag: func(t commands.TagArgs) (commands.Result, error) {
			task, ok := m.currentTask()
			if !ok {
				return edit(normalize.Patch{}, "")
			}
			tags := append([]string{}, task.Tags...)
			for _, existing := range tags {
				if strings.EqualFold(existing, t.Tag) {
					return commands.Result{Message: "already tagged #" + t.Tag}, nil
				}
			}
			tags = append(tags, t.Tag)
			return edit(normalize.Patch{Tags: &tags}, "tagged #"+t.Tag)
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	m.syncSelection()

	switch {
	case addTxt != "":
		return m.submitAdd("", addTxt)
	case catJob != nil:
		return m.runCategory(catJob.op, catJob.key, catJob.run)
	case patch != nil:
		return m.updateSelected(string(cmd.Type), *patch)
	}
	return m, nil
}

// categoryJob is a rename or delete queued by the palette. It goes through
// the backend so remote tasks are rewritten on the server.
type categoryJob struct {
	op  string
	key string
	run func(context.Context) categoryMsg
}

func (m *Model) applyCategory(c commands.CategoryArgs, edit func(normalize.Patch, string) (commands.Result, error), job **categoryJob) (commands.Result, error) {
	switch c.Action {
	case commands.CategoryAdd:
		similar := m.store.SuggestCategories(c.Label)
		cat, err := m.store.AddCategory(c.Label)
		if err != nil {
			return commands.Result{}, err
		}
		msg := "category added: " + cat.Label
		if len(similar) > 0 {
			labels := make([]string, 0, len(similar))
			for _, s := range similar {
				labels = append(labels, s.Label)
			}
			msg += " (similar: " + strings.Join(labels, ", ") + ")"
		}
		return commands.Result{Message: msg}, nil
	case commands.CategoryRename:
		if _, _, err := m.store.PlanRenameCategory(c.Key, c.Label); err != nil {
			return commands.Result{}, err
		}
		backend, key, label := m.backend, c.Key, c.Label
		*job = &categoryJob{op: "rename", key: key, run: func(ctx context.Context) categoryMsg {
			cat, err := backend.RenameCategory(ctx, key, label)
			return categoryMsg{Category: cat, Err: err}
		}}
		return commands.Result{Message: "renaming " + key}, nil
	case commands.CategoryDelete:
		if _, err := m.store.PlanDeleteCategory(c.Key); err != nil {
			return commands.Result{}, err
		}
		backend, key := m.backend, c.Key
		*job = &categoryJob{op: "delete", key: key, run: func(ctx context.Context) categoryMsg {
			return categoryMsg{Err: backend.DeleteCategory(ctx, key)}
		}}
		return commands.Result{Message: "deleting " + key}, nil
	default:
		if _, ok := m.store.Category(c.Key); !ok {
			return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "unknown category: " + c.Key}
		}
		return edit(normalize.Patch{Metadata: &normalize.MetadataPatch{Category: normalize.Some(c.Key)}}, "category set")
	}
}
