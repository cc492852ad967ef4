package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/twodo/internal/commands"
	"github.com/sandeepkv93/twodo/internal/model"
	"github.com/sandeepkv93/twodo/internal/normalize"
	"github.com/sandeepkv93/twodo/internal/store"
)

type addFlags struct {
	due       string
	remind    string
	repeat    string
	priority  string
	category  string
	tags      []string
	important bool
	parse     bool
}

func newAddCmd(flags *rootFlags) *cobra.Command {
	f := &addFlags{}
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Example: `  twodo add "pay rent" --due tomorrow --priority high
  twodo add "standup" --due "2024-06-11 09:30" --repeat "every weekday"
  twodo add --parse "call mom friday at 6pm"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, flags, f, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVar(&f.due, "due", "", "due date: today, tomorrow, next week, YYYY-MM-DD or YYYY-MM-DD HH:MM")
	cmd.Flags().StringVar(&f.remind, "remind", "", "reminder time, same forms as --due")
	cmd.Flags().StringVar(&f.repeat, "repeat", "", "recurrence, e.g. daily, weekly, \"every 2 weeks on mon,thu\"")
	cmd.Flags().StringVar(&f.priority, "priority", "", "low, medium, high or critical")
	cmd.Flags().StringVar(&f.category, "category", "", "category key")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "tag, may be repeated")
	cmd.Flags().BoolVar(&f.important, "important", false, "star the task")
	cmd.Flags().BoolVar(&f.parse, "parse", false, "let the server interpret the title (remote mode)")
	return cmd
}

func runAdd(cmd *cobra.Command, flags *rootFlags, f *addFlags, title string) error {
	a, err := openApp(cmd.Context(), flags)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.requestContext(cmd.Context())
	defer cancel()

	if f.parse {
		if a.service == nil {
			return fmt.Errorf("--parse needs remote mode")
		}
		task, res, err := a.service.QuickAdd(ctx, title)
		if err != nil {
			return err
		}
		if res.Feedback.Display != "" {
			fmt.Fprintln(cmd.OutOrStdout(), res.Feedback.Display)
		}
		printTask(cmd.OutOrStdout(), a, task)
		return nil
	}

	raw, err := buildRaw(a, f, title)
	if err != nil {
		return err
	}
	task, err := a.backend.Create(ctx, raw)
	if err != nil {
		return err
	}
	printTask(cmd.OutOrStdout(), a, task)
	return nil
}

// buildRaw turns the add flags into the record the normalizer accepts.
func buildRaw(a *app, f *addFlags, title string) (normalize.Raw, error) {
	raw := normalize.Raw{Title: strings.TrimSpace(title), Tags: trimTags(f.tags)}
	now := a.now()

	temporal := &normalize.RawTemporal{}
	if f.due != "" {
		v, err := commands.ResolveDate(commands.DateArgs{Expr: f.due}, now)
		if err != nil {
			return raw, err
		}
		temporal.DueDate = normalize.Some(v)
	}
	if f.remind != "" {
		v, err := commands.ResolveDate(commands.DateArgs{Expr: f.remind}, now)
		if err != nil {
			return raw, err
		}
		temporal.Reminder = normalize.Some(v)
	}
	if f.repeat != "" {
		rule, none, err := commands.ParseRepeatRule(f.repeat)
		if err != nil {
			return raw, err
		}
		if !none {
			enc, err := model.EncodeRecurrence(rule)
			if err != nil {
				return raw, err
			}
			temporal.Recurrence = normalize.Some(enc)
		}
	}
	if temporal.DueDate.Set || temporal.Reminder.Set || temporal.Recurrence.Set {
		raw.Temporal = temporal
	}

	if f.priority != "" {
		level, ok := model.ParsePriorityLevel(f.priority)
		if !ok {
			return raw, fmt.Errorf("unknown priority %q", f.priority)
		}
		raw.Priority = normalize.RawPriority{Set: true, Level: string(level)}
	}

	if f.important || f.category != "" {
		meta := &normalize.RawMetadata{}
		if f.important {
			meta.IsImportant = normalize.Some(true)
		}
		if f.category != "" {
			if _, ok := a.store.Category(f.category); !ok {
				return raw, fmt.Errorf("unknown category %q", f.category)
			}
			meta.Category = normalize.Some(f.category)
		}
		raw.Metadata = meta
	}
	return raw, nil
}

func trimTags(in []string) []string {
	var out []string
	for _, t := range in {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

type listFlags struct {
	filter string
	search string
	json   bool
}

func newListCmd(flags *rootFlags) *cobra.Command {
	f := &listFlags{}
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks grouped by due date",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, flags, f)
		},
	}
	cmd.Flags().StringVarP(&f.filter, "filter", "f", "", "Today, Important, Planned, Completed, All, Active or a category key")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "only tasks whose title, description or tags contain this text")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the matching tasks as JSON")
	return cmd
}

func runList(cmd *cobra.Command, flags *rootFlags, f *listFlags) error {
	a, err := openApp(cmd.Context(), flags)
	if err != nil {
		return err
	}
	defer a.Close()

	name := f.filter
	if name == "" {
		name = a.cfg.UI.DefaultFilter
	}
	q := store.ParseFilter(name)
	if q.Filter == store.FilterCategory {
		if _, ok := a.store.Category(q.Category); !ok {
			return fmt.Errorf("unknown filter %q", name)
		}
	}
	q.Search = f.search

	out := cmd.OutOrStdout()
	if f.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		tasks := a.store.Query(q)
		if tasks == nil {
			tasks = []model.Task{}
		}
		return enc.Encode(tasks)
	}

	groups := a.store.Buckets(q, a.now()).Groups()
	if len(groups) == 0 {
		fmt.Fprintf(out, "%s: no tasks\n", q.Label())
		return nil
	}
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s:\n", g.Label)
		for _, t := range g.Tasks {
			printTask(out, a, t)
		}
	}
	return nil
}

func printTask(w io.Writer, a *app, t model.Task) {
	check := "[ ]"
	if t.Completed() {
		check = "[x]"
	}
	var extra []string
	if t.Metadata.IsImportant {
		extra = append(extra, "*")
	}
	if t.Priority.Level.Elevated() {
		extra = append(extra, strings.ToLower(string(t.Priority.Level)))
	}
	if t.Temporal.DueDate != nil && *t.Temporal.DueDate != "" {
		extra = append(extra, "due "+model.FormatStoredDate(*t.Temporal.DueDate, a.now(), a.cfg.UI.ShowTimezone))
	}
	if t.Temporal.Recurrence != nil && *t.Temporal.Recurrence != "" {
		extra = append(extra, "repeats")
	}
	for _, tag := range t.Tags {
		extra = append(extra, "#"+tag)
	}
	line := fmt.Sprintf("  %s %s  %s", check, shortID(t.ID), t.Title)
	if len(extra) > 0 {
		line += "  (" + strings.Join(extra, ", ") + ")"
	}
	fmt.Fprintln(w, line)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveTask accepts a full id or an unambiguous prefix of one.
func resolveTask(s *store.Store, ref string) (model.Task, error) {
	if t, err := s.Get(ref); err == nil {
		return t, nil
	}
	var found []model.Task
	for _, t := range s.All() {
		if strings.HasPrefix(t.ID, ref) {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return model.Task{}, fmt.Errorf("no task matches %q", ref)
	case 1:
		return found[0], nil
	}
	return model.Task{}, fmt.Errorf("%q matches %d tasks", ref, len(found))
}

func newDoneCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>...",
		Short: "Toggle tasks between open and completed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return eachTask(cmd, flags, args, func(a *app, t model.Task) (model.Task, error) {
				ctx, cancel := a.requestContext(cmd.Context())
				defer cancel()
				return a.backend.ToggleComplete(ctx, t.ID)
			})
		},
	}
}

func newStarCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "star <id>...",
		Short: "Toggle the important flag",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return eachTask(cmd, flags, args, func(a *app, t model.Task) (model.Task, error) {
				ctx, cancel := a.requestContext(cmd.Context())
				defer cancel()
				return a.backend.ToggleImportant(ctx, t.ID)
			})
		},
	}
}

func eachTask(cmd *cobra.Command, flags *rootFlags, refs []string, fn func(*app, model.Task) (model.Task, error)) error {
	a, err := openApp(cmd.Context(), flags)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, ref := range refs {
		t, err := resolveTask(a.store, ref)
		if err != nil {
			return err
		}
		updated, err := fn(a, t)
		if err != nil {
			return fmt.Errorf("%s: %w", shortID(t.ID), err)
		}
		printTask(cmd.OutOrStdout(), a, updated)
	}
	return nil
}

func newRemoveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete tasks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			ids := make([]string, 0, len(args))
			for _, ref := range args {
				t, err := resolveTask(a.store, ref)
				if err != nil {
					return err
				}
				ids = append(ids, t.ID)
			}
			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()
			n, err := a.backend.Delete(ctx, ids...)
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d task(s)\n", n)
			return err
		},
	}
}
