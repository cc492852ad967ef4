package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/twodo/internal/scheduler"
	"github.com/sandeepkv93/twodo/internal/update"
)

func newTUICmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, flags)
		},
	}
}

func runTUI(cmd *cobra.Command, flags *rootFlags) error {
	a, err := openApp(cmd.Context(), flags)
	if err != nil {
		return err
	}
	defer a.Close()

	engine := scheduler.NewEngine(a.cfg.Scheduler.Buffer)
	engine.Start()
	defer engine.Stop()

	deps := update.Deps{
		Store:         a.store,
		Backend:       a.backend,
		Scheduler:     engine,
		Center:        a.center,
		Location:      a.loc,
		ShowTimezone:  a.cfg.UI.ShowTimezone,
		DefaultFilter: a.cfg.UI.DefaultFilter,
		Timeout:       a.cfg.API.Timeout,
		Logger:        a.logger,
	}
	if a.service != nil {
		deps.QuickAdd = a.service
		deps.Notifications = a.service
	}
	m := update.NewModel(deps)
	scheduled := m.ScheduleAll()
	a.logger.Info("tui started", "mode", a.cfg.Mode, "tasks", a.store.Len(), "reminders", scheduled)

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("twodo failed: %w", err)
	}
	return nil
}
