// Package cli wires configuration, storage and the API client behind the
// twodo command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	mode    string
	verbose bool
}

// NewRootCmd builds the command tree. Running it without a subcommand opens
// the interactive list.
func NewRootCmd(version string) *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "twodo",
		Short: "twodo - a to-do list for the terminal",
		Long: `twodo keeps tasks in a local SQLite file or on a twodo API server.

Without a subcommand it opens the interactive list.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.mode, "mode", "", "override the configured mode (local or remote)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newTUICmd(flags),
		newAddCmd(flags),
		newListCmd(flags),
		newDoneCmd(flags),
		newStarCmd(flags),
		newRemoveCmd(flags),
		newCategoriesCmd(flags),
		newNotificationsCmd(flags),
		newConfigCmd(),
	)
	return root
}

// Execute runs the root command
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
