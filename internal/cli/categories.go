package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCategoriesCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "List and manage categories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			counts := a.store.Counts()
			out := cmd.OutOrStdout()
			for _, c := range a.store.Categories() {
				kind := "custom"
				if c.Builtin {
					kind = "builtin"
				}
				fmt.Fprintf(out, "%-16s %-20s %-8s %d\n", c.Key, c.Label, kind, counts[c.Key])
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <label>",
		Short: "Create a custom category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			label := strings.Join(args, " ")
			similar := a.store.SuggestCategories(label)
			c, err := a.store.AddCategory(label)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "added %s (%s)\n", c.Label, c.Key)
			for _, s := range similar {
				fmt.Fprintf(out, "  similar to existing %s (%.0f%%)\n", s.Label, s.Score*100)
			}
			return a.store.Sync(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <key> <label>",
		Short: "Rename a custom category and move its tasks",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()
			c, err := a.backend.RenameCategory(ctx, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s (%s)\n", args[0], c.Label, c.Key)
			return a.store.Sync(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <key>",
		Short: "Delete a custom category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()
			if err := a.backend.DeleteCategory(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return a.store.Sync(cmd.Context())
		},
	})
	return cmd
}
