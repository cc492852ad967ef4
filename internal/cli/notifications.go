package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNotificationsCmd(flags *rootFlags) *cobra.Command {
	var clearAll bool
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"bell"},
		Short:   "Show the server's notifications (remote mode)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.service == nil {
				return fmt.Errorf("notifications need remote mode")
			}

			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()
			if clearAll {
				if err := a.service.ClearNotifications(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "notifications cleared")
				return nil
			}

			unread, err := a.service.SyncNotifications(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d unread\n", unread)
			for _, n := range a.center.List() {
				mark := " "
				if !n.IsRead {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %s  %s\n", mark, n.Timestamp.In(a.loc).Format("Jan 2 15:04"), n.Message)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "delete all notifications")
	return cmd
}
