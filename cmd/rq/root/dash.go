package root

import (
	"context"

	"github.com/spf13/cobra"

	"realmquest/internal/tui"
)

func newDashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Open the TUI dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.RunDashboard(ctx, svc, userFlag, cmd.OutOrStdout())
		},
	}
	return cmd
}
