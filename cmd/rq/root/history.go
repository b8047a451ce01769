package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"realmquest/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent XP grants",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := svc.XPHistory(ctx, userFlag, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No XP earned yet."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconScroll, "XP History"))
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n",
					ui.Dim.Render(e.CreatedAt.Format("2006-01-02 15:04")),
					ui.Gold.Render(fmt.Sprintf("%+d", e.XPGained)),
					e.Description,
					ui.Muted.Render("("+e.Source+")"),
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Max entries to show")

	return cmd
}
