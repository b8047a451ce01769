package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"realmquest/internal/ui"
)

func newBadgesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "badges",
		Short: "Show the badge catalog and what you've earned",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			views, err := svc.Badges(ctx, userFlag)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconTrophy, "Badges"))
			for _, v := range views {
				mark := ui.Muted.Render("○")
				when := ""
				if v.Earned {
					mark = ui.Good.Render("●")
					if v.Badge != nil && v.Badge.EarnedAt != nil {
						when = ui.Dim.Render(" earned " + v.Badge.EarnedAt.Format("2006-01-02"))
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s%s\n",
					mark, ui.Key.Render(v.Def.Name), ui.RarityText(string(v.Def.Rarity)),
					ui.Muted.Render(v.Def.Description), when)
			}
			return nil
		},
	}
	return cmd
}
