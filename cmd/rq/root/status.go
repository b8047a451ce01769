package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"realmquest/internal/engine"
	"realmquest/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show level, XP, streak and badge progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := svc.Stats(ctx, userFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Adventurer Status"))
			fmt.Fprintln(out, ui.LabelValue("Level", stats.Level))
			levelStart := engine.XPRequiredForLevel(stats.Level)
			fmt.Fprintln(out, ui.LabelValue("Total XP", fmt.Sprintf("%d %s", stats.TotalXP, ui.XPBar(stats.XP-levelStart, stats.XPToNextLevel, 24))))
			fmt.Fprintln(out, ui.LabelValue("Streak", ui.StreakText(stats.Streak, engine.StreakMultiplier(stats.Streak))))
			fmt.Fprintln(out, ui.LabelValue("Tasks completed", stats.TasksCompleted))
			fmt.Fprintln(out, ui.LabelValue("Active realms", stats.ActiveRealms))
			fmt.Fprintln(out, "")

			views, err := svc.Badges(ctx, userFlag)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.H2.Render(ui.IconTrophy+" Badges"))
			for _, v := range views {
				mark := ui.Muted.Render("locked")
				if v.Earned {
					mark = ui.Good.Render("earned")
				}
				fmt.Fprintf(out, "- %s %s %s\n", v.Def.Name, ui.RarityText(string(v.Def.Rarity)), mark)
			}
			return nil
		},
	}
	return cmd
}
