package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"realmquest/internal/ui"
)

func newListCmd() *cobra.Command {
	var realmID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, grouped by realm",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			realms, err := svc.ListRealms(ctx, userFlag)
			if err != nil {
				return err
			}
			shown := 0
			for _, realm := range realms {
				if realmID != "" && realm.ID != realmID {
					continue
				}
				tasks, err := svc.ListTasks(ctx, userFlag, realm.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconRealm, realm.Name))
				if len(tasks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("  (no tasks)"))
				}
				for _, t := range tasks {
					mark := "[ ]"
					if t.Status == "completed" {
						mark = "[x]"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  %s %s %s %s %s\n",
						mark,
						t.Title,
						ui.DifficultyText(t.Difficulty),
						ui.Muted.Render(fmt.Sprintf("%d xp", t.XPReward)),
						ui.Dim.Render(t.ID),
					)
				}
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No realms yet. Create one with `rq realm new`."))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&realmID, "realm", "r", "", "Only list tasks in this realm")

	return cmd
}
