package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"realmquest/internal/engine"
	"realmquest/internal/ui"
)

func newAddCmd() *cobra.Command {
	var realmID string
	var desc string
	var diff string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task to a realm",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if realmID == "" {
				return errors.New("--realm is required")
			}
			difficulty, ok := engine.ParseDifficulty(diff)
			if !ok {
				return fmt.Errorf("invalid difficulty %q (easy|medium|hard)", diff)
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			task, err := svc.CreateTask(ctx, userFlag, realmID, engine.CreateTaskInput{
				Title:       args[0],
				Description: desc,
				Difficulty:  difficulty,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconPlus, "Task added"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("ID", task.ID))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Title", task.Title))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Reward", fmt.Sprintf("%d xp (%s)", task.XPReward, task.Difficulty)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&realmID, "realm", "r", "", "Realm ID to add the task to")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "Task description (10-500 characters)")
	cmd.Flags().StringVar(&diff, "diff", "easy", "Difficulty (easy|medium|hard)")

	return cmd
}
