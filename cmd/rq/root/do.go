package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"realmquest/internal/engine"
	"realmquest/internal/ui"
)

func newDoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do <task-id>",
		Short: "Complete a task",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("task id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			realmID, err := realmOfTask(ctx, svc, args[0])
			if err != nil {
				return err
			}
			res, err := svc.CompleteTask(ctx, userFlag, realmID, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconDone, "Task completed"))
			reward := fmt.Sprintf("%d xp", res.XPGained)
			if res.StreakMultiplier > 1.0 {
				reward += ui.Muted.Render(fmt.Sprintf(" (%d base x%.1f streak)", res.BaseXP, res.StreakMultiplier))
			}
			fmt.Fprintln(out, ui.LabelValue("Reward", reward))
			fmt.Fprintln(out, ui.LabelValue("Streak", ui.StreakText(res.CurrentStreak, res.StreakMultiplier)))
			if res.LevelUp != nil {
				fmt.Fprintf(out, "%s %s level %d → %d\n", ui.IconSparkle, ui.BadgeLevelUp, res.LevelUp.From, res.LevelUp.To)
			}
			for _, b := range res.NewBadges {
				fmt.Fprintf(out, "%s New badge: %s %s\n", ui.IconTrophy, ui.Gold.Render(b.Name), ui.RarityText(b.Rarity))
			}
			fmt.Fprintln(out, ui.LabelValue("Total XP", fmt.Sprintf("%d (level %d, %d to next)",
				res.UserStats.TotalXP, res.UserStats.Level, res.UserStats.XPToNextLevel)))
			return nil
		},
	}
	return cmd
}

func newUndoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo <task-id>",
		Short: "Reverse a task completion",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("task id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			realmID, err := realmOfTask(ctx, svc, args[0])
			if err != nil {
				return err
			}
			res, err := svc.UncompleteTask(ctx, userFlag, realmID, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconWarn, "Completion reversed"))
			fmt.Fprintln(out, ui.LabelValue("Reclaimed", fmt.Sprintf("-%d xp", res.XPLost)))
			fmt.Fprintln(out, ui.LabelValue("Total XP", fmt.Sprintf("%d (level %d)", res.UserStats.TotalXP, res.UserStats.Level)))
			return nil
		},
	}
	return cmd
}

// realmOfTask resolves the realm a task belongs to, so the CLI can take bare
// task ids. Ownership is still enforced by the engine.
func realmOfTask(ctx context.Context, svc *engine.Service, taskID string) (string, error) {
	task, err := svc.TaskRepo().Get(ctx, taskID)
	if err != nil {
		return "", err
	}
	if task == nil {
		return "", engine.NotFoundf("task %s not found", taskID)
	}
	return task.RealmID, nil
}
