package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"realmquest/internal/ui"
)

func newQuestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quests",
		Short: "Daily quests",
	}
	cmd.AddCommand(
		newQuestsListCmd(),
		newQuestsRollCmd(),
		newQuestsNewCmd(),
		newQuestsProgressCmd(),
		newQuestsClaimCmd(),
	)
	return cmd
}

func newQuestsListCmd() *cobra.Command {
	var includeExpired bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List today's quests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			quests, err := svc.ListQuests(ctx, userFlag, includeExpired)
			if err != nil {
				return err
			}
			if len(quests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No quests. Roll today's batch with `rq quests roll`."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconQuest, "Daily Quests"))
			for _, q := range quests {
				kind := ""
				if q.IsCustom {
					kind = ui.Muted.Render(" (custom)")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "- %s%s %d/%d %s %s %s\n",
					q.Title, kind, q.Progress, q.Target,
					ui.StatusText(q.Status),
					ui.Gold.Render(fmt.Sprintf("+%d xp", q.XPReward)),
					ui.Dim.Render(q.ID),
				)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeExpired, "expired", false, "Include expired quests")

	return cmd
}

func newQuestsRollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roll",
		Short: "Generate today's quest batch (no-op if already rolled)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			quests, err := svc.GenerateDailyQuests(ctx, userFlag)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconQuest, "Today's Quests"))
			for _, q := range quests {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %d/%d %s\n", q.Title, q.Progress, q.Target, ui.Gold.Render(fmt.Sprintf("+%d xp", q.XPReward)))
			}
			return nil
		},
	}
	return cmd
}

func newQuestsNewCmd() *cobra.Command {
	var desc string
	var target int
	var xpReward int

	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a custom quest",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
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

			q, err := svc.CreateCustomQuest(ctx, userFlag, args[0], desc, target, xpReward)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconQuest, "Custom quest created"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("ID", q.ID))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Target", q.Target))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Reward", fmt.Sprintf("%d xp", q.XPReward)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&desc, "desc", "d", "", "Quest description")
	cmd.Flags().IntVarP(&target, "target", "t", 1, "Progress target (1-100)")
	cmd.Flags().IntVar(&xpReward, "xp", 10, "XP reward (1-200)")

	return cmd
}

func newQuestsProgressCmd() *cobra.Command {
	var by int

	cmd := &cobra.Command{
		Use:   "progress <quest-id>",
		Short: "Advance a custom quest",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("quest id is required")
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

			q, err := svc.AdvanceQuestProgress(ctx, userFlag, args[0], by)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d/%d %s\n", ui.IconQuest, q.Title, q.Progress, q.Target, ui.StatusText(q.Status))
			return nil
		},
	}

	cmd.Flags().IntVarP(&by, "by", "n", 1, "Increment amount")

	return cmd
}

func newQuestsClaimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim <quest-id>",
		Short: "Claim a completed quest's reward",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("quest id is required")
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

			res, err := svc.ClaimQuest(ctx, userFlag, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, "Quest reward claimed"))
			fmt.Fprintln(out, ui.LabelValue("Reward", fmt.Sprintf("%d xp", res.XPGained)))
			if res.LevelUp != nil {
				fmt.Fprintf(out, "%s %s level %d → %d\n", ui.IconSparkle, ui.BadgeLevelUp, res.LevelUp.From, res.LevelUp.To)
			}
			fmt.Fprintln(out, ui.LabelValue("Total XP", fmt.Sprintf("%d (level %d)", res.UserStats.TotalXP, res.UserStats.Level)))
			return nil
		},
	}
	return cmd
}
