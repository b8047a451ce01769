package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"realmquest/internal/engine"
	"realmquest/internal/ui"
)

func newRealmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realm",
		Short: "Manage realms (task collections)",
	}
	cmd.AddCommand(
		newRealmNewCmd(),
		newRealmListCmd(),
		newRealmDeleteCmd(),
		newRealmVisitCmd(),
	)
	return cmd
}

func newRealmNewCmd() *cobra.Command {
	var desc string
	var theme string
	var difficulty string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a realm",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("name is required")
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

			realm, err := svc.CreateRealm(ctx, userFlag, engine.CreateRealmInput{
				Name:        args[0],
				Description: desc,
				Theme:       engine.RealmTheme(theme),
				Difficulty:  engine.RealmDifficulty(difficulty),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconRealm, "Realm created"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("ID", realm.ID))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Name", realm.Name))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Theme", realm.Theme))
			return nil
		},
	}

	cmd.Flags().StringVarP(&desc, "desc", "d", "", "Realm description (10-200 characters)")
	cmd.Flags().StringVarP(&theme, "theme", "t", "nature", "Theme (fire|ice|nature|electric|shadow)")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "Difficulty (easy|medium|hard|legendary)")

	return cmd
}

func newRealmListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List realms",
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
			if len(realms) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No realms yet. Create one with `rq realm new`."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconRealm, "Realms"))
			for _, realm := range realms {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %s %s %s\n",
					ui.Key.Render(realm.Name),
					ui.DifficultyText(realm.Difficulty),
					ui.Muted.Render(fmt.Sprintf("%d/%d tasks, %d xp", realm.CompletedTasks, realm.TotalTasks, realm.TotalXPEarned)),
					ui.Dim.Render(realm.ID),
				)
			}
			return nil
		},
	}
	return cmd
}

func newRealmDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <realm-id>",
		Short: "Delete a realm and its tasks",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("realm id is required")
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

			if err := svc.DeleteRealm(ctx, userFlag, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconDone+" Realm deleted."))
			return nil
		},
	}
	return cmd
}

func newRealmVisitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visit <realm-id>",
		Short: "Record a realm visit (advances visit quests)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("realm id is required")
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

			updated, err := svc.RecordRealmVisit(ctx, userFlag, args[0])
			if err != nil {
				return err
			}
			if len(updated) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Visit recorded. No quests advanced."))
				return nil
			}
			for _, q := range updated {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d/%d\n", ui.IconQuest, q.Title, q.Progress, q.Target)
			}
			return nil
		},
	}
	return cmd
}
