package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"realmquest/internal/engine"
	"realmquest/internal/ui"
)

const Version = "0.1.0"

var userFlag string

var rootCmd = &cobra.Command{
	Use:           "rq",
	Short:         "RealmQuest — gamified task tracker with XP, streaks and badges",
	Long:          "RealmQuest is a local-first task tracker where realms hold tasks and completing them earns XP, levels, streaks, badges and daily quest progress.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", engine.DefaultUserID, "User identity to act as")

	rootCmd.AddCommand(
		newRealmCmd(),
		newAddCmd(),
		newListCmd(),
		newDoCmd(),
		newUndoCmd(),
		newStatusCmd(),
		newQuestsCmd(),
		newBadgesCmd(),
		newHistoryCmd(),
		newDashCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
