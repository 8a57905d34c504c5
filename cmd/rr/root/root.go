package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qinghezeng/research-gamification/internal/ui"
)

const Version = "0.1.0"

type globalFlags struct {
	dbPath     string
	configPath string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:           "rr",
		Short:         "Research Rank: ranked-match scoring for research work",
		Long:          "Research Rank is a local-first CLI/TUI that scores research activities as matches, tracks streaks and ranks, and unlocks achievements.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&g.dbPath, "db", "", "SQLite database path (default $RR_DB_PATH or ~/.research-rank.db)")
	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (default ~/.config/research-rank/config.yaml)")

	rootCmd.AddCommand(
		newLogCmd(g),
		newUndoCmd(g),
		newNoteCmd(g),
		newHistoryCmd(g),
		newStatusCmd(g),
		newReportCmd(g),
		newAchievementsCmd(g),
		newShopCmd(g),
		newBuyCmd(g),
		newTasksCmd(g),
		newExportCmd(g),
		newImportCmd(g),
		newResetCmd(g),
		newBoardCmd(g),
	)
	return rootCmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
