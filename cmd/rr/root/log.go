package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qinghezeng/research-gamification/internal/catalog"
	"github.com/qinghezeng/research-gamification/internal/engine"
	"github.com/qinghezeng/research-gamification/internal/ui"
)

func newLogCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <tier> <task> <win|draw|loss>",
		Short: "Record a research activity as a match",
		Long: `Record one activity against a task template.

The task name may contain spaces; everything between the tier and the
outcome is taken as the name. Wins build the streak and raise the score
multiplier, draws keep the streak, losses reset it.`,
		Example: `  rr log A "Close-read a paper" win
  rr log S Finish a chapter loss`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 {
				return errors.New("tier, task and outcome are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := catalog.ParseTier(args[0])
			if err != nil {
				return err
			}
			outcome, err := engine.ParseOutcome(args[len(args)-1])
			if err != nil {
				return err
			}
			name := joinArgs(args[1 : len(args)-1])

			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.Record(ctx, tier, name, outcome)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			a := res.Activity
			fmt.Fprintf(out, "%s %s %s: %s %s\n", ui.IconDone, ui.TierBadge(a.Tier), a.TaskName, ui.OutcomeText(a.Outcome), ui.Points(a.FinalScore))
			fmt.Fprintln(out, ui.LabelValue("Score", fmt.Sprintf("%d → %d", res.ScoreBefore, res.ScoreAfter)))
			fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%s %d", ui.IconFire, a.StreakAtRecording)))
			if res.StreakBonus > 0 {
				fmt.Fprintln(out, ui.Gold.Render(fmt.Sprintf("%s Streak bonus: +%d stars", ui.IconCoin, res.StreakBonus)))
			}
			if res.RankUp() {
				fmt.Fprintf(out, "%s %s → %s\n", ui.BadgeRankUp, res.RankBefore.Label(), res.RankAfter.Label())
			} else if res.RankAfter.Label() != res.RankBefore.Label() {
				fmt.Fprintln(out, ui.LabelValue("Rank", fmt.Sprintf("%s → %s", res.RankBefore.Label(), res.RankAfter.Label())))
			}
			printUnlocks(out, svc)
			return nil
		},
	}

	return cmd
}

func newUndoCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo <id>",
		Short: "Delete a recorded activity and reverse its score",
		Long: `Delete an activity by id (any unique prefix works, see "rr history").

The activity's points are reversed. Deleting a win recomputes the streak
from the remaining records. Achievements already earned are kept.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.DeleteActivity(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Removed %s %s (%s)\n", ui.IconInfo, ui.TierBadge(res.Activity.Tier), res.Activity.TaskName, ui.OutcomeText(res.Activity.Outcome))
			fmt.Fprintln(out, ui.LabelValue("Score", fmt.Sprintf("%d → %d", res.ScoreBefore, res.ScoreAfter)))
			if res.StreakBefore != res.StreakAfter {
				fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%d → %d", res.StreakBefore, res.StreakAfter)))
			}
			printUnlocks(out, svc)
			return nil
		},
	}

	return cmd
}

func newNoteCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note <id> <text>",
		Short: "Replace the description of a recorded activity",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("id and text are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			a, err := svc.UpdateDescription(ctx, args[0], joinArgs(args[1:]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Updated %s %s\n", ui.IconDone, shortID(a.ID), a.TaskName)
			return nil
		},
	}

	return cmd
}

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded activities, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			log := svc.Player().Log
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, fmt.Sprintf("History (%d records)", len(log))))
			if len(log) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(nothing recorded yet)"))
				return nil
			}
			if limit > 0 && len(log) > limit {
				log = log[:limit]
			}
			for _, a := range log {
				fmt.Fprintf(out, "%s  %s %s %-5s %s  %s\n",
					ui.Muted.Render(shortID(a.ID)),
					a.RecordedAt.In(svc.Tracker().Location()).Format("2006-01-02 15:04"),
					ui.TierBadge(a.Tier),
					ui.OutcomeText(a.Outcome),
					ui.Points(a.FinalScore),
					a.TaskName,
				)
				if a.Description != "" {
					fmt.Fprintf(out, "    %s\n", ui.Muted.Render(a.Description))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum records to show (0 for all)")

	return cmd
}
