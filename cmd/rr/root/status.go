package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/qinghezeng/research-gamification/internal/catalog"
	"github.com/qinghezeng/research-gamification/internal/engine"
	"github.com/qinghezeng/research-gamification/internal/ui"
)

func newStatusCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show rank, score, streak and stars",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			p := svc.Player()
			m := svc.Metrics()

			fmt.Fprintln(out, ui.Heading(ui.IconRank, "Research Rank"))
			fmt.Fprintln(out, ui.RankCard(p, svc.Rank()))
			fmt.Fprintln(out, ui.LabelValue("Matches", fmt.Sprintf("%d (%dW %dD %dL)", m.Total, m.Wins, m.Draws, m.Losses)))
			fmt.Fprintln(out, ui.LabelValue("Win rate", fmt.Sprintf("%.0f%%", m.WinRate*100)))
			fmt.Fprintln(out, ui.LabelValue("KDA", fmt.Sprintf("%.1f", m.KDA)))

			unlocked := 0
			all := svc.Achievements()
			for _, a := range all {
				if a.Unlocked {
					unlocked++
				}
			}
			fmt.Fprintln(out, ui.LabelValue("Achievements", fmt.Sprintf("%d/%d", unlocked, len(all))))

			var owned []string
			for _, mod := range engine.Modifiers() {
				if n := p.Owned[mod.Kind]; n > 0 {
					owned = append(owned, fmt.Sprintf("%s %s x%d", mod.Icon, mod.Name, n))
				}
			}
			if len(owned) > 0 {
				fmt.Fprintln(out, ui.LabelValue("Buffs", strings.Join(owned, ", ")))
			}
			return nil
		},
	}

	return cmd
}

func newReportCmd(g *globalFlags) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise today, the last seven days and the tier mix",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			md := reportMarkdown(svc.Player(), svc.Rank(), svc.Metrics())
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}
			r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
			if err != nil {
				return fmt.Errorf("markdown renderer: %w", err)
			}
			rendered, err := r.Render(md)
			if err != nil {
				return fmt.Errorf("render report: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the report as plain markdown")

	return cmd
}

func reportMarkdown(p engine.Player, r engine.Rank, m engine.Metrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n\n", r.Tier.Icon, r.Label())
	fmt.Fprintf(&b, "Score **%d**, streak **%d**, stars **%d**, KDA **%.1f**, win rate **%.0f%%**.\n\n",
		p.Score, p.Streak, p.Currency, m.KDA, m.WinRate*100)

	b.WriteString("## Today\n\n")
	fmt.Fprintf(&b, "| Records | Wins | Losses | Points |\n|---|---|---|---|\n| %d | %d | %d | %d |\n\n",
		m.Today.Count, m.Today.Wins, m.Today.Losses, m.Today.Points)

	b.WriteString("## Last 7 days\n\n")
	b.WriteString("| Day | Records | W/D/L | Points |\n|---|---|---|---|\n")
	for _, d := range m.Week {
		fmt.Fprintf(&b, "| %s | %d | %d/%d/%d | %d |\n", d.Date.Format("Mon 01-02"), d.Count, d.Wins, d.Draws, d.Losses, d.Points)
	}
	b.WriteString("\n")

	b.WriteString("## Tier distribution\n\n")
	b.WriteString("| Tier | Records | Share |\n|---|---|---|\n")
	for _, t := range catalog.Tiers() {
		n := m.Distribution[t]
		share := 0.0
		if m.Total > 0 {
			share = float64(n) / float64(m.Total) * 100
		}
		fmt.Fprintf(&b, "| %s | %d | %.0f%% |\n", t, n, share)
	}
	return b.String()
}

func newAchievementsCmd(g *globalFlags) *cobra.Command {
	var lockedOnly bool

	cmd := &cobra.Command{
		Use:   "achievements",
		Short: "List achievements and which are unlocked",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, "Achievements"))
			var category engine.Category
			for _, a := range svc.Achievements() {
				if lockedOnly && a.Unlocked {
					continue
				}
				if a.Category != category {
					category = a.Category
					fmt.Fprintln(out, ui.H2.Render(string(category)))
				}
				mark := ui.IconLock
				name := ui.Muted.Render(a.Name)
				if a.Unlocked {
					mark = a.Icon
					name = ui.Gold.Render(a.Name)
				}
				fmt.Fprintf(out, "- %s %s %s %s\n", mark, name, ui.Muted.Render(a.Description), ui.Muted.Render(fmt.Sprintf("(+%d)", a.Reward)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&lockedOnly, "locked", false, "Only show achievements still locked")

	return cmd
}
