package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qinghezeng/research-gamification/internal/engine"
	"github.com/qinghezeng/research-gamification/internal/ui"
)

func newShopCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "List buffs that can be bought with stars",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			p := svc.Player()
			fmt.Fprintln(out, ui.Heading(ui.IconShop, "Shop"))
			fmt.Fprintln(out, ui.LabelValue("Stars", fmt.Sprintf("%s %d", ui.IconCoin, p.Currency)))
			for _, m := range engine.Modifiers() {
				cost := fmt.Sprintf("%d", m.Cost)
				if m.Cost > p.Currency {
					cost = ui.Bad.Render(cost)
				} else {
					cost = ui.Good.Render(cost)
				}
				fmt.Fprintf(out, "- %s %-14s %s %s %s\n", m.Icon, m.Name, cost, ui.Muted.Render(m.Description), ui.Muted.Render(fmt.Sprintf("[%s, owned %d]", m.Kind, p.Owned[m.Kind])))
			}
			return nil
		},
	}

	return cmd
}

func newBuyCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "buy <buff>",
		Short:   "Spend stars on a buff",
		Example: "  rr buy speed-boost\n  rr buy \"Perfect Judge\"",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("buff is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := engine.ParseModifier(joinArgs(args))
			if err != nil {
				return err
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Buy(ctx, kind); err != nil {
				return err
			}
			m, _ := engine.LookupModifier(kind)
			p := svc.Player()
			fmt.Fprintf(cmd.OutOrStdout(), "%s Bought %s %s (owned %d, %d stars left)\n", ui.IconDone, m.Icon, m.Name, p.Owned[kind], p.Currency)
			return nil
		},
	}

	return cmd
}
