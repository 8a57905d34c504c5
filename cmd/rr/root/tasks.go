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

func newTasksCmd(g *globalFlags) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "tasks [tier]",
		Short: "List task templates per tier",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tiers := catalog.Tiers()
			if len(args) == 1 {
				t, err := catalog.ParseTier(args[0])
				if err != nil {
					return err
				}
				tiers = []catalog.Tier{t}
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			for _, t := range tiers {
				fmt.Fprintln(out, ui.TierBadge(t)+" "+ui.H2.Render("tasks"))
				if all {
					for _, e := range svc.ListAll(t) {
						tags := ""
						if !e.BuiltIn {
							tags += " " + ui.Good.Render("custom")
						}
						if e.Hidden {
							tags += " " + ui.Muted.Render("hidden")
						}
						fmt.Fprintf(out, "- %-28s %4d  %-8s%s\n", e.Name, e.BaseScore, e.Duration, tags)
					}
				} else {
					for _, tpl := range svc.ListVisible(t) {
						fmt.Fprintf(out, "- %-28s %4d  %s\n", tpl.Name, tpl.BaseScore, ui.Muted.Render(tpl.Duration))
					}
				}
				fmt.Fprintln(out, "")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include hidden templates and show provenance")

	cmd.AddCommand(
		newTasksAddCmd(g),
		newTasksHideCmd(g),
		newTasksShowCmd(g),
		newTasksEditCmd(g),
		newTasksMoveCmd(g),
	)

	return cmd
}

func tierAndName(args []string) (catalog.Tier, string, error) {
	if len(args) < 2 {
		return "", "", errors.New("tier and task name are required")
	}
	t, err := catalog.ParseTier(args[0])
	if err != nil {
		return "", "", err
	}
	return t, joinArgs(args[1:]), nil
}

func newTasksAddCmd(g *globalFlags) *cobra.Command {
	var score int
	var duration string
	var desc string

	cmd := &cobra.Command{
		Use:   "add <tier> <name>",
		Short: "Create a custom task template",
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, name, err := tierAndName(args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("score") {
				return errors.New("--score is required")
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			tpl := catalog.Template{Name: name, BaseScore: score, Duration: duration, Description: desc}
			if _, err := svc.CreateTemplate(ctx, tier, tpl); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s %s (%d)\n", ui.IconPlus, ui.TierBadge(tier), name, score)
			printUnlocks(cmd.OutOrStdout(), svc)
			return nil
		},
	}

	cmd.Flags().IntVarP(&score, "score", "s", 0, "Base score (required, not negative)")
	cmd.Flags().StringVarP(&duration, "time", "t", "", "Expected duration, free text")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "Description")

	return cmd
}

func newTasksHideCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hide <tier> <name>",
		Short: "Hide a built-in template or delete a custom one",
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, name, err := tierAndName(args)
			if err != nil {
				return err
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.HideTemplate(ctx, tier, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %s %s from the list\n", ui.IconInfo, ui.TierBadge(tier), name)
			printUnlocks(cmd.OutOrStdout(), svc)
			return nil
		},
	}

	return cmd
}

func newTasksShowCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <tier> <name>",
		Short: "Unhide a hidden template",
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, name, err := tierAndName(args)
			if err != nil {
				return err
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.ShowTemplate(ctx, tier, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s is visible\n", ui.IconDone, ui.TierBadge(tier), name)
			return nil
		},
	}

	return cmd
}

func newTasksEditCmd(g *globalFlags) *cobra.Command {
	var newName string
	var score int
	var duration string
	var desc string
	var newTier string

	cmd := &cobra.Command{
		Use:   "edit <tier> <name>",
		Short: "Edit a template; unset flags keep the current value",
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, name, err := tierAndName(args)
			if err != nil {
				return err
			}
			dest := tier
			if newTier != "" {
				if dest, err = catalog.ParseTier(newTier); err != nil {
					return err
				}
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			tpl, err := findTemplate(svc, tier, name)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				tpl.Name = newName
			}
			if flags.Changed("score") {
				tpl.BaseScore = score
			}
			if flags.Changed("time") {
				tpl.Duration = duration
			}
			if flags.Changed("desc") {
				tpl.Description = desc
			}

			if err := svc.EditTemplate(ctx, tier, name, dest, tpl); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Saved %s %s (%d)\n", ui.IconDone, ui.TierBadge(dest), tpl.Name, tpl.BaseScore)
			return nil
		},
	}

	cmd.Flags().StringVar(&newName, "name", "", "New name")
	cmd.Flags().IntVarP(&score, "score", "s", 0, "New base score")
	cmd.Flags().StringVarP(&duration, "time", "t", "", "New expected duration")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "New description")
	cmd.Flags().StringVar(&newTier, "tier", "", "Move the template to another tier")

	return cmd
}

func findTemplate(svc *engine.Service, tier catalog.Tier, name string) (catalog.Template, error) {
	for _, e := range svc.ListAll(tier) {
		if e.Name == name {
			return e.Template, nil
		}
	}
	return catalog.Template{}, fmt.Errorf("%w: %s/%s", catalog.ErrNotFound, tier, name)
}

func newTasksMoveCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <tier> <name> <up|down>",
		Short: "Move a template one place in its tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 {
				return errors.New("tier, task name and direction are required")
			}
			dir, err := catalog.ParseDirection(args[len(args)-1])
			if err != nil {
				return err
			}
			tier, name, err := tierAndName(args[:len(args)-1])
			if err != nil {
				return err
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.MoveTemplate(ctx, tier, name, dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Moved %s %s %s\n", ui.IconDone, ui.TierBadge(tier), name, dir)
			return nil
		},
	}

	return cmd
}
