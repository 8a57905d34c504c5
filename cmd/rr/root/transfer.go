package root

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qinghezeng/research-gamification/internal/engine"
	"github.com/qinghezeng/research-gamification/internal/ui"
)

func formatFor(path, explicit string) (engine.Format, error) {
	switch explicit {
	case "":
		return engine.FormatFromPath(path), nil
	case string(engine.FormatJSON), string(engine.FormatYAML):
		return engine.Format(explicit), nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or yaml)", explicit)
	}
}

func newExportCmd(g *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write all state to a JSON or YAML file",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("file is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formatFor(args[0], format)
			if err != nil {
				return err
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			data, err := svc.Export(f)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Exported %d records to %s\n", ui.IconDone, len(svc.Player().Log), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from the file extension)")

	return cmd
}

func newImportCmd(g *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all state with an exported file",
		Long: `Replace all state with the contents of an export.

Unknown fields are ignored and missing ones take their defaults. Fields
that cannot be read are reported and skipped; the rest is imported.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("file is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formatFor(args[0], format)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.Import(ctx, data, f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Imported %d records", ui.IconDone, len(svc.Player().Log))
			if !res.Info.ExportedAt.IsZero() {
				fmt.Fprintf(out, " exported %s", res.Info.ExportedAt.Format("2006-01-02 15:04"))
			}
			fmt.Fprintln(out)
			for _, m := range res.Malformed {
				fmt.Fprintln(out, ui.Warn.Render(ui.IconWarn+" skipped "+m.Error()))
			}
			printUnlocks(out, svc)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from the file extension)")

	return cmd
}

func newResetCmd(g *globalFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear score, records, stars, buffs, achievements and custom tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset clears all progress; rerun with --yes to confirm")
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.ResetAll(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.IconDone+" Progress reset.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")

	return cmd
}
