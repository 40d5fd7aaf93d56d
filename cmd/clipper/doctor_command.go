package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipper/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and data directory access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := preflight.RunAll(cmd.Context(), cfg)
			if jsonOut {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printReport(cmd, report)
			}
			if !report.OK {
				return fmt.Errorf("preflight failed: %s", strings.Join(report.Failures(), "; "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	return cmd
}

func printReport(cmd *cobra.Command, report preflight.Report) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintln(out, "Dependencies")
	for _, dep := range report.Dependencies {
		kind, message := statusOK, dep.Path
		if !dep.Available {
			kind, message = statusError, dep.Detail
		}
		fmt.Fprintln(out, renderStatusLine(dep.Name, kind, message, colorize))
	}
	fmt.Fprintln(out, "Directories")
	for _, check := range report.Checks {
		kind := statusOK
		if !check.Passed {
			kind = statusError
		}
		fmt.Fprintln(out, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}
}
