package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"clipper/internal/history"
	"clipper/internal/watch"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "Show pipeline run history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cmd.Context(), cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, run)
				}
				printRunDetail(cmd, run)
				return nil
			}

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, runs)
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortRunID(run.ID),
					run.Upload,
					watch.Humanize(string(run.State)),
					strconv.Itoa(run.ClipCount),
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					formatRunDuration(run),
				})
			}
			printTable(cmd, "No runs recorded.", []string{"Run", "Upload", "State", "Clips", "Started", "Duration"}, rows, 3, 5)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print runs as JSON")
	return cmd
}

func printRunDetail(cmd *cobra.Command, run history.Run) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintln(out, renderStatusLine("Run", statusInfo, run.ID, colorize))
	fmt.Fprintln(out, renderStatusLine("Upload", statusInfo, run.Upload, colorize))
	fmt.Fprintln(out, renderStatusLine("State", kindForState(run.State), watch.Humanize(string(run.State)), colorize))
	fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, formatRunDuration(run), colorize))
	if run.Summary != "" {
		fmt.Fprintln(out, renderStatusLine("Summary", statusOK, run.Summary, colorize))
	}
	if run.Error != "" {
		fmt.Fprintln(out, renderStatusLine("Error", statusError, run.Error, colorize))
	}
	rows := make([][]string, 0, len(run.Steps))
	for _, step := range run.Steps {
		rows = append(rows, []string{step.Label, watch.Humanize(string(step.State)), step.Detail})
	}
	printTable(cmd, "No steps recorded.", []string{"Step", "State", "Detail"}, rows)
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatRunDuration(run history.Run) string {
	if run.FinishedAt == nil {
		return "running"
	}
	return run.Duration().Round(time.Second).String()
}
