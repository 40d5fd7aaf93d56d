package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"clipper/internal/status"
	"clipper/internal/watch"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the progress of the current or last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			doc, err := status.NewFileStore(cfg.StatusPath()).Read()
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, doc)
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderStatus(doc, shouldColorize(out)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the status document as JSON")
	return cmd
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var interval time.Duration
	var exitWhenDone bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow pipeline progress live",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := status.NewFileStore(cfg.StatusPath())
			program := tea.NewProgram(
				watch.New(store.Read, interval, exitWhenDone),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = program.Run()
			return err
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Polling interval")
	cmd.Flags().BoolVar(&exitWhenDone, "exit", false, "Exit once the run completes or fails")
	return cmd
}
