package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"clipper/internal/clips"
	"clipper/internal/daemonrun"
	"clipper/internal/pipeline"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <video>",
		Short: "Run the full pipeline on a local video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open video: %w", err)
			}
			defer file.Close()

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return ctx.withRuntime(cmd, func(rt *daemonrun.Runtime) error {
				ids, err := rt.Orchestrator.Process(runCtx, pipeline.Upload{Name: filepath.Base(args[0]), Body: file})
				if err != nil {
					return err
				}
				printClipTable(cmd, rt.Config.ClipsDir(), ids)
				fmt.Fprintf(cmd.OutOrStdout(), "Created %d clip(s).\n", len(ids))
				return nil
			})
		},
	}
}

func printClipTable(cmd *cobra.Command, clipsDir string, ids []string) {
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		info, err := clips.Describe(clipsDir, id)
		if err != nil {
			rows = append(rows, []string{id, "?", "?", "?"})
			continue
		}
		rows = append(rows, []string{info.ID, yesNo(info.HasRaw), yesNo(info.HasSubtitles), yesNo(info.HasPreview)})
	}
	printTable(cmd, "No clips.", []string{"Clip", "Raw", "Subtitles", "Preview"}, rows)
}
