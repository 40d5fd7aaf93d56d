package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipper/internal/daemonrun"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "render <id>",
		Short: "Compose the vertical preview for a clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *daemonrun.Runtime) error {
				path, err := rt.Orchestrator.Render(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s\n", path)
				return nil
			})
		},
	}
}
