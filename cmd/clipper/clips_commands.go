package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipper/internal/clips"
	"clipper/internal/daemonrun"
)

func newClipsCommand(ctx *commandContext) *cobra.Command {
	clipsCmd := &cobra.Command{
		Use:   "clips",
		Short: "Inspect and configure clips",
	}
	clipsCmd.AddCommand(newClipsListCommand(ctx))
	clipsCmd.AddCommand(newClipsShowCommand(ctx))
	clipsCmd.AddCommand(newClipsSetCommand(ctx))
	return clipsCmd
}

func newClipsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List clips in the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ids, err := clips.List(cfg.ClipsDir())
			if err != nil {
				return err
			}
			if jsonOut {
				infos := make([]clips.Info, 0, len(ids))
				for _, id := range ids {
					info, err := clips.Describe(cfg.ClipsDir(), id)
					if err != nil {
						return err
					}
					infos = append(infos, info)
				}
				return writeJSON(cmd, infos)
			}
			printClipTable(cmd, cfg.ClipsDir(), ids)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print clips as JSON")
	return cmd
}

func newClipsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a clip's render configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir, err := clips.Dir(cfg.ClipsDir(), args[0])
			if err != nil {
				return err
			}
			renderCfg, err := clips.LoadConfig(dir)
			if err != nil {
				return err
			}
			return writeJSON(cmd, renderCfg)
		},
	}
}

type clipSetFlags struct {
	x, y, w, h, outHeight int
	enabled               bool
	fontSize, marginV     int
}

func newClipsSetCommand(ctx *commandContext) *cobra.Command {
	var flags clipSetFlags

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Update a clip's facecam and subtitle settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return ctx.withRuntime(cmd, func(rt *daemonrun.Runtime) error {
				current, err := rt.Orchestrator.ClipConfig(id)
				if err != nil {
					return err
				}
				updated := applyClipFlags(cmd, current, flags)
				if err := rt.Orchestrator.SaveClipConfig(id, updated); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved render config for %s\n", id)
				return writeJSON(cmd, updated)
			})
		},
	}

	f := cmd.Flags()
	f.IntVar(&flags.x, "facecam-x", 0, "Facecam left edge in source pixels")
	f.IntVar(&flags.y, "facecam-y", 0, "Facecam top edge in source pixels")
	f.IntVar(&flags.w, "facecam-w", 0, "Facecam width in source pixels")
	f.IntVar(&flags.h, "facecam-h", 0, "Facecam height in source pixels")
	f.IntVar(&flags.outHeight, "facecam-out-height", 0, "Facecam band height in the output")
	f.BoolVar(&flags.enabled, "facecam-enabled", true, "Include the facecam band")
	f.IntVar(&flags.fontSize, "font-size", 0, "Subtitle font size")
	f.IntVar(&flags.marginV, "margin-v", 0, "Subtitle bottom margin")
	return cmd
}

// applyClipFlags overlays only the flags the user set.
func applyClipFlags(cmd *cobra.Command, cfg clips.RenderConfig, flags clipSetFlags) clips.RenderConfig {
	changed := cmd.Flags().Changed
	if changed("facecam-x") {
		cfg.Facecam.X = flags.x
	}
	if changed("facecam-y") {
		cfg.Facecam.Y = flags.y
	}
	if changed("facecam-w") {
		cfg.Facecam.W = flags.w
	}
	if changed("facecam-h") {
		cfg.Facecam.H = flags.h
	}
	if changed("facecam-out-height") {
		cfg.Facecam.OutHeight = flags.outHeight
	}
	if changed("facecam-enabled") {
		cfg.Facecam.Enabled = flags.enabled
	}
	if changed("font-size") {
		cfg.Subtitles.FontSize = flags.fontSize
	}
	if changed("margin-v") {
		cfg.Subtitles.MarginV = flags.marginV
	}
	return cfg
}
