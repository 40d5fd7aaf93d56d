package render

import (
	"fmt"
	"strings"

	"clipper/internal/clips"
)

// Output frame size.
const (
	OutputWidth  = 1080
	OutputHeight = 1920
)

// Composition is the deterministic ffmpeg description of one render.
type Composition struct {
	Filter   string
	Captions bool
}

// Compose builds the filter graph for cfg. It has no side effects; equal
// inputs always produce equal output.
func Compose(cfg clips.RenderConfig, hasCaptions bool) Composition {
	var graph strings.Builder
	gameplay := "crop=ih*9/16:ih:(iw-ih*9/16)/2:0"
	if cfg.Facecam.Enabled {
		fc := cfg.Facecam
		fmt.Fprintf(&graph, "[0:v]crop=%d:%d:%d:%d,scale=%d:%d[face];", fc.W, fc.H, fc.X, fc.Y, OutputWidth, fc.OutHeight)
		fmt.Fprintf(&graph, "[0:v]%s,scale=%d:%d[game];", gameplay, OutputWidth, OutputHeight-fc.OutHeight)
		graph.WriteString("[face][game]vstack=inputs=2")
	} else {
		fmt.Fprintf(&graph, "[0:v]%s,scale=%d:%d", gameplay, OutputWidth, OutputHeight)
	}
	if hasCaptions {
		fmt.Fprintf(&graph, ",subtitles=%s:force_style='FontSize=%d,MarginV=%d'",
			clips.SubtitlesFile, cfg.Subtitles.FontSize, cfg.Subtitles.MarginV)
	}
	return Composition{Filter: graph.String(), Captions: hasCaptions}
}
