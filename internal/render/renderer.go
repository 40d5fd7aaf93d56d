package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"clipper/internal/clips"
	"clipper/internal/fileutil"
	"clipper/internal/logging"
	"clipper/internal/media/ffmpeg"
	"clipper/internal/media/ffprobe"
	"clipper/internal/services"
)

// Renderer produces preview.mp4 for a clip directory.
type Renderer struct {
	transcoder ffmpeg.Transcoder
	prober     ffprobe.Prober
	logger     *slog.Logger
}

// NewRenderer constructs a Renderer.
func NewRenderer(transcoder ffmpeg.Transcoder, prober ffprobe.Prober, logger *slog.Logger) *Renderer {
	return &Renderer{
		transcoder: transcoder,
		prober:     prober,
		logger:     logging.NewComponentLogger(logger, "render"),
	}
}

// Render composes and encodes clipDir/preview.mp4 and returns its path.
func (r *Renderer) Render(ctx context.Context, clipDir string) (string, error) {
	ctx = services.WithClipID(ctx, filepath.Base(clipDir))
	logger := logging.WithContext(ctx, r.logger)
	started := time.Now()

	rawPath := filepath.Join(clipDir, clips.RawFile)
	if _, err := os.Stat(rawPath); err != nil {
		return "", services.Wrap(services.ErrNotFound, "render", "render", "raw segment missing: "+rawPath, nil)
	}
	cfg, err := clips.LoadConfig(clipDir)
	if err != nil {
		return "", err
	}
	if err := cfg.Validate(); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "render", "config", "invalid "+clips.ConfigFile, err)
	}
	if cfg.Facecam.Enabled {
		if err := r.checkFacecam(ctx, rawPath, cfg.Facecam); err != nil {
			return "", err
		}
	}

	captions := fileutil.NonEmpty(filepath.Join(clipDir, clips.SubtitlesFile))
	comp := Compose(cfg, captions)
	job := ffmpeg.FilterJob{
		Dir:    clipDir,
		Input:  clips.RawFile,
		Output: clips.PreviewFile,
		Filter: comp.Filter,
	}
	if err := r.transcoder.FilterMux(ctx, job); err != nil {
		return "", err
	}
	logger.Info("preview rendered",
		logging.String(logging.FieldEventType, "preview_rendered"),
		logging.Bool("captions", captions),
		logging.Bool("facecam", cfg.Facecam.Enabled),
		logging.Duration("render_duration", time.Since(started)),
	)
	return filepath.Join(clipDir, clips.PreviewFile), nil
}

func (r *Renderer) checkFacecam(ctx context.Context, rawPath string, fc clips.Facecam) error {
	probe, err := r.prober.Inspect(ctx, rawPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "probe", "inspect raw segment", err)
	}
	stream, ok := probe.VideoStream()
	if !ok {
		return services.Wrap(services.ErrValidation, "render", "probe", "raw segment has no video stream", nil)
	}
	if fc.X < 0 || fc.Y < 0 || fc.X+fc.W > stream.Width || fc.Y+fc.H > stream.Height {
		return services.Wrap(services.ErrConfiguration, "render", "facecam",
			fmt.Sprintf("facecam %dx%d+%d+%d outside %dx%d frame", fc.W, fc.H, fc.X, fc.Y, stream.Width, stream.Height), nil)
	}
	return nil
}
