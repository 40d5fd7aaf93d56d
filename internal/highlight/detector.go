package highlight

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"clipper/internal/config"
	"clipper/internal/logging"
	"clipper/internal/media/ffmpeg"
	"clipper/internal/media/ffprobe"
)

// Options holds the detector thresholds.
type Options struct {
	AudioWindow     float64
	AudioMultiplier float64
	Motion          MotionOptions
	MinGap          float64
	MatchWindow     float64
}

// OptionsFromConfig maps the [detection] config section to detector options.
func OptionsFromConfig(d config.Detection) Options {
	return Options{
		AudioWindow:     d.AudioWindow,
		AudioMultiplier: d.AudioMultiplier,
		Motion: MotionOptions{
			FrameSkip: d.FrameSkip,
			Threshold: d.VisualThreshold,
			ROI:       ffmpeg.Rect{X: d.ROIX, Y: d.ROIY, W: d.ROIW, H: d.ROIH},
		},
		MinGap:      float64(d.MinGap),
		MatchWindow: d.MatchWindow,
	}
}

// Detector runs both passes and fuses their hits.
type Detector struct {
	opts       Options
	transcoder ffmpeg.Transcoder
	prober     ffprobe.Prober
	logger     *slog.Logger
}

// NewDetector constructs a Detector.
func NewDetector(opts Options, transcoder ffmpeg.Transcoder, prober ffprobe.Prober, logger *slog.Logger) *Detector {
	return &Detector{
		opts:       opts,
		transcoder: transcoder,
		prober:     prober,
		logger:     logging.NewComponentLogger(logger, "highlight"),
	}
}

// Detect analyses videoPath and audioPath, writes the artifact to outPath, and
// returns the accepted highlight seconds.
func (d *Detector) Detect(ctx context.Context, videoPath, audioPath, outPath string) ([]int, error) {
	logger := logging.WithContext(ctx, d.logger)
	started := time.Now()

	var audioHits, visualHits []float64
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		hits, err := AudioHits(audioPath, d.opts.AudioWindow, d.opts.AudioMultiplier)
		audioHits = hits
		return err
	})
	group.Go(func() error {
		hits, err := MotionHits(groupCtx, d.transcoder, d.prober, videoPath, d.opts.Motion)
		visualHits = hits
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	highlights := Fuse(audioHits, visualHits, d.opts.MinGap, d.opts.MatchWindow)
	if err := WriteArtifact(outPath, highlights); err != nil {
		return nil, err
	}
	logger.Info("highlights detected",
		logging.String(logging.FieldEventType, "highlights_detected"),
		logging.Int("audio_hits", len(audioHits)),
		logging.Int("visual_hits", len(visualHits)),
		logging.Int("highlights", len(highlights)),
		logging.Duration("detect_duration", time.Since(started)),
	)
	return highlights, nil
}
