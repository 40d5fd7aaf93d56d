package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"clipper/internal/clips"
	"clipper/internal/config"
	"clipper/internal/fileutil"
	"clipper/internal/highlight"
	"clipper/internal/history"
	"clipper/internal/logging"
	"clipper/internal/media/ffmpeg"
	"clipper/internal/media/ffprobe"
	"clipper/internal/notifications"
	"clipper/internal/render"
	"clipper/internal/services"
	"clipper/internal/status"
	"clipper/internal/subtitles"
	"clipper/internal/textutil"
	"clipper/internal/workspace"
)

const notifyTimeout = 15 * time.Second

// Upload is the source video for a run.
type Upload struct {
	Name string
	Body io.Reader
}

// Recorder keeps a durable record of runs.
type Recorder interface {
	Begin(ctx context.Context, id, upload string) error
	Finish(ctx context.Context, id string, outcome history.Outcome) error
}

// Deps wires the orchestrator to its collaborators. History and Notifier are
// optional.
type Deps struct {
	Config      *config.Config
	Status      status.Store
	History     Recorder
	Notifier    notifications.Service
	Lock        *workspace.Lock
	Transcoder  ffmpeg.Transcoder
	Prober      ffprobe.Prober
	Transcriber subtitles.Transcriber
	Logger      *slog.Logger
}

// Orchestrator runs the pipeline and guards workspace writers.
type Orchestrator struct {
	cfg       *config.Config
	status    status.Store
	history   Recorder
	notifier  notifications.Service
	lock      *workspace.Lock
	detector  *highlight.Detector
	segmenter *clips.Segmenter
	generator *subtitles.Generator
	renderer  *render.Renderer
	extractor ffmpeg.Transcoder
	logger    *slog.Logger
	newRunID  func() string
}

// New constructs an Orchestrator.
func New(deps Deps) (*Orchestrator, error) {
	if deps.Config == nil || deps.Status == nil || deps.Lock == nil {
		return nil, errors.New("pipeline requires config, status store, and workspace lock")
	}
	if deps.Transcoder == nil || deps.Prober == nil || deps.Transcriber == nil {
		return nil, errors.New("pipeline requires transcoder, prober, and transcriber")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	cfg := deps.Config
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NewService(nil)
	}
	return &Orchestrator{
		cfg:       cfg,
		status:    deps.Status,
		history:   deps.History,
		notifier:  notifier,
		lock:      deps.Lock,
		detector:  highlight.NewDetector(highlight.OptionsFromConfig(cfg.Detection), deps.Transcoder, deps.Prober, logger),
		segmenter: clips.NewSegmenter(deps.Transcoder, cfg.Clips.Duration, logger),
		generator: subtitles.NewGenerator(deps.Transcriber, logger),
		renderer:  render.NewRenderer(deps.Transcoder, deps.Prober, logger),
		extractor: deps.Transcoder,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
		newRunID:  uuid.NewString,
	}, nil
}

// Process stores the upload and runs every stage. It returns the produced
// clip ids, workspace.ErrBusy when another writer is active, or a
// *StageError naming the failed stage.
func (o *Orchestrator) Process(ctx context.Context, upload Upload) ([]string, error) {
	release, err := o.lock.TryAcquire()
	if err != nil {
		return nil, err
	}
	defer release()

	runID := o.newRunID()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, o.logger)
	name := textutil.SanitizeFileName(upload.Name)
	if name == "" {
		name = filepath.Base(o.cfg.SourceVideoPath())
	}

	if err := o.status.Reset(name, runID); err != nil {
		return nil, err
	}
	o.beginHistory(ctx, logger, runID, name)
	logger.Info("run started",
		logging.String("upload", name),
		logging.String(logging.FieldEventType, "run_started"),
	)
	started := time.Now()

	var clipIDs []string
	stages := []Stage{
		{
			ID:      status.StepUpload,
			Running: "Saving upload",
			Run: func(context.Context) (string, error) {
				if upload.Body == nil {
					return "", services.Wrap(services.ErrValidation, "pipeline", "upload", "empty upload body", nil)
				}
				written, err := fileutil.CopyReader(upload.Body, o.cfg.SourceVideoPath())
				if errors.Is(err, fileutil.ErrEmpty) {
					return "", services.Wrap(services.ErrValidation, "pipeline", "upload", "upload is empty: "+name, nil)
				}
				if err != nil {
					return "", services.Wrap(services.ErrIO, "pipeline", "upload", o.cfg.SourceVideoPath(), err)
				}
				return fmt.Sprintf("Saved %s (%s)", name, formatBytes(written)), nil
			},
		},
		{
			ID:      status.StepExtractAudio,
			Running: "Extracting audio track",
			Run: func(ctx context.Context) (string, error) {
				if err := o.extractor.ExtractAudio(ctx, o.cfg.SourceVideoPath(), o.cfg.AudioPath(), o.cfg.Detection.SampleRate); err != nil {
					return "", err
				}
				return fmt.Sprintf("Extracted mono audio at %d Hz", o.cfg.Detection.SampleRate), nil
			},
		},
		{
			ID:      status.StepDetectHighlights,
			Running: "Analysing audio energy and motion",
			Run: func(ctx context.Context) (string, error) {
				found, err := o.detector.Detect(ctx, o.cfg.SourceVideoPath(), o.cfg.AudioPath(), o.cfg.HighlightsPath())
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Found %d highlight(s)", len(found)), nil
			},
		},
		{
			ID:      status.StepCutClips,
			Running: "Cutting clips",
			Run: func(ctx context.Context) (string, error) {
				ids, err := o.segmenter.Cut(ctx, o.cfg.SourceVideoPath(), o.cfg.HighlightsPath(), o.cfg.ClipsDir())
				if err != nil {
					return "", err
				}
				clipIDs = ids
				return fmt.Sprintf("Created %d clip(s)", len(ids)), nil
			},
		},
		{
			ID:      status.StepGenerateSubtitles,
			Running: "Transcribing clips",
			Run: func(ctx context.Context) (string, error) {
				done, err := o.generator.GenerateAll(ctx, o.cfg.ClipsDir())
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Transcribed %d clip(s)", done), nil
			},
		},
	}

	if err := Sequence(ctx, o.status, stages); err != nil {
		var stageErr *StageError
		failedStage := ""
		if errors.As(err, &stageErr) {
			failedStage = string(stageErr.Stage)
			logger.Error("run failed",
				logging.String(logging.FieldStage, failedStage),
				logging.String("error_kind", services.Kind(stageErr.Err)),
				logging.String(logging.FieldEventType, "run_failed"),
				logging.Error(stageErr.Err),
			)
		}
		o.finishHistory(ctx, logger, runID, history.Outcome{
			State:     status.StateError,
			Error:     err.Error(),
			ClipCount: len(clipIDs),
		})
		o.notify(logger, func(nctx context.Context) error {
			return o.notifier.NotifyRunFailed(nctx, name, failedStage, err)
		})
		return nil, err
	}

	summary := fmt.Sprintf("Created %d clip(s).", len(clipIDs))
	if err := o.status.Complete(summary); err != nil {
		return nil, err
	}
	o.finishHistory(ctx, logger, runID, history.Outcome{
		State:     status.StateCompleted,
		Summary:   summary,
		ClipCount: len(clipIDs),
	})
	elapsed := time.Since(started)
	logger.Info("run completed",
		logging.Int("clips", len(clipIDs)),
		logging.Duration("elapsed", elapsed),
		logging.String(logging.FieldEventType, "run_completed"),
	)
	o.notify(logger, func(nctx context.Context) error {
		return o.notifier.NotifyRunCompleted(nctx, name, len(clipIDs), elapsed)
	})
	if clipIDs == nil {
		clipIDs = []string{}
	}
	return clipIDs, nil
}

// Status returns the current status document.
func (o *Orchestrator) Status() (status.Status, error) {
	return o.status.Read()
}

// Clips lists clip ids in ordinal order.
func (o *Orchestrator) Clips() ([]string, error) {
	return clips.List(o.cfg.ClipsDir())
}

// ClipConfig returns the render config for id, materializing defaults.
func (o *Orchestrator) ClipConfig(id string) (clips.RenderConfig, error) {
	dir, err := clips.Dir(o.cfg.ClipsDir(), id)
	if err != nil {
		return clips.RenderConfig{}, err
	}
	return clips.LoadConfig(dir)
}

// SaveClipConfig validates and stores the render config for id.
func (o *Orchestrator) SaveClipConfig(id string, cfg clips.RenderConfig) error {
	dir, err := clips.Dir(o.cfg.ClipsDir(), id)
	if err != nil {
		return err
	}
	release, err := o.lock.TryAcquire()
	if err != nil {
		return err
	}
	defer release()
	return clips.SaveConfig(dir, cfg)
}

// Render composes the preview for id and returns its path.
func (o *Orchestrator) Render(ctx context.Context, id string) (string, error) {
	dir, err := clips.Dir(o.cfg.ClipsDir(), id)
	if err != nil {
		return "", err
	}
	release, err := o.lock.TryAcquire()
	if err != nil {
		return "", err
	}
	defer release()
	ctx = services.WithClipID(ctx, id)
	path, err := o.renderer.Render(ctx, dir)
	if err != nil {
		return "", err
	}
	o.notify(logging.WithContext(ctx, o.logger), func(nctx context.Context) error {
		return o.notifier.NotifyRenderCompleted(nctx, id)
	})
	return path, nil
}

func (o *Orchestrator) beginHistory(ctx context.Context, logger *slog.Logger, runID, upload string) {
	if o.history == nil {
		return
	}
	if err := o.history.Begin(ctx, runID, upload); err != nil {
		logger.Warn("run history unavailable",
			logging.Error(err),
			logging.String(logging.FieldEventType, "history_begin_failed"),
			logging.String(logging.FieldErrorHint, "check history.db permissions"),
		)
	}
}

func (o *Orchestrator) finishHistory(ctx context.Context, logger *slog.Logger, runID string, outcome history.Outcome) {
	if o.history == nil {
		return
	}
	if doc, err := o.status.Read(); err == nil {
		outcome.Steps = doc.Steps
	}
	// The run context may already be cancelled; the record should still land.
	if err := o.history.Finish(context.WithoutCancel(ctx), runID, outcome); err != nil {
		logger.Warn("failed to record run outcome",
			logging.Error(err),
			logging.String(logging.FieldEventType, "history_finish_failed"),
		)
	}
}

// notify delivers a notification without failing the caller.
func (o *Orchestrator) notify(logger *slog.Logger, send func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := send(ctx); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
