// Package daemonrun assembles clipper's runtime from configuration: the real
// ffmpeg, ffprobe, and WhisperX adapters, the status and history stores, the
// orchestrator, and for "serve" the API server and daemon.
package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"clipper/internal/api"
	"clipper/internal/config"
	"clipper/internal/daemon"
	"clipper/internal/history"
	"clipper/internal/language"
	"clipper/internal/logging"
	"clipper/internal/media/ffmpeg"
	"clipper/internal/media/ffprobe"
	"clipper/internal/notifications"
	"clipper/internal/pipeline"
	"clipper/internal/services/whisperx"
	"clipper/internal/status"
	"clipper/internal/workspace"
)

// Runtime holds the wired components for one process.
type Runtime struct {
	Config       *config.Config
	Logger       *slog.Logger
	Status       *status.FileStore
	History      *history.Store
	Orchestrator *pipeline.Orchestrator
}

// Close releases the history database.
func (r *Runtime) Close() error {
	if r == nil || r.History == nil {
		return nil
	}
	return r.History.Close()
}

// Build wires the pipeline against the real external tools.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	hist, err := history.Open(ctx, cfg.HistoryPath())
	if err != nil {
		return nil, err
	}
	store := status.NewFileStore(cfg.StatusPath())
	transcriber := whisperx.NewService(whisperx.Config{
		Model:       cfg.Transcription.WhisperXModel,
		CUDAEnabled: cfg.Transcription.CUDAEnabled,
		Language:    cfg.Transcription.Language,
		UVXBinary:   cfg.Tools.UVX,
	})
	orch, err := pipeline.New(pipeline.Deps{
		Config:      cfg,
		Status:      store,
		History:     hist,
		Notifier:    notifications.NewService(cfg),
		Lock:        workspace.New(cfg.LockPath()),
		Transcoder:  ffmpeg.New(cfg.Tools.FFmpeg),
		Prober:      ffprobe.CLI{Binary: cfg.Tools.FFprobe},
		Transcriber: transcriber,
		Logger:      logger,
	})
	if err != nil {
		_ = hist.Close()
		return nil, err
	}
	return &Runtime{Config: cfg, Logger: logger, Status: store, History: hist, Orchestrator: orch}, nil
}

// Serve runs the API and maintenance schedule until SIGINT or SIGTERM.
func Serve(cmdCtx context.Context, cfg *config.Config, logger *slog.Logger) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := Build(signalCtx, cfg, logger)
	if err != nil {
		logger.Error("runtime setup failed", logging.Error(err))
		return err
	}
	defer rt.Close()
	logDependencySnapshot(logger, cfg)

	server, err := api.NewServer(api.Options{
		Config:   cfg,
		Pipeline: rt.Orchestrator,
		History:  rt.History,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	d, err := daemon.New(cfg, server, rt.History, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(signalCtx); err != nil {
		return err
	}
	defer d.Stop()

	<-signalCtx.Done()
	logger.Info("clipper server shutting down", logging.String(logging.FieldEventType, "shutdown"))
	return nil
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("dependency snapshot",
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("ffmpeg_available", binaryAvailable(cfg.Tools.FFmpeg)),
		logging.String("ffmpeg_binary", cfg.Tools.FFmpeg),
		logging.Bool("ffprobe_available", binaryAvailable(cfg.Tools.FFprobe)),
		logging.String("ffprobe_binary", cfg.Tools.FFprobe),
		logging.Bool("uvx_available", binaryAvailable(cfg.Tools.UVX)),
		logging.String("whisperx_model", cfg.Transcription.WhisperXModel),
		logging.Bool("whisperx_cuda", cfg.Transcription.CUDAEnabled),
		logging.String("whisperx_language", language.DisplayName(cfg.Transcription.Language)),
		logging.Bool("ntfy_enabled", cfg.Notifications.NtfyTopic != ""),
		logging.Bool("api_token_set", strings.TrimSpace(cfg.Paths.APIToken) != ""),
	)
}

func binaryAvailable(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
