package subtitles

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"clipper/internal/clips"
	"clipper/internal/logging"
	"clipper/internal/services"
)

// Transcriber converts media into timed segments. workDir receives any
// intermediate files the engine produces.
type Transcriber interface {
	Transcribe(ctx context.Context, media, workDir string) ([]Segment, error)
}

// Generator writes subtitles.srt for every clip that has a raw segment.
type Generator struct {
	transcriber Transcriber
	logger      *slog.Logger
}

// NewGenerator constructs a Generator.
func NewGenerator(transcriber Transcriber, logger *slog.Logger) *Generator {
	return &Generator{transcriber: transcriber, logger: logging.NewComponentLogger(logger, "subtitles")}
}

// GenerateAll captions each clip in clipsDir and returns how many clips were
// transcribed. Clips without raw.mp4 are skipped.
func (g *Generator) GenerateAll(ctx context.Context, clipsDir string) (int, error) {
	ids, err := clips.List(clipsDir)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, id := range ids {
		dir := filepath.Join(clipsDir, id)
		if _, err := os.Stat(filepath.Join(dir, clips.RawFile)); err != nil {
			continue
		}
		if err := g.Generate(services.WithClipID(ctx, id), dir); err != nil {
			return done, err
		}
		done++
	}
	return done, nil
}

// Generate captions a single clip directory.
func (g *Generator) Generate(ctx context.Context, clipDir string) error {
	workDir, err := os.MkdirTemp(clipDir, ".transcribe-")
	if err != nil {
		return services.Wrap(services.ErrIO, "subtitles", "generate", "create work dir", err)
	}
	defer os.RemoveAll(workDir)

	segments, err := g.transcriber.Transcribe(ctx, filepath.Join(clipDir, clips.RawFile), workDir)
	if err != nil {
		return err
	}
	if err := WriteFile(filepath.Join(clipDir, clips.SubtitlesFile), segments); err != nil {
		return services.Wrap(services.ErrIO, "subtitles", "generate", "write srt", err)
	}
	logging.WithContext(ctx, g.logger).Info("subtitles written",
		logging.String(logging.FieldEventType, "subtitles_written"),
		logging.Int("cue_count", len(segments)),
	)
	return nil
}
