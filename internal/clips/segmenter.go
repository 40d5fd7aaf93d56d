package clips

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"clipper/internal/highlight"
	"clipper/internal/logging"
	"clipper/internal/media/ffmpeg"
	"clipper/internal/services"
)

// Segmenter turns highlight timestamps into clip directories.
type Segmenter struct {
	transcoder ffmpeg.Transcoder
	duration   float64
	logger     *slog.Logger
}

// NewSegmenter constructs a Segmenter cutting clips of durationSeconds.
func NewSegmenter(transcoder ffmpeg.Transcoder, durationSeconds int, logger *slog.Logger) *Segmenter {
	return &Segmenter{
		transcoder: transcoder,
		duration:   float64(durationSeconds),
		logger:     logging.NewComponentLogger(logger, "clips"),
	}
}

// Cut reads the highlight artifact, trims one raw segment per highlight into
// clipsDir, and removes clip directories this run did not produce. It returns
// the produced ids in ordinal order. A missing artifact fails before any clip
// is touched.
func (s *Segmenter) Cut(ctx context.Context, source, artifactPath, clipsDir string) ([]string, error) {
	highlights, err := highlight.ReadArtifact(artifactPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(clipsDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, "clips", "cut", clipsDir, err)
	}

	ids := make([]string, 0, len(highlights))
	for i, start := range highlights {
		id := ClipID(i + 1)
		clipCtx := services.WithClipID(ctx, id)
		dir := filepath.Join(clipsDir, id)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrIO, "clips", "cut", dir, err)
		}
		if err := s.transcoder.Trim(clipCtx, source, filepath.Join(dir, RawFile), float64(start), s.duration); err != nil {
			return nil, err
		}
		if _, err := os.Stat(filepath.Join(dir, ConfigFile)); os.IsNotExist(err) {
			if err := writeConfig(filepath.Join(dir, ConfigFile), DefaultRenderConfig()); err != nil {
				return nil, err
			}
		}
		logging.WithContext(clipCtx, s.logger).Debug("clip cut",
			logging.Int("start_seconds", start),
			logging.Float64("duration_seconds", s.duration),
		)
		ids = append(ids, id)
	}

	removed, err := s.reconcile(ctx, clipsDir, ids)
	if err != nil {
		return nil, err
	}
	logging.WithContext(ctx, s.logger).Info("clips cut",
		logging.String(logging.FieldEventType, "clips_cut"),
		logging.Int("clip_count", len(ids)),
		logging.Int("removed_count", removed),
	)
	return ids, nil
}

// reconcile deletes clip directories not in keep. Entries that are not clip
// directories are left alone.
func (s *Segmenter) reconcile(ctx context.Context, clipsDir string, keep []string) (int, error) {
	existing, err := List(clipsDir)
	if err != nil {
		return 0, err
	}
	wanted := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		wanted[id] = struct{}{}
	}
	removed := 0
	for _, id := range existing {
		if _, ok := wanted[id]; ok {
			continue
		}
		if err := os.RemoveAll(filepath.Join(clipsDir, id)); err != nil {
			return removed, services.Wrap(services.ErrIO, "clips", "reconcile", fmt.Sprintf("remove stale %s", id), err)
		}
		removed++
		logging.WithContext(services.WithClipID(ctx, id), s.logger).Info("stale clip removed",
			logging.String(logging.FieldEventType, "clip_removed"),
		)
	}
	return removed, nil
}
