// Package staging reclaims disk used by pipeline intermediates: uploaded
// source videos, extracted audio, and highlight artifacts.
package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipper/internal/logging"
)

// Result lists what a sweep removed and what it could not.
type Result struct {
	Removed []string
	Bytes   int64
	Errors  []CleanupError
}

// CleanupError pairs a path with its removal error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes regular files directly under each dir whose modification
// time is older than maxAge. Subdirectories are left alone. A non-positive
// maxAge disables the sweep.
func CleanStale(ctx context.Context, dirs []string, maxAge time.Duration, logger *slog.Logger) Result {
	var result Result
	if maxAge <= 0 {
		return result
	}
	cutoff := time.Now().Add(-maxAge)
	for _, dir := range dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
			}
			continue
		}
		for _, entry := range entries {
			if ctx.Err() != nil {
				return result
			}
			if !entry.Type().IsRegular() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			info, err := entry.Info()
			if err != nil {
				result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
				continue
			}
			if !info.ModTime().Before(cutoff) {
				continue
			}
			if err := os.Remove(path); err != nil {
				result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
				logging.WarnWithContext(logger, "failed to remove stale intermediate", "staging_cleanup_failed",
					logging.String("path", path),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check data_dir permissions"),
				)
				continue
			}
			result.Removed = append(result.Removed, path)
			result.Bytes += info.Size()
			if logger != nil {
				logger.Info("removed stale intermediate",
					logging.String("path", path),
					logging.Duration("age", time.Since(info.ModTime()).Round(time.Second)),
					logging.String(logging.FieldEventType, "staging_cleanup"),
				)
			}
		}
	}
	return result
}
