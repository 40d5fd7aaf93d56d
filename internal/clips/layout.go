package clips

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"clipper/internal/fileutil"
	"clipper/internal/services"
)

// Clip artifact file names.
const (
	RawFile       = "raw.mp4"
	ConfigFile    = "config.json"
	SubtitlesFile = "subtitles.srt"
	PreviewFile   = "preview.mp4"
)

var clipIDPattern = regexp.MustCompile(`^clip_\d+$`)

// ClipID returns the directory name for the 1-based ordinal.
func ClipID(ordinal int) string {
	return fmt.Sprintf("clip_%02d", ordinal)
}

// ValidID reports whether id names a clip directory.
func ValidID(id string) bool {
	return clipIDPattern.MatchString(id)
}

// Dir resolves a clip directory, rejecting ids that are not clip names.
func Dir(clipsDir, id string) (string, error) {
	if !ValidID(id) {
		return "", services.Wrap(services.ErrValidation, "clips", "resolve", fmt.Sprintf("invalid clip id %q", id), nil)
	}
	return filepath.Join(clipsDir, id), nil
}

// List returns the clip directory names under clipsDir in sorted order. A
// missing directory yields an empty list.
func List(clipsDir string) ([]string, error) {
	entries, err := os.ReadDir(clipsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, services.Wrap(services.ErrIO, "clips", "list", clipsDir, err)
	}
	ids := []string{}
	for _, entry := range entries {
		if entry.IsDir() && ValidID(entry.Name()) {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Info summarizes one clip directory.
type Info struct {
	ID           string `json:"id"`
	HasRaw       bool   `json:"has_raw"`
	HasSubtitles bool   `json:"has_subtitles"`
	HasPreview   bool   `json:"has_preview"`
}

// Describe reports which artifacts exist for id.
func Describe(clipsDir, id string) (Info, error) {
	dir, err := Dir(clipsDir, id)
	if err != nil {
		return Info{}, err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return Info{}, services.Wrap(services.ErrNotFound, "clips", "describe", "clip not found: "+id, nil)
	}
	return Info{
		ID:           id,
		HasRaw:       fileutil.NonEmpty(filepath.Join(dir, RawFile)),
		HasSubtitles: fileutil.NonEmpty(filepath.Join(dir, SubtitlesFile)),
		HasPreview:   fileutil.NonEmpty(filepath.Join(dir, PreviewFile)),
	}, nil
}
