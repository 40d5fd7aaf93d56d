package highlight_test

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"clipper/internal/config"
	"clipper/internal/highlight"
	"clipper/internal/logging"
	"clipper/internal/services"
	"clipper/internal/testsupport"
)

func TestDetectorWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "audio.wav")
	outPath := filepath.Join(dir, "highlights", "highlights.json")
	// Loud windows at 2.5 s and 7.5 s.
	testsupport.WriteWAV(t, audioPath, 8000, testsupport.Burst(40, 2000, 0, 100, 20000, 10, 30))

	// 4 fps with every frame sampled: a change at frame 10 is 2.5 s.
	transcoder := &testsupport.FakeTranscoder{Frames: testsupport.GrayFrames(40, 4, 10)}
	prober := testsupport.FakeProber{Result: testsupport.VideoProbe(2, 2, "4/1")}

	d := config.Default().Detection
	d.FrameSkip = 1
	d.ROIX, d.ROIY, d.ROIW, d.ROIH = 0, 0, 2, 2
	d.MinGap = 1
	detector := highlight.NewDetector(highlight.OptionsFromConfig(d), transcoder, prober, logging.NewNop())

	got, err := detector.Detect(context.Background(), filepath.Join(dir, "input.mp4"), audioPath, outPath)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !slices.Equal(got, []int{2}) {
		t.Fatalf("expected [2], got %v", got)
	}
	stored, err := highlight.ReadArtifact(outPath)
	if err != nil {
		t.Fatalf("ReadArtifact failed: %v", err)
	}
	if !slices.Equal(stored, got) {
		t.Fatalf("artifact %v does not match result %v", stored, got)
	}
	if !strings.Contains(testsupport.ReadFile(t, outPath), "\n  2") {
		t.Fatal("expected indented JSON artifact")
	}
}

func TestDetectorEmptyInputsYieldEmptyArtifact(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "audio.wav")
	outPath := filepath.Join(dir, "highlights.json")
	testsupport.WriteWAV(t, audioPath, 8000, nil)

	detector := highlight.NewDetector(highlight.OptionsFromConfig(config.Default().Detection),
		&testsupport.FakeTranscoder{}, testsupport.FakeProber{Result: testsupport.VideoProbe(1920, 1080, "30/1")}, nil)
	got, err := detector.Detect(context.Background(), "input.mp4", audioPath, outPath)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no highlights, got %v", got)
	}
	if strings.TrimSpace(testsupport.ReadFile(t, outPath)) != "[]" {
		t.Fatalf("expected empty JSON array artifact")
	}
}

func TestReadArtifactMissingReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "highlights.json")
	_, err := highlight.ReadArtifact(path)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected path in error, got %v", err)
	}
}
