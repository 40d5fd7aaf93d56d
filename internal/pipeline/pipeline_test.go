package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"clipper/internal/clips"
	"clipper/internal/config"
	"clipper/internal/logging"
	"clipper/internal/pipeline"
	"clipper/internal/services"
	"clipper/internal/status"
	"clipper/internal/subtitles"
	"clipper/internal/testsupport"
	"clipper/internal/workspace"
)

type harness struct {
	cfg         *config.Config
	store       *status.FileStore
	lock        *workspace.Lock
	transcoder  *testsupport.FakeTranscoder
	transcriber *testsupport.FakeTranscriber
	notifier    *testsupport.FakeNotifier
	orch        *pipeline.Orchestrator
}

func newHarness(t *testing.T, transcoder *testsupport.FakeTranscoder) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Detection.FrameSkip = 1
	cfg.Detection.ROIX, cfg.Detection.ROIY, cfg.Detection.ROIW, cfg.Detection.ROIH = 0, 0, 2, 2
	cfg.Detection.MinGap = 1

	h := &harness{
		cfg:         cfg,
		store:       status.NewFileStore(cfg.StatusPath()),
		lock:        workspace.New(cfg.LockPath()),
		transcoder:  transcoder,
		transcriber: &testsupport.FakeTranscriber{Segments: []subtitles.Segment{{Start: 0, End: 1.5, Text: "nice shot"}}},
		notifier:    &testsupport.FakeNotifier{},
	}
	orch, err := pipeline.New(pipeline.Deps{
		Config:      cfg,
		Status:      h.store,
		History:     testsupport.MustOpenHistory(t, cfg),
		Notifier:    h.notifier,
		Lock:        h.lock,
		Transcoder:  transcoder,
		Prober:      testsupport.FakeProber{Result: testsupport.VideoProbe(2, 2, "4/1")},
		Transcriber: h.transcriber,
		Logger:      logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("pipeline.New failed: %v", err)
	}
	h.orch = orch
	return h
}

func upload() pipeline.Upload {
	return pipeline.Upload{Name: "match.mp4", Body: strings.NewReader("fake video bytes")}
}

func TestProcessProducesClips(t *testing.T) {
	transcoder := &testsupport.FakeTranscoder{
		Audio:  testsupport.Burst(40, 2000, 0, 100, 20000, 10, 30),
		Frames: testsupport.GrayFrames(40, 4, 10),
	}
	h := newHarness(t, transcoder)

	ids, err := h.orch.Process(context.Background(), upload())
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !slices.Equal(ids, []string{"clip_01"}) {
		t.Fatalf("expected [clip_01], got %v", ids)
	}
	if got := testsupport.ReadFile(t, h.cfg.SourceVideoPath()); got != "fake video bytes" {
		t.Fatalf("unexpected stored upload %q", got)
	}

	doc, err := h.store.Read()
	if err != nil {
		t.Fatal(err)
	}
	if doc.State != status.StateCompleted || doc.Summary == nil || *doc.Summary != "Created 1 clip(s)." {
		t.Fatalf("unexpected final document: %+v", doc)
	}
	for _, step := range doc.Steps {
		if step.State != status.StepCompleted {
			t.Fatalf("expected every step completed, got %+v", step)
		}
	}
	if step, _ := doc.Step(status.StepDetectHighlights); step.Detail != "Found 1 highlight(s)" {
		t.Fatalf("unexpected detect detail %q", step.Detail)
	}
	if step, _ := doc.Step(status.StepGenerateSubtitles); step.Detail != "Transcribed 1 clip(s)" {
		t.Fatalf("unexpected subtitle detail %q", step.Detail)
	}
	srt := testsupport.ReadFile(t, filepath.Join(h.cfg.ClipsDir(), "clip_01", clips.SubtitlesFile))
	if !strings.Contains(srt, "nice shot") {
		t.Fatalf("expected caption text in %q", srt)
	}
	if got := h.notifier.Events(); !slices.Equal(got, []string{"completed match.mp4 1"}) {
		t.Fatalf("unexpected notifications %v", got)
	}
}

func TestProcessEmptyScenario(t *testing.T) {
	h := newHarness(t, &testsupport.FakeTranscoder{Frames: testsupport.GrayFrames(8, 4)})

	ids, err := h.orch.Process(context.Background(), upload())
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no clips, got %v", ids)
	}
	doc, _ := h.store.Read()
	if doc.State != status.StateCompleted || doc.Summary == nil || *doc.Summary != "Created 0 clip(s)." {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if len(h.transcoder.CallsFor("trim")) != 0 {
		t.Fatal("expected no trims")
	}
}

func TestProcessStageFailureStopsRun(t *testing.T) {
	transcoder := &testsupport.FakeTranscoder{FailOps: map[string]bool{"extract_audio": true}}
	h := newHarness(t, transcoder)

	_, err := h.orch.Process(context.Background(), upload())
	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != status.StepExtractAudio {
		t.Fatalf("expected extract_audio StageError, got %v", err)
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool cause, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "extract_audio: ") {
		t.Fatalf("unexpected error text %q", err.Error())
	}

	doc, _ := h.store.Read()
	if doc.State != status.StateError || doc.Error == nil {
		t.Fatalf("expected error state, got %+v", doc)
	}
	step, _ := doc.Step(status.StepExtractAudio)
	if step.State != status.StepFailed || step.Detail != *doc.Error {
		t.Fatalf("expected failed step carrying the run error, got %+v", step)
	}
	if next, _ := doc.Step(status.StepDetectHighlights); next.State != status.StepPending {
		t.Fatalf("expected later steps untouched, got %+v", next)
	}
	if len(transcoder.CallsFor("decode_gray")) != 0 {
		t.Fatal("detector ran after a failed stage")
	}
	if got := h.notifier.Events(); !slices.Equal(got, []string{"failed match.mp4 extract_audio"}) {
		t.Fatalf("unexpected notifications %v", got)
	}
}

func TestProcessRejectsConcurrentRun(t *testing.T) {
	h := newHarness(t, &testsupport.FakeTranscoder{})
	release, err := h.lock.TryAcquire()
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	if _, err := h.orch.Process(context.Background(), upload()); !errors.Is(err, workspace.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if err := h.orch.SaveClipConfig("clip_01", clips.DefaultRenderConfig()); !errors.Is(err, workspace.ErrBusy) {
		t.Fatalf("expected ErrBusy from config save, got %v", err)
	}
}

func TestProcessRecordsHistory(t *testing.T) {
	h := newHarness(t, &testsupport.FakeTranscoder{FailOps: map[string]bool{"extract_audio": true}})
	if _, err := h.orch.Process(context.Background(), upload()); err == nil {
		t.Fatal("expected failure")
	}
	hist := testsupport.MustOpenHistory(t, h.cfg)
	runs, err := hist.List(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].State != status.StateError || runs[0].Upload != "match.mp4" {
		t.Fatalf("unexpected history: %+v", runs)
	}
	if !strings.HasPrefix(runs[0].Error, "extract_audio: ") || len(runs[0].Steps) != 5 {
		t.Fatalf("expected stage error and step snapshot, got %+v", runs[0])
	}
}

func TestMissingArtifactFailsCutClips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := status.NewFileStore(cfg.StatusPath())
	if err := store.Reset("input.mp4", "run"); err != nil {
		t.Fatal(err)
	}
	segmenter := clips.NewSegmenter(&testsupport.FakeTranscoder{}, 30, nil)
	artifact := cfg.HighlightsPath()

	stages := []pipeline.Stage{{
		ID:      status.StepCutClips,
		Running: "Cutting clips",
		Run: func(ctx context.Context) (string, error) {
			_, err := segmenter.Cut(ctx, cfg.SourceVideoPath(), artifact, cfg.ClipsDir())
			return "", err
		},
	}}
	err := pipeline.Sequence(context.Background(), store, stages)
	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != status.StepCutClips {
		t.Fatalf("expected cut_clips StageError, got %v", err)
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	doc, _ := store.Read()
	step, _ := doc.Step(status.StepCutClips)
	if step.State != status.StepFailed || !strings.Contains(step.Detail, artifact) {
		t.Fatalf("expected failed cut_clips naming %s, got %+v", artifact, step)
	}
	if doc.State != status.StateError {
		t.Fatalf("expected error state, got %s", doc.State)
	}
}

func TestSequenceRecordsDetails(t *testing.T) {
	store := status.NewFileStore(filepath.Join(t.TempDir(), "status.json"))
	if err := store.Reset("x", "run"); err != nil {
		t.Fatal(err)
	}
	var seen []string
	stages := []pipeline.Stage{
		{ID: status.StepUpload, Running: "Saving", Run: func(ctx context.Context) (string, error) {
			stage, _ := services.StageFromContext(ctx)
			seen = append(seen, stage)
			doc, _ := store.Read()
			if step, _ := doc.Step(status.StepUpload); step.State != status.StepInProgress || step.Detail != "Saving" {
				t.Errorf("expected in-progress step during Run, got %+v", step)
			}
			return "Saved", nil
		}},
		{ID: status.StepExtractAudio, Running: "Extracting", Run: func(ctx context.Context) (string, error) {
			stage, _ := services.StageFromContext(ctx)
			seen = append(seen, stage)
			return "", nil
		}},
	}
	if err := pipeline.Sequence(context.Background(), store, stages); err != nil {
		t.Fatalf("Sequence failed: %v", err)
	}
	if !slices.Equal(seen, []string{"upload", "extract_audio"}) {
		t.Fatalf("unexpected stage contexts %v", seen)
	}
	doc, _ := store.Read()
	if step, _ := doc.Step(status.StepUpload); step.Detail != "Saved" || step.State != status.StepCompleted {
		t.Fatalf("unexpected upload step %+v", step)
	}
	if step, _ := doc.Step(status.StepExtractAudio); step.Detail != "Extracting" {
		t.Fatalf("expected empty completion detail to keep running detail, got %+v", step)
	}
}

func TestRenderUsesSavedConfig(t *testing.T) {
	transcoder := &testsupport.FakeTranscoder{
		Audio:  testsupport.Burst(40, 2000, 0, 100, 20000, 10, 30),
		Frames: testsupport.GrayFrames(40, 4, 10),
	}
	h := newHarness(t, transcoder)
	if _, err := h.orch.Process(context.Background(), upload()); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	cfg, err := h.orch.ClipConfig("clip_01")
	if err != nil {
		t.Fatalf("ClipConfig failed: %v", err)
	}
	cfg.Facecam.Enabled = false
	if err := h.orch.SaveClipConfig("clip_01", cfg); err != nil {
		t.Fatalf("SaveClipConfig failed: %v", err)
	}
	preview, err := h.orch.Render(context.Background(), "clip_01")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if filepath.Base(preview) != clips.PreviewFile {
		t.Fatalf("unexpected preview path %s", preview)
	}
	if got := h.notifier.Events(); !slices.Contains(got, "rendered clip_01") {
		t.Fatalf("expected render notification, got %v", got)
	}
	if _, err := h.orch.Render(context.Background(), "../etc"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for bad id, got %v", err)
	}
}

func TestProcessStoredSourceKeepsContent(t *testing.T) {
	h := newHarness(t, &testsupport.FakeTranscoder{Frames: testsupport.GrayFrames(8, 4)})
	testsupport.WriteFile(t, h.cfg.SourceVideoPath(), "stored vod bytes")
	src, err := os.Open(h.cfg.SourceVideoPath())
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if _, err := h.orch.Process(context.Background(), pipeline.Upload{Name: "input.mp4", Body: src}); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if got := testsupport.ReadFile(t, h.cfg.SourceVideoPath()); got != "stored vod bytes" {
		t.Fatalf("expected stored source preserved, got %q", got)
	}
	doc, _ := h.store.Read()
	if step, _ := doc.Step(status.StepUpload); step.Detail != "Saved input.mp4 (16 B)" {
		t.Fatalf("unexpected upload detail %q", step.Detail)
	}
}

func TestProcessRejectsEmptyUpload(t *testing.T) {
	h := newHarness(t, &testsupport.FakeTranscoder{})
	testsupport.WriteFile(t, h.cfg.SourceVideoPath(), "previous vod")

	_, err := h.orch.Process(context.Background(), pipeline.Upload{Name: "match.mp4", Body: strings.NewReader("")})
	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != status.StepUpload {
		t.Fatalf("expected upload StageError, got %v", err)
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if got := testsupport.ReadFile(t, h.cfg.SourceVideoPath()); got != "previous vod" {
		t.Fatalf("expected previous source untouched, got %q", got)
	}
	if len(h.transcoder.CallsFor("extract_audio")) != 0 {
		t.Fatal("expected no audio extraction after a rejected upload")
	}
	doc, _ := h.store.Read()
	if doc.State != status.StateError {
		t.Fatalf("expected error state, got %s", doc.State)
	}
}

// rejectingStore refuses every step update so Sequence must fail the run on
// its own.
type rejectingStore struct {
	*status.FileStore
}

func (rejectingStore) UpdateStep(status.StepID, status.StepState, string) error {
	return errors.New("disk full")
}

func TestSequenceFailsRunWhenStoreRejectsUpdate(t *testing.T) {
	files := status.NewFileStore(filepath.Join(t.TempDir(), "status.json"))
	if err := files.Reset("x", "run"); err != nil {
		t.Fatal(err)
	}
	ran := false
	stages := []pipeline.Stage{{ID: status.StepUpload, Running: "Saving", Run: func(context.Context) (string, error) {
		ran = true
		return "", nil
	}}}

	err := pipeline.Sequence(context.Background(), rejectingStore{files}, stages)
	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != status.StepUpload {
		t.Fatalf("expected upload StageError, got %v", err)
	}
	if ran {
		t.Fatal("stage ran after its step could not be marked in progress")
	}
	doc, _ := files.Read()
	if doc.State != status.StateError || doc.Error == nil || *doc.Error != "disk full" {
		t.Fatalf("expected run failed with store error, got %+v", doc)
	}
}
