package render_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"clipper/internal/clips"
	"clipper/internal/logging"
	"clipper/internal/render"
	"clipper/internal/services"
	"clipper/internal/testsupport"
)

func newClip(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "clip_01")
	testsupport.WriteFile(t, filepath.Join(dir, clips.RawFile), "raw")
	return dir
}

func TestRenderRunsFilterInClipDir(t *testing.T) {
	dir := newClip(t)
	testsupport.WriteFile(t, filepath.Join(dir, clips.SubtitlesFile), "1\n00:00:00,000 --> 00:00:01,000\nhi\n\n")
	transcoder := &testsupport.FakeTranscoder{}
	prober := testsupport.FakeProber{Result: testsupport.VideoProbe(1920, 1080, "60/1")}

	preview, err := render.NewRenderer(transcoder, prober, logging.NewNop()).Render(context.Background(), dir)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if preview != filepath.Join(dir, clips.PreviewFile) {
		t.Fatalf("unexpected preview path %s", preview)
	}
	calls := transcoder.CallsFor("filter_mux")
	if len(calls) != 1 {
		t.Fatalf("expected one render call, got %d", len(calls))
	}
	job := calls[0].Job
	if job.Dir != dir || job.Input != clips.RawFile || job.Output != clips.PreviewFile {
		t.Fatalf("unexpected job: %+v", job)
	}
	if !strings.Contains(job.Filter, "subtitles=subtitles.srt") {
		t.Fatalf("expected captions in filter: %s", job.Filter)
	}
}

func TestRenderTreatsEmptyCaptionsAsAbsent(t *testing.T) {
	dir := newClip(t)
	testsupport.WriteFile(t, filepath.Join(dir, clips.SubtitlesFile), "")
	transcoder := &testsupport.FakeTranscoder{}
	prober := testsupport.FakeProber{Result: testsupport.VideoProbe(1920, 1080, "60/1")}

	if _, err := render.NewRenderer(transcoder, prober, nil).Render(context.Background(), dir); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if strings.Contains(transcoder.CallsFor("filter_mux")[0].Job.Filter, "subtitles") {
		t.Fatal("expected zero-byte captions to be skipped")
	}
}

func TestRenderRejectsFacecamOutsideFrame(t *testing.T) {
	dir := newClip(t)
	transcoder := &testsupport.FakeTranscoder{}
	prober := testsupport.FakeProber{Result: testsupport.VideoProbe(1280, 720, "30/1")}

	_, err := render.NewRenderer(transcoder, prober, nil).Render(context.Background(), dir)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if len(transcoder.Calls()) != 0 {
		t.Fatal("expected no render after rejected config")
	}
}

func TestRenderRejectsHandEditedConfig(t *testing.T) {
	cases := []struct {
		name   string
		config string
	}{
		{"negative origin", `{"facecam":{"x":-10,"y":-5,"w":200,"h":100,"out_height":420,"enabled":true}}`},
		{"out height too large", `{"facecam":{"out_height":2000}}`},
		{"zero out height", `{"facecam":{"out_height":0}}`},
		{"zero font size", `{"subtitles":{"font_size":0}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := newClip(t)
			testsupport.WriteFile(t, filepath.Join(dir, clips.ConfigFile), tc.config)
			transcoder := &testsupport.FakeTranscoder{}
			prober := testsupport.FakeProber{Result: testsupport.VideoProbe(1920, 1080, "60/1")}

			_, err := render.NewRenderer(transcoder, prober, nil).Render(context.Background(), dir)
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
			if len(transcoder.Calls()) != 0 {
				t.Fatal("expected no ffmpeg invocation for an invalid config")
			}
		})
	}
}

func TestRenderFacecamDisabledSkipsBoundsCheck(t *testing.T) {
	dir := newClip(t)
	cfg := clips.DefaultRenderConfig()
	cfg.Facecam.Enabled = false
	if err := clips.SaveConfig(dir, cfg); err != nil {
		t.Fatal(err)
	}
	prober := testsupport.FakeProber{Err: errors.New("should not probe")}
	if _, err := render.NewRenderer(&testsupport.FakeTranscoder{}, prober, nil).Render(context.Background(), dir); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
}

func TestRenderTranscoderFailure(t *testing.T) {
	dir := newClip(t)
	transcoder := &testsupport.FakeTranscoder{FailOps: map[string]bool{"filter_mux": true}}
	prober := testsupport.FakeProber{Result: testsupport.VideoProbe(1920, 1080, "60/1")}
	_, err := render.NewRenderer(transcoder, prober, nil).Render(context.Background(), dir)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestRenderMissingRawSegment(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "clip_01")
	_, err := render.NewRenderer(&testsupport.FakeTranscoder{}, testsupport.FakeProber{}, nil).Render(context.Background(), dir)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
