package render_test

import (
	"testing"

	"clipper/internal/clips"
	"clipper/internal/render"
)

func TestComposeDefaultLayout(t *testing.T) {
	got := render.Compose(clips.DefaultRenderConfig(), false)
	want := "[0:v]crop=900:500:1000:120,scale=1080:420[face];" +
		"[0:v]crop=ih*9/16:ih:(iw-ih*9/16)/2:0,scale=1080:1500[game];" +
		"[face][game]vstack=inputs=2"
	if got.Filter != want {
		t.Fatalf("unexpected filter:\n got %s\nwant %s", got.Filter, want)
	}
	if got.Captions {
		t.Fatal("expected no captions")
	}
}

func TestComposeWithCaptions(t *testing.T) {
	cfg := clips.DefaultRenderConfig()
	cfg.Subtitles.FontSize = 36
	cfg.Subtitles.MarginV = 500
	got := render.Compose(cfg, true)
	suffix := ",subtitles=subtitles.srt:force_style='FontSize=36,MarginV=500'"
	if len(got.Filter) < len(suffix) || got.Filter[len(got.Filter)-len(suffix):] != suffix {
		t.Fatalf("expected caption suffix, got %s", got.Filter)
	}
}

func TestComposeFacecamDisabled(t *testing.T) {
	cfg := clips.DefaultRenderConfig()
	cfg.Facecam.Enabled = false
	got := render.Compose(cfg, false)
	if got.Filter != "[0:v]crop=ih*9/16:ih:(iw-ih*9/16)/2:0,scale=1080:1920" {
		t.Fatalf("unexpected gameplay-only filter: %s", got.Filter)
	}
}

func TestComposeIsPure(t *testing.T) {
	cfg := clips.DefaultRenderConfig()
	before := cfg
	first := render.Compose(cfg, true)
	second := render.Compose(cfg, true)
	if first != second {
		t.Fatalf("expected identical compositions, got %+v and %+v", first, second)
	}
	if cfg != before {
		t.Fatal("Compose mutated its input")
	}
}
