package clips_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipper/internal/clips"
	"clipper/internal/services"
	"clipper/internal/testsupport"
)

func TestLoadConfigMaterializesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := clips.LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg != clips.DefaultRenderConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if _, err := os.Stat(filepath.Join(dir, clips.ConfigFile)); err != nil {
		t.Fatalf("expected config.json to be written: %v", err)
	}
}

func TestLoadConfigFillsMissingFields(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, clips.ConfigFile), `{"facecam": {"x": 10, "enabled": false}}`)

	cfg, err := clips.LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	want := clips.DefaultRenderConfig()
	want.Facecam.X = 10
	want.Facecam.Enabled = false
	if cfg != want {
		t.Fatalf("expected %+v, got %+v", want, cfg)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := clips.RenderConfig{
		Facecam:   clips.Facecam{X: 12, Y: 34, W: 640, H: 360, OutHeight: 600, Enabled: true},
		Subtitles: clips.SubtitleStyle{FontSize: 30, MarginV: 100},
	}
	if err := clips.SaveConfig(dir, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	got, err := clips.LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, cfg)
	}
}

func TestSaveConfigRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*clips.RenderConfig)
		field  string
	}{
		{"negative x", func(c *clips.RenderConfig) { c.Facecam.X = -1 }, "Facecam.X"},
		{"zero width", func(c *clips.RenderConfig) { c.Facecam.W = 0 }, "Facecam.W"},
		{"output too tall", func(c *clips.RenderConfig) { c.Facecam.OutHeight = 1920 }, "Facecam.OutHeight"},
		{"zero font", func(c *clips.RenderConfig) { c.Subtitles.FontSize = 0 }, "Subtitles.FontSize"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			cfg := clips.DefaultRenderConfig()
			tc.mutate(&cfg)
			err := clips.SaveConfig(dir, cfg)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Fatalf("expected %s in error, got %v", tc.field, err)
			}
			if _, statErr := os.Stat(filepath.Join(dir, clips.ConfigFile)); !os.IsNotExist(statErr) {
				t.Fatal("invalid config must not be written")
			}
		})
	}
}

func TestSaveConfigMissingClip(t *testing.T) {
	err := clips.SaveConfig(filepath.Join(t.TempDir(), "clip_09"), clips.DefaultRenderConfig())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDecodeRenderConfigRejectsMalformed(t *testing.T) {
	if _, err := clips.DecodeRenderConfig(clips.DefaultRenderConfig(), []byte("{")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
