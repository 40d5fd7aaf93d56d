package clips

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"clipper/internal/fileutil"
	"clipper/internal/services"
)

// Facecam describes the webcam rectangle in the source frame and the height
// it occupies at the top of the 1080x1920 output.
type Facecam struct {
	X         int  `json:"x" validate:"gte=0"`
	Y         int  `json:"y" validate:"gte=0"`
	W         int  `json:"w" validate:"gt=0"`
	H         int  `json:"h" validate:"gt=0"`
	OutHeight int  `json:"out_height" validate:"gt=0,lt=1920"`
	Enabled   bool `json:"enabled"`
}

// SubtitleStyle controls burned-in caption styling.
type SubtitleStyle struct {
	FontSize int `json:"font_size" validate:"gt=0"`
	MarginV  int `json:"margin_v" validate:"gte=0"`
}

// RenderConfig is the content of a clip's config.json.
type RenderConfig struct {
	Facecam   Facecam       `json:"facecam"`
	Subtitles SubtitleStyle `json:"subtitles"`
}

// DefaultRenderConfig returns the layout written for new clips.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Facecam: Facecam{
			X:         1000,
			Y:         120,
			W:         900,
			H:         500,
			OutHeight: 420,
			Enabled:   true,
		},
		Subtitles: SubtitleStyle{
			FontSize: 42,
			MarginV:  560,
		},
	}
}

var validate = validator.New()

// Validate reports field constraint violations as services.ErrValidation.
func (c RenderConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return services.Wrap(services.ErrValidation, "clips", "validate config", strings.Join(formatValidationErrors(fieldErrs), "; "), nil)
		}
		return services.Wrap(services.ErrValidation, "clips", "validate config", "invalid render config", err)
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) []string {
	out := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := strings.TrimPrefix(fe.Namespace(), "RenderConfig.")
		element := fmt.Sprintf("%s failed on the '%s' tag", field, fe.Tag())
		if fe.Param() != "" {
			element = fmt.Sprintf("%s (%s)", element, fe.Param())
		}
		out = append(out, element)
	}
	return out
}

// DecodeRenderConfig overlays JSON data onto base. Fields absent from data
// keep their base values.
func DecodeRenderConfig(base RenderConfig, data []byte) (RenderConfig, error) {
	cfg := base
	if err := json.Unmarshal(data, &cfg); err != nil {
		return base, services.Wrap(services.ErrValidation, "clips", "decode config", "malformed render config", err)
	}
	return cfg, nil
}

// LoadConfig reads dir/config.json with defaults filling absent fields. A
// missing file is created with the defaults.
func LoadConfig(dir string) (RenderConfig, error) {
	path := filepath.Join(dir, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return RenderConfig{}, services.Wrap(services.ErrIO, "clips", "load config", path, err)
		}
		if _, statErr := os.Stat(dir); statErr != nil {
			return RenderConfig{}, services.Wrap(services.ErrNotFound, "clips", "load config", "clip directory missing: "+dir, nil)
		}
		cfg := DefaultRenderConfig()
		if err := writeConfig(path, cfg); err != nil {
			return RenderConfig{}, err
		}
		return cfg, nil
	}
	return DecodeRenderConfig(DefaultRenderConfig(), data)
}

// SaveConfig validates cfg and atomically replaces dir/config.json.
func SaveConfig(dir string, cfg RenderConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return services.Wrap(services.ErrNotFound, "clips", "save config", "clip directory missing: "+dir, nil)
	}
	return writeConfig(filepath.Join(dir, ConfigFile), cfg)
}

func writeConfig(path string, cfg RenderConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrIO, "clips", "write config", "encode config", err)
	}
	if err := fileutil.AtomicWriteFile(path, append(data, '\n'), 0o644); err != nil {
		return services.Wrap(services.ErrIO, "clips", "write config", path, err)
	}
	return nil
}
