package config

import (
	"errors"
	"fmt"

	"clipper/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateClips(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if _, ok := language.Normalize(c.Transcription.Language); !ok {
		return fmt.Errorf("transcription.language %q is not supported by WhisperX", c.Transcription.Language)
	}
	return nil
}

func (c *Config) validateDetection() error {
	d := c.Detection
	if d.AudioWindow <= 0 {
		return errors.New("detection.audio_window must be positive")
	}
	if d.AudioMultiplier <= 0 {
		return errors.New("detection.audio_multiplier must be positive")
	}
	if d.FrameSkip < 1 {
		return errors.New("detection.frame_skip must be at least 1")
	}
	if d.VisualThreshold < 0 || d.VisualThreshold > 255 {
		return errors.New("detection.visual_threshold must be between 0 and 255")
	}
	if d.MinGap < 0 {
		return errors.New("detection.min_gap must not be negative")
	}
	if d.MatchWindow <= 0 {
		return errors.New("detection.match_window must be positive")
	}
	if d.SampleRate < 8000 {
		return fmt.Errorf("detection.sample_rate %d is too low (minimum 8000)", d.SampleRate)
	}
	if d.ROIX < 0 || d.ROIY < 0 {
		return errors.New("detection.roi_x and detection.roi_y must not be negative")
	}
	if d.ROIW <= 0 || d.ROIH <= 0 {
		return errors.New("detection.roi_w and detection.roi_h must be positive")
	}
	return nil
}

func (c *Config) validateClips() error {
	if c.Clips.Duration <= 0 {
		return errors.New("clips.duration must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
