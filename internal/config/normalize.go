package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clipper/internal/language"
)

func (c *Config) normalize() error {
	c.applyEnvironment()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeTranscription()
	c.normalizeLogging()
	c.normalizeMaintenance()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
	return nil
}

// applyEnvironment lets deployment environments override the file without
// editing it. Values are trimmed; blank variables are ignored.
func (c *Config) applyEnvironment() {
	overrides := []struct {
		name   string
		target *string
	}{
		{"CLIPPER_DATA_DIR", &c.Paths.DataDir},
		{"CLIPPER_API_TOKEN", &c.Paths.APIToken},
		{"FFMPEG_PATH", &c.Tools.FFmpeg},
		{"FFPROBE_PATH", &c.Tools.FFprobe},
		{"WHISPER_MODEL", &c.Transcription.WhisperXModel},
		{"CLIPPER_NTFY_TOPIC", &c.Notifications.NtfyTopic},
	}
	for _, o := range overrides {
		if value, ok := os.LookupEnv(o.name); ok && strings.TrimSpace(value) != "" {
			*o.target = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)

	origins := make([]string, 0, len(c.Paths.CORSOrigins))
	for _, origin := range c.Paths.CORSOrigins {
		if trimmed := strings.TrimRight(strings.TrimSpace(origin), "/"); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.Paths.CORSOrigins = origins
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
	c.Tools.UVX = strings.TrimSpace(c.Tools.UVX)
	if c.Tools.UVX == "" {
		c.Tools.UVX = defaultUVXBinary
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.WhisperXModel = strings.TrimSpace(c.Transcription.WhisperXModel)
	if c.Transcription.WhisperXModel == "" {
		c.Transcription.WhisperXModel = defaultWhisperXModel
	}
	c.Transcription.Language = strings.TrimSpace(c.Transcription.Language)
	if code := language.ToISO2(c.Transcription.Language); code != "" {
		c.Transcription.Language = code
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeMaintenance() {
	c.Maintenance.PruneSchedule = strings.TrimSpace(c.Maintenance.PruneSchedule)
	if c.Maintenance.HistoryRetentionDays < 0 {
		c.Maintenance.HistoryRetentionDays = 0
	}
	if c.Maintenance.VODRetentionDays < 0 {
		c.Maintenance.VODRetentionDays = 0
	}
}
