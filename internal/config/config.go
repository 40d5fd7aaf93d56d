package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir     string   `toml:"data_dir"`
	LogDir      string   `toml:"log_dir"`
	APIBind     string   `toml:"api_bind"`
	APIToken    string   `toml:"api_token"`
	CORSOrigins []string `toml:"cors_origins"`
}

// Detection contains the highlight detector thresholds.
type Detection struct {
	AudioWindow     float64 `toml:"audio_window"`
	AudioMultiplier float64 `toml:"audio_multiplier"`
	FrameSkip       int     `toml:"frame_skip"`
	VisualThreshold float64 `toml:"visual_threshold"`
	MinGap          int     `toml:"min_gap"`
	MatchWindow     float64 `toml:"match_window"`
	SampleRate      int     `toml:"sample_rate"`
	ROIX            int     `toml:"roi_x"`
	ROIY            int     `toml:"roi_y"`
	ROIW            int     `toml:"roi_w"`
	ROIH            int     `toml:"roi_h"`
}

// Clips contains clip segmentation settings.
type Clips struct {
	Duration int `toml:"duration"`
}

// Transcription contains WhisperX settings used to caption clips.
type Transcription struct {
	WhisperXModel string `toml:"whisperx_model"`
	CUDAEnabled   bool   `toml:"cuda_enabled"`
	Language      string `toml:"language"`
}

// Tools names the external executables the pipeline drives.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	UVX     string `toml:"uvx"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Maintenance controls the background pruning job run by the server.
type Maintenance struct {
	PruneSchedule        string `toml:"prune_schedule"`
	HistoryRetentionDays int    `toml:"history_retention_days"`
	VODRetentionDays     int    `toml:"vod_retention_days"`
}

// Notifications configures ntfy alerts for finished runs.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Config encapsulates all configuration values for clipper.
//
// Configuration sections by subsystem:
//   - Paths: data directory, logs, and API bind address
//   - Detection: audio energy and motion thresholds
//   - Clips: per-clip duration
//   - Transcription: WhisperX model selection
//   - Tools: ffmpeg/ffprobe/uvx executables
//   - Logging: log format, level, and retention
//   - Maintenance: history and log pruning schedule
//   - Notifications: optional ntfy topic
type Config struct {
	Paths         Paths         `toml:"paths"`
	Detection     Detection     `toml:"detection"`
	Clips         Clips         `toml:"clips"`
	Transcription Transcription `toml:"transcription"`
	Tools         Tools         `toml:"tools"`
	Logging       Logging       `toml:"logging"`
	Maintenance   Maintenance   `toml:"maintenance"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipper/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clipper.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ClipsDir is where per-clip directories live.
func (c *Config) ClipsDir() string { return filepath.Join(c.Paths.DataDir, "clips") }

// VODsDir holds the uploaded source video and its extracted audio.
func (c *Config) VODsDir() string { return filepath.Join(c.Paths.DataDir, "vods") }

// HighlightsDir holds the detection artifact.
func (c *Config) HighlightsDir() string { return filepath.Join(c.Paths.DataDir, "highlights") }

// SourceVideoPath is the canonical location of the uploaded video.
func (c *Config) SourceVideoPath() string { return filepath.Join(c.VODsDir(), "input.mp4") }

// AudioPath is the canonical location of the extracted mono waveform.
func (c *Config) AudioPath() string { return filepath.Join(c.VODsDir(), "audio.wav") }

// HighlightsPath is the canonical location of the highlight artifact.
func (c *Config) HighlightsPath() string {
	return filepath.Join(c.HighlightsDir(), "highlights.json")
}

// StatusPath is the status document polled by observers.
func (c *Config) StatusPath() string { return filepath.Join(c.Paths.DataDir, "status.json") }

// HistoryPath is the SQLite run history database.
func (c *Config) HistoryPath() string { return filepath.Join(c.Paths.DataDir, "history.db") }

// LockPath is the cross-process workspace lock file.
func (c *Config) LockPath() string { return filepath.Join(c.Paths.DataDir, "clipper.lock") }

// EnsureDirectories creates the data directory layout and the log directory.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.ClipsDir(), c.VODsDir(), c.HighlightsDir(), c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
