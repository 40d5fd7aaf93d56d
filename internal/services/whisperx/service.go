package whisperx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"clipper/internal/services"
	"clipper/internal/subtitles"
)

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

var _ subtitles.Transcriber = (*Service)(nil)

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

func (s *Service) binary() string {
	if b := strings.TrimSpace(s.cfg.UVXBinary); b != "" {
		return b
	}
	return UVXCommand
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, tail(string(output), 800))
	}
	return nil
}

// Transcribe runs WhisperX on media, writing its JSON into workDir, and
// returns the decoded segments.
func (s *Service) Transcribe(ctx context.Context, media, workDir string) ([]subtitles.Segment, error) {
	if strings.TrimSpace(media) == "" {
		return nil, services.Wrap(services.ErrValidation, "whisperx", "transcribe", "media path required", nil)
	}
	if workDir == "" {
		workDir = filepath.Dir(media)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, "whisperx", "transcribe", "ensure work dir", err)
	}
	if err := s.run(ctx, s.binary(), s.buildArgs(media, workDir)...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "whisperx", "transcribe", filepath.Base(media), err)
	}

	base := strings.TrimSuffix(filepath.Base(media), filepath.Ext(media))
	segments, err := LoadSegments(filepath.Join(workDir, base+".json"))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "whisperx", "load output", filepath.Base(media), err)
	}
	cues := make([]subtitles.Segment, 0, len(segments))
	for _, seg := range segments {
		cues = append(cues, subtitles.Segment{Start: seg.Start, End: seg.End, Text: seg.Text})
	}
	return cues, nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 24)
	if s.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", s.Model(),
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--vad_method", VADMethod,
	)
	if lang := strings.ToLower(strings.TrimSpace(s.cfg.Language)); lang != "" {
		args = append(args, "--language", lang)
	}
	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}
	return args
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperXPayload struct {
	Segments []Segment `json:"segments"`
}

// LoadSegments loads segments from a WhisperX JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("whisperx output missing: %s", jsonPath)
		}
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload.Segments, nil
}

func tail(output string, limit int) string {
	output = strings.TrimSpace(output)
	if len(output) > limit {
		return "..." + output[len(output)-limit:]
	}
	return output
}
