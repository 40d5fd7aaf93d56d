package whisperx

// Config captures runtime settings for WhisperX operations.
type Config struct {
	// Model is the WhisperX model to use (e.g., "small").
	Model string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// Language is an optional ISO 639-1 hint; empty lets WhisperX detect it.
	Language string
	// UVXBinary overrides the uvx executable.
	UVXBinary string
}

// WhisperX configuration constants.
const (
	DefaultModel   = "small"
	CUDAIndexURL   = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL   = "https://pypi.org/simple"
	BatchSize      = "4"
	VADMethod      = "silero"
	OutputFormat   = "json"
	CPUDevice      = "cpu"
	CUDADevice     = "cuda"
	CPUComputeType = "float32"
	UVXCommand     = "uvx"
)
