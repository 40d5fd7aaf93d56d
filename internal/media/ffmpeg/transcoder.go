package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"clipper/internal/services"
)

// DefaultBinary is used when no ffmpeg path is configured.
const DefaultBinary = "ffmpeg"

// Rect is a pixel rectangle inside a video frame.
type Rect struct {
	X, Y, W, H int
}

// FilterJob describes a single-input filter-graph render.
type FilterJob struct {
	// Dir is the working directory; relative paths in Filter resolve against it.
	Dir    string
	Input  string
	Output string
	Filter string
}

// GrayJob describes a sampled grayscale decode of a region of interest.
type GrayJob struct {
	Input string
	// Every keeps frames whose index is a multiple of Every.
	Every int
	ROI   Rect
}

// Transcoder is the media surface the pipeline depends on.
type Transcoder interface {
	ExtractAudio(ctx context.Context, src, dst string, sampleRate int) error
	Trim(ctx context.Context, src, dst string, start, duration float64) error
	FilterMux(ctx context.Context, job FilterJob) error
	// DecodeGray calls fn once per sampled frame with w*h luma bytes. The
	// slice is reused between calls.
	DecodeGray(ctx context.Context, job GrayJob, fn func(frame []byte) error) error
}

// CommandRunner executes name with args in dir and returns combined output.
type CommandRunner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// StreamRunner starts name with args and hands its stdout to consume.
type StreamRunner func(ctx context.Context, name string, args []string, consume func(io.Reader) error) error

// CLI implements Transcoder with the ffmpeg binary.
type CLI struct {
	binary string
	run    CommandRunner
	stream StreamRunner
}

// New returns a CLI transcoder for binary.
func New(binary string) *CLI {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	return &CLI{binary: binary, run: execRunner, stream: execStream}
}

// WithCommandRunner replaces the process runner (for testing).
func (c *CLI) WithCommandRunner(runner CommandRunner) *CLI {
	if runner != nil {
		c.run = runner
	}
	return c
}

// WithStreamRunner replaces the streaming process runner (for testing).
func (c *CLI) WithStreamRunner(runner StreamRunner) *CLI {
	if runner != nil {
		c.stream = runner
	}
	return c
}

// Binary returns the configured executable.
func (c *CLI) Binary() string { return c.binary }

// ExtractAudio writes a mono 16-bit PCM WAV of src to dst.
func (c *CLI) ExtractAudio(ctx context.Context, src, dst string, sampleRate int) error {
	return c.exec(ctx, "", "extract audio", ExtractAudioArgs(src, dst, sampleRate))
}

// Trim stream-copies [start, start+duration) of src into dst.
func (c *CLI) Trim(ctx context.Context, src, dst string, start, duration float64) error {
	return c.exec(ctx, "", "trim", TrimArgs(src, dst, start, duration))
}

// FilterMux renders job.Input through job.Filter with audio copied.
func (c *CLI) FilterMux(ctx context.Context, job FilterJob) error {
	return c.exec(ctx, job.Dir, "render", FilterMuxArgs(job))
}

// DecodeGray streams sampled ROI frames from job.Input to fn.
func (c *CLI) DecodeGray(ctx context.Context, job GrayJob, fn func(frame []byte) error) error {
	if job.ROI.W <= 0 || job.ROI.H <= 0 {
		return services.Wrap(services.ErrConfiguration, "ffmpeg", "decode gray", "empty region of interest", nil)
	}
	frameSize := job.ROI.W * job.ROI.H
	consume := func(r io.Reader) error {
		return ReadFrames(r, frameSize, fn)
	}
	if err := c.stream(ctx, c.binary, GrayArgs(job), consume); err != nil {
		var callbackErr *frameCallbackError
		if errors.As(err, &callbackErr) {
			return callbackErr.err
		}
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "decode gray", "ffmpeg frame decode failed", err)
	}
	return nil
}

func (c *CLI) exec(ctx context.Context, dir, operation string, args []string) error {
	output, err := c.run(ctx, dir, c.binary, args...)
	if err != nil {
		detail := strings.TrimSpace(lastLines(output, 5))
		if detail == "" {
			detail = "ffmpeg exited with an error"
		}
		return services.Wrap(services.ErrExternalTool, "ffmpeg", operation, detail, err)
	}
	return nil
}

// ExtractAudioArgs builds the audio extraction argument vector.
func ExtractAudioArgs(src, dst string, sampleRate int) []string {
	return ffmpeggo.Input(src).
		Output(dst, ffmpeggo.KwArgs{
			"vn":     "",
			"ac":     "1",
			"ar":     strconv.Itoa(sampleRate),
			"acodec": "pcm_s16le",
		}).
		OverWriteOutput().
		GetArgs()
}

// TrimArgs builds the stream-copy trim argument vector. Negative starts are
// clamped to zero and the end stays at start+duration.
func TrimArgs(src, dst string, start, duration float64) []string {
	seek := start
	if seek < 0 {
		seek = 0
	}
	length := start + duration - seek
	if length < 0 {
		length = 0
	}
	return ffmpeggo.Input(src, ffmpeggo.KwArgs{
		"ss": formatSeconds(seek),
		"t":  formatSeconds(length),
	}).
		Output(dst, ffmpeggo.KwArgs{"c": "copy"}).
		OverWriteOutput().
		GetArgs()
}

// FilterMuxArgs builds the filter-graph render argument vector.
func FilterMuxArgs(job FilterJob) []string {
	return ffmpeggo.Input(job.Input).
		Output(job.Output, ffmpeggo.KwArgs{
			"filter_complex": job.Filter,
			"c:a":            "copy",
		}).
		OverWriteOutput().
		GetArgs()
}

// GrayArgs builds the sampled grayscale decode argument vector writing raw
// frames to stdout.
func GrayArgs(job GrayJob) []string {
	every := job.Every
	if every < 1 {
		every = 1
	}
	vf := fmt.Sprintf("select=not(mod(n\\,%d)),crop=%d:%d:%d:%d,format=gray",
		every, job.ROI.W, job.ROI.H, job.ROI.X, job.ROI.Y)
	return ffmpeggo.Input(job.Input).
		Output("pipe:1", ffmpeggo.KwArgs{
			"vf":      vf,
			"an":      "",
			"f":       "rawvideo",
			"pix_fmt": "gray",
			"vsync":   "0",
		}).
		GetArgs()
}

type frameCallbackError struct{ err error }

func (e *frameCallbackError) Error() string { return e.err.Error() }

func (e *frameCallbackError) Unwrap() error { return e.err }

// ReadFrames reads fixed-size frames from r until EOF and hands each to fn.
// A trailing partial frame is discarded.
func ReadFrames(r io.Reader, frameSize int, fn func(frame []byte) error) error {
	if frameSize <= 0 {
		return errors.New("frame size must be positive")
	}
	reader := bufio.NewReaderSize(r, frameSize)
	buf := make([]byte, frameSize)
	for {
		_, err := io.ReadFull(reader, buf)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}
		if err := fn(buf); err != nil {
			return &frameCallbackError{err: err}
		}
	}
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func lastLines(output []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func execRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

func execStream(ctx context.Context, name string, args []string, consume func(io.Reader) error) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	consumeErr := consume(stdout)
	if consumeErr != nil {
		// Drain so ffmpeg is not left blocked on a full pipe.
		_, _ = io.Copy(io.Discard, stdout)
	}
	waitErr := cmd.Wait()
	if consumeErr != nil {
		return consumeErr
	}
	if waitErr != nil {
		return fmt.Errorf("%w: %s", waitErr, strings.TrimSpace(lastLines(stderr.Bytes(), 5)))
	}
	return nil
}
