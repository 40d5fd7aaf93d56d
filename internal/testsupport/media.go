package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"clipper/internal/media/ffmpeg"
	"clipper/internal/media/ffprobe"
	"clipper/internal/services"
)

// TranscodeCall records one FakeTranscoder invocation.
type TranscodeCall struct {
	Op       string
	Src      string
	Dst      string
	Start    float64
	Duration float64
	Job      ffmpeg.FilterJob
}

// FakeTranscoder implements ffmpeg.Transcoder without running ffmpeg. Outputs
// are written as small placeholder files so downstream stages find them.
type FakeTranscoder struct {
	mu    sync.Mutex
	calls []TranscodeCall

	// Audio is written by ExtractAudio as a mono WAV.
	Audio []int
	// Frames are handed to DecodeGray callbacks in order.
	Frames [][]byte
	// FailOps makes the named operations fail with ErrExternalTool.
	FailOps map[string]bool
}

var _ ffmpeg.Transcoder = (*FakeTranscoder)(nil)

func (f *FakeTranscoder) record(call TranscodeCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.FailOps[call.Op] {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", call.Op, "simulated failure", errors.New("exit status 1"))
	}
	return nil
}

// Calls returns a copy of the recorded invocations.
func (f *FakeTranscoder) Calls() []TranscodeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]TranscodeCall(nil), f.calls...)
}

// CallsFor returns recorded invocations of op.
func (f *FakeTranscoder) CallsFor(op string) []TranscodeCall {
	var out []TranscodeCall
	for _, c := range f.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeTranscoder) ExtractAudio(_ context.Context, src, dst string, sampleRate int) error {
	if err := f.record(TranscodeCall{Op: "extract_audio", Src: src, Dst: dst}); err != nil {
		return err
	}
	return EncodeWAV(dst, sampleRate, f.Audio)
}

func (f *FakeTranscoder) Trim(_ context.Context, src, dst string, start, duration float64) error {
	if err := f.record(TranscodeCall{Op: "trim", Src: src, Dst: dst, Start: start, Duration: duration}); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte(fmt.Sprintf("raw %v+%v", start, duration)), 0o644)
}

func (f *FakeTranscoder) FilterMux(_ context.Context, job ffmpeg.FilterJob) error {
	if err := f.record(TranscodeCall{Op: "filter_mux", Src: job.Input, Dst: job.Output, Job: job}); err != nil {
		return err
	}
	out := job.Output
	if !filepath.IsAbs(out) {
		out = filepath.Join(job.Dir, out)
	}
	return os.WriteFile(out, []byte("preview"), 0o644)
}

func (f *FakeTranscoder) DecodeGray(_ context.Context, job ffmpeg.GrayJob, fn func(frame []byte) error) error {
	if err := f.record(TranscodeCall{Op: "decode_gray", Src: job.Input}); err != nil {
		return err
	}
	buf := make([]byte, job.ROI.W*job.ROI.H)
	for _, frame := range f.Frames {
		copy(buf, frame)
		if err := fn(buf); err != nil {
			return err
		}
	}
	return nil
}

// FakeProber returns a canned probe result.
type FakeProber struct {
	Result ffprobe.Result
	Err    error
}

var _ ffprobe.Prober = FakeProber{}

func (p FakeProber) Inspect(context.Context, string) (ffprobe.Result, error) {
	return p.Result, p.Err
}

// VideoProbe builds a probe result with one video stream and one audio stream.
func VideoProbe(width, height int, frameRate string) ffprobe.Result {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{
			{Index: 0, CodecType: "video", Width: width, Height: height, AvgFrameRate: frameRate},
			{Index: 1, CodecType: "audio"},
		},
	}
}

// GrayFrames builds n frames of size bytes; frames listed in changed are
// filled with 255, all others with 0.
func GrayFrames(n, size int, changed ...int) [][]byte {
	flagged := make(map[int]bool, len(changed))
	for _, c := range changed {
		flagged[c] = true
	}
	frames := make([][]byte, n)
	for i := range frames {
		frame := make([]byte, size)
		if flagged[i] {
			for j := range frame {
				frame[j] = 255
			}
		}
		frames[i] = frame
	}
	return frames
}
