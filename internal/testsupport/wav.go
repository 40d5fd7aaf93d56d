package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV writes mono 16-bit PCM samples to path.
func EncodeWAV(path string, sampleRate int, samples []int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if buf.Data == nil {
		buf.Data = []int{}
	}
	// An empty write still emits the fmt and data chunk headers.
	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteWAV writes mono 16-bit samples to path or fails the test.
func WriteWAV(t testing.TB, path string, sampleRate int, samples []int) {
	t.Helper()
	if err := EncodeWAV(path, sampleRate, samples); err != nil {
		t.Fatalf("write wav %s: %v", path, err)
	}
}

// Burst builds a mono signal of windows of hop samples each. Windows listed in
// loud alternate at loudAmp, all others at quietAmp. A trailing partial window
// of tail samples at quietAmp is appended.
func Burst(windows, hop, tail, quietAmp, loudAmp int, loud ...int) []int {
	isLoud := make(map[int]bool, len(loud))
	for _, w := range loud {
		isLoud[w] = true
	}
	samples := make([]int, 0, windows*hop+tail)
	for w := 0; w < windows; w++ {
		amp := quietAmp
		if isLoud[w] {
			amp = loudAmp
		}
		for i := 0; i < hop; i++ {
			if i%2 == 0 {
				samples = append(samples, amp)
			} else {
				samples = append(samples, -amp)
			}
		}
	}
	for i := 0; i < tail; i++ {
		if i%2 == 0 {
			samples = append(samples, quietAmp)
		} else {
			samples = append(samples, -quietAmp)
		}
	}
	return samples
}
