package testsupport

import (
	"context"
	"sync"

	"clipper/internal/subtitles"
)

// FakeTranscriber returns canned segments and records the media it saw.
type FakeTranscriber struct {
	mu       sync.Mutex
	Segments []subtitles.Segment
	Err      error
	Media    []string
}

var _ subtitles.Transcriber = (*FakeTranscriber)(nil)

func (f *FakeTranscriber) Transcribe(_ context.Context, media, _ string) ([]subtitles.Segment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Media = append(f.Media, media)
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]subtitles.Segment(nil), f.Segments...), nil
}
