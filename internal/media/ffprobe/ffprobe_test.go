package ffprobe

import (
	"math"
	"testing"
)

const samplePayload = `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "avg_frame_rate": "30000/1001", "r_frame_rate": "30000/1001"},
    {"index": 1, "codec_type": "audio", "codec_name": "aac", "sample_rate": "48000", "channels": 2}
  ],
  "format": {"filename": "input.mp4", "duration": "123.45", "size": "1000"}
}`

func TestParseAndHelpers(t *testing.T) {
	result, err := Parse([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	video, ok := result.VideoStream()
	if !ok {
		t.Fatal("expected a video stream")
	}
	if video.Width != 1920 || video.Height != 1080 {
		t.Fatalf("unexpected dimensions: %dx%d", video.Width, video.Height)
	}
	if math.Abs(video.FrameRate()-29.97) > 0.01 {
		t.Fatalf("unexpected frame rate: %v", video.FrameRate())
	}
}

func TestFrameRateFallbacks(t *testing.T) {
	cases := []struct {
		stream Stream
		want   float64
	}{
		{Stream{AvgFrameRate: "0/0", RFrameRate: "25/1"}, 25},
		{Stream{AvgFrameRate: "60"}, 60},
		{Stream{AvgFrameRate: "bad", RFrameRate: ""}, 0},
		{Stream{}, 0},
	}
	for _, tc := range cases {
		if got := tc.stream.FrameRate(); got != tc.want {
			t.Fatalf("FrameRate(%+v) = %v, want %v", tc.stream, got, tc.want)
		}
	}
}

func TestVideoStreamMissing(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "audio"}}}
	if _, ok := result.VideoStream(); ok {
		t.Fatal("expected no video stream")
	}
}
