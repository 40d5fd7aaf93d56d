package highlight

import (
	"context"
	"fmt"

	"clipper/internal/media/ffmpeg"
	"clipper/internal/media/ffprobe"
	"clipper/internal/services"
)

// MotionOptions configures the visual pass.
type MotionOptions struct {
	FrameSkip int
	Threshold float64
	ROI       ffmpeg.Rect
}

// MotionHits samples every FrameSkip-th frame of the video, compares the ROI
// against the previous sample, and returns the time of each frame whose mean
// absolute difference exceeds Threshold. A file without a video stream yields
// no hits.
func MotionHits(ctx context.Context, transcoder ffmpeg.Transcoder, prober ffprobe.Prober, path string, opts MotionOptions) ([]float64, error) {
	probe, err := prober.Inspect(ctx, path)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "highlight", "visual pass", "probe video", err)
	}
	stream, ok := probe.VideoStream()
	if !ok {
		return []float64{}, nil
	}
	fps := stream.FrameRate()
	if fps <= 0 {
		return nil, services.Wrap(services.ErrExternalTool, "highlight", "visual pass", "video frame rate unavailable", nil)
	}
	if err := checkROI(opts.ROI, stream.Width, stream.Height); err != nil {
		return nil, err
	}
	skip := opts.FrameSkip
	if skip < 1 {
		skip = 1
	}

	hits := []float64{}
	prev := make([]byte, opts.ROI.W*opts.ROI.H)
	sampled := 0
	job := ffmpeg.GrayJob{Input: path, Every: skip, ROI: opts.ROI}
	err = transcoder.DecodeGray(ctx, job, func(frame []byte) error {
		if sampled > 0 && meanAbsDiff(prev, frame) > opts.Threshold {
			hits = append(hits, float64(sampled*skip)/fps)
		}
		copy(prev, frame)
		sampled++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hits, nil
}

func checkROI(roi ffmpeg.Rect, width, height int) error {
	if roi.W <= 0 || roi.H <= 0 || roi.X < 0 || roi.Y < 0 || roi.X+roi.W > width || roi.Y+roi.H > height {
		return services.Wrap(services.ErrConfiguration, "highlight", "visual pass",
			fmt.Sprintf("region %dx%d+%d+%d outside %dx%d frame", roi.W, roi.H, roi.X, roi.Y, width, height), nil)
	}
	return nil
}

func meanAbsDiff(a, b []byte) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	var total int
	for i := 0; i < n; i++ {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		total += d
	}
	return float64(total) / float64(n)
}
