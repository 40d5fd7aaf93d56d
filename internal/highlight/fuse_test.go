package highlight_test

import (
	"math"
	"math/rand"
	"slices"
	"sort"
	"testing"

	"clipper/internal/highlight"
)

func TestFuseGapMeasuredFromAcceptedHighlight(t *testing.T) {
	got := highlight.Fuse([]float64{10, 50}, []float64{10, 50}, 60, 1.5)
	if !slices.Equal(got, []int{10}) {
		t.Fatalf("expected [10], got %v", got)
	}
}

func TestFuseAcceptsFirstHitRegardlessOfGap(t *testing.T) {
	got := highlight.Fuse([]float64{3.75}, []float64{4}, 180, 1.5)
	if !slices.Equal(got, []int{3}) {
		t.Fatalf("expected [3], got %v", got)
	}
}

func TestFuseRequiresStrictlyCloseVisualHit(t *testing.T) {
	cases := []struct {
		name   string
		visual []float64
		want   []int
	}{
		{"exactly window apart", []float64{11.5}, []int{}},
		{"inside window", []float64{11.4}, []int{10}},
		{"before hit", []float64{8.6}, []int{10}},
		{"no visual", nil, []int{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := highlight.Fuse([]float64{10}, tc.visual, 180, 1.5)
			if !slices.Equal(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestFuseGapIsStrict(t *testing.T) {
	got := highlight.Fuse([]float64{0, 180, 180.25}, []float64{0, 180}, 180, 1.5)
	if !slices.Equal(got, []int{0, 180}) {
		t.Fatalf("expected [0 180], got %v", got)
	}
}

func TestFuseRejectedHitsDoNotMoveGapAnchor(t *testing.T) {
	// 100 is rejected by the gap; 190 is measured from 10, not from 100.
	got := highlight.Fuse([]float64{10, 100, 190.5}, []float64{10, 100, 190}, 180, 1.5)
	if !slices.Equal(got, []int{10, 190}) {
		t.Fatalf("expected [10 190], got %v", got)
	}
}

func TestFuseProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 200; iter++ {
		audio := randomTimes(rng, rng.Intn(60), 3600)
		visual := randomTimes(rng, rng.Intn(60), 3600)
		const gap, window = 180, 1.5

		got := highlight.Fuse(audio, visual, gap, window)
		for i := 1; i < len(got); i++ {
			if got[i]-got[i-1] < gap {
				t.Fatalf("highlights %d and %d closer than %d", got[i-1], got[i], gap)
			}
		}
		for _, h := range got {
			near := false
			for _, v := range visual {
				// Truncation moves the reported time back by less than a second.
				if math.Abs(float64(h)-v) < window+1 {
					near = true
					break
				}
			}
			if !near {
				t.Fatalf("highlight %d has no visual hit nearby in %v", h, visual)
			}
		}
		if len(got) > 0 && !slices.Contains(audioSeconds(audio), got[0]) {
			t.Fatalf("first highlight %d not derived from an audio hit", got[0])
		}
	}
}

func randomTimes(rng *rand.Rand, n int, span float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Round(rng.Float64()*span*4) / 4
	}
	sort.Float64s(out)
	return out
}

func audioSeconds(times []float64) []int {
	out := make([]int, len(times))
	for i, t := range times {
		out[i] = int(t)
	}
	return out
}
