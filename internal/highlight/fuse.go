package highlight

import (
	"math"
	"sort"
)

// Fuse keeps each audio hit that has a visual hit strictly within window
// seconds and lies more than minGap seconds after the previously accepted hit.
// Accepted times are truncated to whole seconds; the gap is measured from the
// untruncated time of the last accepted hit. Both inputs must be sorted.
func Fuse(audioHits, visualHits []float64, minGap, window float64) []int {
	highlights := []int{}
	accepted := false
	var last float64
	for _, t := range audioHits {
		if !nearVisual(visualHits, t, window) {
			continue
		}
		if accepted && t-last <= minGap {
			continue
		}
		highlights = append(highlights, int(t))
		last = t
		accepted = true
	}
	return highlights
}

func nearVisual(visual []float64, t, window float64) bool {
	for i := sort.SearchFloat64s(visual, t-window); i < len(visual) && visual[i] < t+window; i++ {
		if math.Abs(t-visual[i]) < window {
			return true
		}
	}
	return false
}
