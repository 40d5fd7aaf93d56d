// Package clips owns the per-clip directories under the data directory.
//
// The Segmenter cuts one raw segment per highlight and reconciles the clip
// set with the latest run. RenderConfig is the per-clip layout document that
// the render composer consumes; it is always read with defaults filled in and
// validated before it is written.
package clips
