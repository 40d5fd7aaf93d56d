// Package highlight finds highlight timestamps in a recorded video.
//
// Two independent passes produce candidate hits: an audio pass that flags
// loud windows relative to the mean RMS energy, and a visual pass that flags
// sudden change in a small region of interest. Fusion keeps audio hits that
// sit close to a visual hit and spaces accepted highlights by a minimum gap.
// The result is written to a JSON artifact consumed by the clip segmenter.
package highlight
