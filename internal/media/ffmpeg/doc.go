// Package ffmpeg drives the ffmpeg CLI for every media operation clipper
// performs: audio extraction, stream-copy trims, filter-graph renders, and
// sampled grayscale frame decoding for motion analysis.
//
// Argument vectors are assembled with github.com/u2takey/ffmpeg-go and executed
// through a CommandRunner so tests can capture them without a real binary.
package ffmpeg
