// Package ffprobe wraps the ffprobe CLI and exposes typed helpers for the
// stream properties clipper needs: frame dimensions, frame rate, and duration.
package ffprobe
