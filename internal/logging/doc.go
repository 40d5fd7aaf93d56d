// Package logging assembles structured slog loggers used across clipper.
//
// It owns the console and JSON handlers, level parsing, and output fan-out to
// stdout plus the rotating log file under the configured log directory.
// Context helpers tag log lines with run IDs, stages, clip IDs, and request
// correlation IDs so a single upload can be traced from the HTTP handler down
// to the ffmpeg invocation that failed.
package logging
