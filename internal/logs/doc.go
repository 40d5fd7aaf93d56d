// Package logs reads clipper.log for "clipper logs": the last N lines, and
// lines appended after a byte offset with optional polling.
package logs
