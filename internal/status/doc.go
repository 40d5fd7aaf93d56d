// Package status tracks the progress of the current pipeline run.
//
// The status document lists the five pipeline steps with their state and a
// short human-readable detail, plus the overall run state. FileStore persists
// it as JSON with atomic replacement so HTTP handlers, the CLI, and the watch
// TUI can read it at any moment without coordinating with the writer.
package status
