// Package pipeline runs the highlight pipeline end to end.
//
// Sequence drives an ordered list of stages against a status.Store, marking
// each step in progress, then completed or failed. Orchestrator owns the
// workspace lock and composes the concrete stages: storing the upload,
// extracting audio, detecting highlights, cutting clips, and transcribing
// them. It also exposes the per-clip operations (config and render) that must
// not overlap with a run.
package pipeline
