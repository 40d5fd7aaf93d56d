package status

import (
	"errors"
	"time"
)

// State is the overall run state.
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

// StepState is the state of a single pipeline step.
type StepState string

const (
	StepPending    StepState = "pending"
	StepInProgress StepState = "in_progress"
	StepCompleted  StepState = "completed"
	StepFailed     StepState = "failed"
)

// StepID names a pipeline step.
type StepID string

const (
	StepUpload            StepID = "upload"
	StepExtractAudio      StepID = "extract_audio"
	StepDetectHighlights  StepID = "detect_highlights"
	StepCutClips          StepID = "cut_clips"
	StepGenerateSubtitles StepID = "generate_subtitles"
)

// ErrInvalidTransition reports an attempt to move a step backwards.
var ErrInvalidTransition = errors.New("invalid step transition")

type stepDef struct {
	id    StepID
	label string
}

var stepDefs = []stepDef{
	{StepUpload, "Upload received"},
	{StepExtractAudio, "Extract audio"},
	{StepDetectHighlights, "Detect highlights"},
	{StepCutClips, "Create clips"},
	{StepGenerateSubtitles, "Transcribe clips"},
}

// StepIDs returns the pipeline steps in execution order.
func StepIDs() []StepID {
	ids := make([]StepID, len(stepDefs))
	for i, def := range stepDefs {
		ids[i] = def.id
	}
	return ids
}

// Step is one entry of the status document.
type Step struct {
	ID     StepID    `json:"id"`
	Label  string    `json:"label"`
	State  StepState `json:"state"`
	Detail string    `json:"detail"`
}

// Status is the persisted status document.
type Status struct {
	RunID     string    `json:"run_id,omitempty"`
	Upload    *string   `json:"upload"`
	State     State     `json:"state"`
	Steps     []Step    `json:"steps"`
	Error     *string   `json:"error"`
	Summary   *string   `json:"summary"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Idle returns the document reported before any run has started.
func Idle(now time.Time) Status {
	return Status{
		State:     StateIdle,
		Steps:     pendingSteps(),
		UpdatedAt: now.UTC(),
	}
}

func pendingSteps() []Step {
	steps := make([]Step, len(stepDefs))
	for i, def := range stepDefs {
		steps[i] = Step{ID: def.id, Label: def.label, State: StepPending}
	}
	return steps
}

// Step returns the entry for id.
func (s Status) Step(id StepID) (Step, bool) {
	for _, step := range s.Steps {
		if step.ID == id {
			return step, true
		}
	}
	return Step{}, false
}

// Progress returns completed and total step counts.
func (s Status) Progress() (int, int) {
	done := 0
	for _, step := range s.Steps {
		if step.State == StepCompleted {
			done++
		}
	}
	return done, len(s.Steps)
}

// Active reports whether a run is in flight.
func (s Status) Active() bool {
	return s.State == StateProcessing
}

// CanTransition reports whether a step may move from one state to another.
// Same-state moves are allowed so callers can refresh the detail.
func CanTransition(from, to StepState) bool {
	if from == to {
		return true
	}
	switch from {
	case StepPending:
		return to == StepInProgress
	case StepInProgress:
		return to == StepCompleted || to == StepFailed
	default:
		return false
	}
}
