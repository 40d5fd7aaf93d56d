package pipeline

import (
	"context"

	"clipper/internal/services"
	"clipper/internal/status"
)

// Stage is one step of a run. Running is the detail shown while the stage
// executes; Run returns the detail recorded on completion.
type Stage struct {
	ID      status.StepID
	Running string
	Run     func(ctx context.Context) (string, error)
}

// StageError reports the stage that stopped a run.
type StageError struct {
	Stage status.StepID
	Err   error
}

func (e *StageError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return string(e.Stage) + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Sequence executes stages in order. The first failure marks its step failed,
// fails the run with the same text, and is returned as a *StageError. When the
// store itself rejects a step update the run is still failed so the document
// never stays in processing.
func Sequence(ctx context.Context, store status.Store, stages []Stage) error {
	for _, stage := range stages {
		if err := store.UpdateStep(stage.ID, status.StepInProgress, stage.Running); err != nil {
			return abort(store, stage.ID, err)
		}
		detail, err := stage.Run(services.WithStage(ctx, string(stage.ID)))
		if err != nil {
			reason := err.Error()
			if markErr := store.UpdateStep(stage.ID, status.StepFailed, reason); markErr != nil {
				return abort(store, stage.ID, markErr)
			}
			if failErr := store.Fail(reason); failErr != nil {
				return failErr
			}
			return &StageError{Stage: stage.ID, Err: err}
		}
		if err := store.UpdateStep(stage.ID, status.StepCompleted, detail); err != nil {
			return abort(store, stage.ID, err)
		}
	}
	return nil
}

// abort fails the run after a store error. The Fail result is ignored; the
// store error is what the caller needs.
func abort(store status.Store, id status.StepID, err error) error {
	_ = store.Fail(err.Error())
	return &StageError{Stage: id, Err: err}
}
