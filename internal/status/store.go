package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"clipper/internal/fileutil"
	"clipper/internal/services"
)

// Store records run progress. Implementations must be safe for concurrent
// readers while a single pipeline writes.
type Store interface {
	Reset(upload, runID string) error
	UpdateStep(id StepID, state StepState, detail string) error
	Complete(summary string) error
	Fail(reason string) error
	Read() (Status, error)
}

// FileStore persists the status document as a JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// Read loads the document without taking the writer lock. A missing file
// reads as the idle document.
func (s *FileStore) Read() (Status, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Idle(s.now()), nil
		}
		return Status{}, services.Wrap(services.ErrIO, "status", "read", s.path, err)
	}
	var doc Status
	if err := json.Unmarshal(data, &doc); err != nil {
		return Status{}, services.Wrap(services.ErrIO, "status", "read", "malformed status document", err)
	}
	if len(doc.Steps) == 0 {
		doc.Steps = pendingSteps()
	}
	if doc.State == "" {
		doc.State = StateIdle
	}
	return doc, nil
}

// Reset starts a new run: every step returns to pending and the run is
// marked processing.
func (s *FileStore) Reset(upload, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := Status{
		RunID: runID,
		State: StateProcessing,
		Steps: pendingSteps(),
	}
	if upload != "" {
		doc.Upload = &upload
	}
	return s.write(doc)
}

// UpdateStep moves a step forward. Backward moves return ErrInvalidTransition.
// An empty detail keeps the previous detail.
func (s *FileStore) UpdateStep(id StepID, state StepState, detail string) error {
	return s.mutate(func(doc *Status) error {
		for i := range doc.Steps {
			step := &doc.Steps[i]
			if step.ID != id {
				continue
			}
			if !CanTransition(step.State, state) {
				return fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, id, step.State, state)
			}
			step.State = state
			if detail != "" {
				step.Detail = detail
			}
			return nil
		}
		return services.Wrap(services.ErrValidation, "status", "update step", fmt.Sprintf("unknown step %q", id), nil)
	})
}

// Complete marks the run completed with a summary.
func (s *FileStore) Complete(summary string) error {
	return s.mutate(func(doc *Status) error {
		doc.State = StateCompleted
		if summary != "" {
			doc.Summary = &summary
		}
		return nil
	})
}

// Fail marks the run failed with reason.
func (s *FileStore) Fail(reason string) error {
	return s.mutate(func(doc *Status) error {
		doc.State = StateError
		doc.Error = &reason
		return nil
	})
}

func (s *FileStore) mutate(fn func(*Status) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.Read()
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return s.write(doc)
}

func (s *FileStore) write(doc Status) error {
	doc.UpdatedAt = s.now().UTC().Truncate(time.Second)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrIO, "status", "write", "encode status", err)
	}
	if err := fileutil.AtomicWriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return services.Wrap(services.ErrIO, "status", "write", s.path, err)
	}
	return nil
}
