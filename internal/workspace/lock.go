// Package workspace guards the data directory against concurrent writers.
//
// A Lock is held for the whole of a pipeline run, a render, or a clip config
// save. It combines an in-process mutex with an advisory file lock so the
// HTTP server and a CLI invocation against the same data directory exclude
// each other.
package workspace

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gofrs/flock"
)

// ErrBusy reports that another writer holds the workspace.
var ErrBusy = errors.New("workspace busy: a run is already in progress")

// Lock is the workspace writer lock.
type Lock struct {
	mu   sync.Mutex
	file *flock.Flock
}

// New returns a lock backed by the file at path.
func New(path string) *Lock {
	return &Lock{file: flock.New(path)}
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.file.Path() }

// TryAcquire takes the lock without waiting. It returns a release func, or
// ErrBusy when the lock is held by this process or another one.
func (l *Lock) TryAcquire() (func(), error) {
	if !l.mu.TryLock() {
		return nil, ErrBusy
	}
	ok, err := l.file.TryLock()
	if err != nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("acquire workspace lock %s: %w", l.file.Path(), err)
	}
	if !ok {
		l.mu.Unlock()
		return nil, ErrBusy
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			_ = l.file.Unlock()
			l.mu.Unlock()
		})
	}, nil
}

// Held reports whether a writer currently holds the lock in this process.
func (l *Lock) Held() bool {
	if l.mu.TryLock() {
		l.mu.Unlock()
		return false
	}
	return true
}
