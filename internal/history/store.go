package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"clipper/internal/services"
	"clipper/internal/status"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	timeLayout   = time.RFC3339Nano
	defaultLimit = 20
)

// Run is one row of the history table.
type Run struct {
	ID         string        `json:"id"`
	Upload     string        `json:"upload"`
	State      status.State  `json:"state"`
	Error      string        `json:"error,omitempty"`
	Summary    string        `json:"summary,omitempty"`
	ClipCount  int           `json:"clip_count"`
	Steps      []status.Step `json:"steps"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

// Duration returns the wall time of a finished run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome carries the fields written when a run ends.
type Outcome struct {
	State     status.State
	Error     string
	Summary   string
	ClipCount int
	Steps     []status.Step
}

// Store persists run history.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open connects to the database at path and applies pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "history", "open", path, err)
	}
	// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrIO, "history", "open", fmt.Sprintf("apply %q", pragma), err)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrIO, "history", "migrate", path, err)
	}
	return store, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

// Begin records the start of a run.
func (s *Store) Begin(ctx context.Context, id, upload string) error {
	if strings.TrimSpace(id) == "" {
		return services.Wrap(services.ErrValidation, "history", "begin", "run id required", nil)
	}
	started := s.now().UTC().Format(timeLayout)
	err := s.exec(ctx,
		`INSERT INTO runs (id, upload, state, started_at) VALUES (?, ?, ?, ?)`,
		id, upload, string(status.StateProcessing), started)
	if err != nil {
		return services.Wrap(services.ErrIO, "history", "begin", id, err)
	}
	return nil
}

// Finish stores the outcome of a run.
func (s *Store) Finish(ctx context.Context, id string, outcome Outcome) error {
	steps := outcome.Steps
	if steps == nil {
		steps = []status.Step{}
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return services.Wrap(services.ErrIO, "history", "finish", "encode steps", err)
	}
	finished := s.now().UTC().Format(timeLayout)

	var affected int64
	err = retryOnBusy(ctx, func() error {
		res, execErr := s.db.ExecContext(ctx,
			`UPDATE runs SET state = ?, error = ?, summary = ?, clip_count = ?, steps_json = ?, finished_at = ? WHERE id = ?`,
			string(outcome.State), outcome.Error, outcome.Summary, outcome.ClipCount, string(stepsJSON), finished, id)
		if execErr != nil {
			return execErr
		}
		affected, execErr = res.RowsAffected()
		return execErr
	})
	if err != nil {
		return services.Wrap(services.ErrIO, "history", "finish", id, err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "history", "finish", fmt.Sprintf("run %s", id), nil)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "history", "list", "query runs", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrIO, "history", "list", "scan run", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrIO, "history", "list", "iterate runs", err)
	}
	return runs, nil
}

// Get returns one run by id.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, services.Wrap(services.ErrNotFound, "history", "get", fmt.Sprintf("run %s", id), nil)
	}
	if err != nil {
		return Run{}, services.Wrap(services.ErrIO, "history", "get", id, err)
	}
	return run, nil
}

// Prune deletes runs that started before cutoff and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, execErr := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, before.UTC().Format(timeLayout))
		if execErr != nil {
			return execErr
		}
		removed, execErr = res.RowsAffected()
		return execErr
	})
	if err != nil {
		return 0, services.Wrap(services.ErrIO, "history", "prune", "delete runs", err)
	}
	return removed, nil
}

const runColumns = `id, upload, state, error, summary, clip_count, steps_json, started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run       Run
		state     string
		stepsJSON string
		started   string
		finished  sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Upload, &state, &run.Error, &run.Summary, &run.ClipCount, &stepsJSON, &started, &finished); err != nil {
		return Run{}, err
	}
	run.State = status.State(state)
	if stepsJSON != "" {
		if err := json.Unmarshal([]byte(stepsJSON), &run.Steps); err != nil {
			return Run{}, fmt.Errorf("decode steps: %w", err)
		}
	}
	ts, err := time.Parse(timeLayout, started)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	run.StartedAt = ts
	if finished.Valid && finished.String != "" {
		ts, err := time.Parse(timeLayout, finished.String)
		if err != nil {
			return Run{}, fmt.Errorf("parse finished_at: %w", err)
		}
		run.FinishedAt = &ts
	}
	return run, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil || !isSQLiteBusy(lastErr) {
			return lastErr
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, busyRetryMaxBackoff)
	}
	return lastErr
}
