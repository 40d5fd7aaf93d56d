package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"clipper/internal/history"
	"clipper/internal/services"
	"clipper/internal/status"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBeginFinishGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.Begin(ctx, "run-1", "match.mp4"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	run, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if run.State != status.StateProcessing || run.FinishedAt != nil || run.Upload != "match.mp4" {
		t.Fatalf("unexpected open run: %+v", run)
	}

	steps := []status.Step{{ID: status.StepUpload, Label: "Upload received", State: status.StepCompleted, Detail: "Stored"}}
	outcome := history.Outcome{State: status.StateCompleted, Summary: "Created 3 clip(s).", ClipCount: 3, Steps: steps}
	if err := store.Finish(ctx, "run-1", outcome); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	run, err = store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if run.State != status.StateCompleted || run.ClipCount != 3 || run.Summary != "Created 3 clip(s)." {
		t.Fatalf("unexpected finished run: %+v", run)
	}
	if run.FinishedAt == nil || run.FinishedAt.Before(run.StartedAt) {
		t.Fatalf("expected finished_at after started_at, got %+v", run)
	}
	if len(run.Steps) != 1 || run.Steps[0].Detail != "Stored" {
		t.Fatalf("unexpected steps: %+v", run.Steps)
	}
}

func TestGetMissingRun(t *testing.T) {
	store := openStore(t)
	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	err = store.Finish(context.Background(), "nope", history.Outcome{State: status.StateError})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Finish, got %v", err)
	}
}

func TestBeginRequiresID(t *testing.T) {
	store := openStore(t)
	if err := store.Begin(context.Background(), " ", "x.mp4"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if err := store.Begin(ctx, id, id+".mp4"); err != nil {
			t.Fatal(err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("unexpected order: %+v", runs)
	}
}

func TestPruneRemovesOldRuns(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	if err := store.Begin(ctx, "old", "old.mp4"); err != nil {
		t.Fatal(err)
	}
	removed, err := store.Prune(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 pruned run, got %d", removed)
	}
	removed, err = store.Prune(ctx, time.Now().Add(-time.Hour))
	if err != nil || removed != 0 {
		t.Fatalf("expected nothing pruned, got %d, %v", removed, err)
	}
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()
	store, err := history.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Begin(ctx, "persist", "p.mp4"); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	store, err = history.Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()
	if _, err := store.Get(ctx, "persist"); err != nil {
		t.Fatalf("expected run after reopen: %v", err)
	}
}
