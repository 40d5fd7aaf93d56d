package daemonrun_test

import (
	"context"
	"os"
	"testing"

	"clipper/internal/daemonrun"
	"clipper/internal/status"
	"clipper/internal/testsupport"
)

func TestBuildWiresRuntime(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	rt, err := daemonrun.Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer rt.Close()

	if _, err := os.Stat(cfg.HistoryPath()); err != nil {
		t.Fatalf("expected history database: %v", err)
	}
	doc, err := rt.Orchestrator.Status()
	if err != nil {
		t.Fatal(err)
	}
	if doc.State != status.StateIdle {
		t.Fatalf("expected idle status, got %s", doc.State)
	}
	ids, err := rt.Orchestrator.Clips()
	if err != nil || len(ids) != 0 {
		t.Fatalf("expected no clips, got %v, %v", ids, err)
	}
}

func TestBuildRequiresConfig(t *testing.T) {
	if _, err := daemonrun.Build(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error without config")
	}
}
