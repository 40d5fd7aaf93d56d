package preflight_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipper/internal/preflight"
	"clipper/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := preflight.CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := preflight.CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed || !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("expected failure for missing dir, got %+v", result)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := preflight.CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestRunAllWithStubbedTools(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	report := preflight.RunAll(context.Background(), cfg)
	if !report.OK {
		t.Fatalf("expected healthy report, got failures %v", report.Failures())
	}
	if len(report.Dependencies) != 3 || len(report.Checks) != 4 {
		t.Fatalf("unexpected report shape: %+v", report)
	}
}

func TestRunAllReportsMissingTool(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg", "ffprobe"))
	cfg.Tools.UVX = "clipper-missing-uvx"
	report := preflight.RunAll(context.Background(), cfg)
	if report.OK {
		t.Fatal("expected report to fail")
	}
	failures := report.Failures()
	if len(failures) != 1 || !strings.HasPrefix(failures[0], "uvx: ") {
		t.Fatalf("unexpected failures %v", failures)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := preflight.CheckFreeSpace("space", dir, 1); !result.Passed || !strings.Contains(result.Detail, "free on") {
		t.Fatalf("expected pass with a 1 byte floor, got %+v", result)
	}
	if result := preflight.CheckFreeSpace("space", dir, 1<<62); result.Passed || !strings.Contains(result.Detail, "need") {
		t.Fatalf("expected failure with an impossible floor, got %+v", result)
	}
	if result := preflight.CheckFreeSpace("space", filepath.Join(dir, "missing"), 1); result.Passed {
		t.Fatal("expected failure for a missing path")
	}
}
