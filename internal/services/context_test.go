package services_test

import (
	"context"
	"testing"

	"clipper/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithStage(ctx, "cut_clips")
	ctx = services.WithClipID(ctx, "clip_01")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "cut_clips" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if clip, ok := services.ClipIDFromContext(ctx); !ok || clip != "clip_01" {
		t.Fatalf("unexpected clip id: %v %v", clip, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected blank stage to be ignored")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected blank run id to be ignored")
	}
}
