package api

import (
	"context"

	"clipper/internal/clips"
	"clipper/internal/history"
	"clipper/internal/pipeline"
	"clipper/internal/preflight"
	"clipper/internal/status"
)

// Pipeline is the orchestrator surface the handlers drive.
type Pipeline interface {
	Process(ctx context.Context, upload pipeline.Upload) ([]string, error)
	Status() (status.Status, error)
	Clips() ([]string, error)
	ClipConfig(id string) (clips.RenderConfig, error)
	SaveClipConfig(id string, cfg clips.RenderConfig) error
	Render(ctx context.Context, id string) (string, error)
}

// History is the run history surface.
type History interface {
	List(ctx context.Context, limit int) ([]history.Run, error)
	Get(ctx context.Context, id string) (history.Run, error)
}

// HealthFunc produces the preflight report.
type HealthFunc func(ctx context.Context) preflight.Report

// ProcessResponse is returned by POST /upload.
type ProcessResponse struct {
	Status string   `json:"status"`
	Clips  []string `json:"clips"`
}

// OKResponse acknowledges a write.
type OKResponse struct {
	OK      bool   `json:"ok"`
	Preview string `json:"preview,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// RunsResponse is returned by GET /runs.
type RunsResponse struct {
	Runs []history.Run `json:"runs"`
}
