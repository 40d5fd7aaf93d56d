package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clipper/internal/config"
)

const userAgent = "clipper/0.1"

// Service is the notification surface used by the pipeline.
type Service interface {
	NotifyRunCompleted(ctx context.Context, upload string, clips int, elapsed time.Duration) error
	NotifyRunFailed(ctx context.Context, upload, stage string, err error) error
	NotifyRenderCompleted(ctx context.Context, clipID string) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed notifier, or a no-op when the topic is
// empty.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{endpoint: topic, client: &http.Client{Timeout: timeout}}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, upload string, clips int, elapsed time.Duration) error {
	elapsed = elapsed.Round(time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	message := fmt.Sprintf("✂️ %s: %d clip(s) ready in %s", displayName(upload), clips, elapsed)
	if clips == 0 {
		message = fmt.Sprintf("%s: no highlights found (%s)", displayName(upload), elapsed)
	}
	return n.send(ctx, payload{
		title:   "clipper - Run Complete",
		message: message,
		tags:    []string{"clipper", "run", "completed"},
	})
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, upload, stage string, err error) error {
	var b strings.Builder
	b.WriteString("❌ ")
	b.WriteString(displayName(upload))
	if stage = strings.TrimSpace(stage); stage != "" {
		b.WriteString(" failed during ")
		b.WriteString(stage)
	} else {
		b.WriteString(" failed")
	}
	b.WriteString(": ")
	if err != nil {
		b.WriteString(strings.TrimSpace(err.Error()))
	} else {
		b.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "clipper - Run Failed",
		message:  b.String(),
		tags:     []string{"clipper", "run", "error"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyRenderCompleted(ctx context.Context, clipID string) error {
	return n.send(ctx, payload{
		title:    "clipper - Preview Ready",
		message:  fmt.Sprintf("🎞️ Preview rendered for %s", strings.TrimSpace(clipID)),
		tags:     []string{"clipper", "render", "completed"},
		priority: "low",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "clipper - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"clipper", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func displayName(upload string) string {
	if upload = strings.TrimSpace(upload); upload != "" {
		return upload
	}
	return "upload"
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, string, int, time.Duration) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, string, error) error         { return nil }
func (noopService) NotifyRenderCompleted(context.Context, string) error                  { return nil }
func (noopService) TestNotification(context.Context) error                               { return nil }
