package testsupport

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// FakeNotifier records notifications as short strings.
type FakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *FakeNotifier) add(event string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

// Events returns what was sent so far.
func (f *FakeNotifier) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func (f *FakeNotifier) NotifyRunCompleted(_ context.Context, upload string, clips int, _ time.Duration) error {
	return f.add(fmt.Sprintf("completed %s %d", upload, clips))
}

func (f *FakeNotifier) NotifyRunFailed(_ context.Context, upload, stage string, _ error) error {
	return f.add(fmt.Sprintf("failed %s %s", upload, stage))
}

func (f *FakeNotifier) NotifyRenderCompleted(_ context.Context, clipID string) error {
	return f.add("rendered " + clipID)
}

func (f *FakeNotifier) TestNotification(context.Context) error {
	return f.add("test")
}
