package testsupport

import (
	"context"
	"testing"

	"clipper/internal/config"
	"clipper/internal/history"
)

// MustOpenHistory opens the run history database for cfg and closes it when
// the test finishes.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()
	store, err := history.Open(context.Background(), cfg.HistoryPath())
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
