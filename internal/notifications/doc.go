// Package notifications posts run outcomes to an ntfy topic.
//
// NewService returns a no-op notifier when no topic is configured, so the
// pipeline can call it unconditionally.
package notifications
