// Package notification delivers alert text to external channels.
// Delivery is fire-and-forget: failures are logged by callers, never
// propagated into the pipeline.
package notification

import (
	"context"
	"log"
)

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers one message. Returns error if delivery fails.
	Send(ctx context.Context, text string) error
}

// LogNotifier logs messages instead of sending them (useful for
// development and tests).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, text string) error {
	log.Printf("[notify] %s", text)
	return nil
}
