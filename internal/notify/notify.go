// Package notify delivers monitor output to chat channels. The primary
// backend posts Feishu interactive cards; LogNotifier stands in during
// development and in tests.
package notify

import (
	"context"
	"log"
)

// Card is one rendered notification: a plain-text header, a lark_md
// body, and a header template color (red/green/blue).
type Card struct {
	Title string
	Color string
	Body  string
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// SendCard delivers one card. Returns error if delivery fails.
	SendCard(ctx context.Context, c Card) error

	// Reply answers an inbound chat message with plain text. Backends
	// without a reply channel may log and return nil.
	Reply(ctx context.Context, messageID, text string) error
}

// LogNotifier logs cards instead of delivering them (useful for development).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) SendCard(ctx context.Context, c Card) error {
	log.Printf("[notify] [%s] %s\n%s", c.Color, c.Title, c.Body)
	return nil
}

func (n *LogNotifier) Reply(ctx context.Context, messageID, text string) error {
	log.Printf("[notify] reply to %s: %s", messageID, text)
	return nil
}
