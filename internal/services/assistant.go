package services

import (
	"context"

	"github.com/mindease/go-journal-backend/internal/assistant"
)

// Assistant defines the remote-completion contract required by the services
// in this package. *assistant.Client satisfies it; tests substitute a stub.
//
// Methods never return errors: a failed call yields the shape's fallback
// value and ok=false.
type Assistant interface {
	// Enabled reports whether an API key is configured.
	Enabled() bool

	// Reflect produces the empathic reply for a fresh check-in.
	Reflect(ctx context.Context, moodInput, journalText string) (string, bool)

	// Converse produces the next assistant message for a thread.
	Converse(ctx context.Context, history []assistant.Message, userMessage string) (string, bool)

	// MoodScore rates journal text 1-10.
	MoodScore(ctx context.Context, journalText string) (int, bool)

	// Insights produces bullet-point observations over combined entries.
	Insights(ctx context.Context, combinedText string) (string, bool)
}
