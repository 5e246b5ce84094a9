package llm

import (
	"context"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options are fixed when a provider is built; callers only pass messages.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
	// Timeout bounds one Generate call. Streams run on a client without a
	// deadline and end with the caller's context.
	Timeout time.Duration
}

// Bound applies Timeout to ctx for a single completion.
func (o Options) Bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.Timeout)
}

type Provider interface {
	Generate(ctx context.Context, messages []Message) (string, error)
	// GenerateStream calls onDelta for every non-empty piece of the answer in
	// order. It stops early when onDelta or ctx returns an error.
	GenerateStream(ctx context.Context, messages []Message, onDelta func(delta string) error) error
}
