// Package ai defines the contract between the chat orchestrator and a language model backend.
package ai

import (
	"context"

	"github.com/casesimpli/assistant-backend/internal/types"
)

// DeltaStream is a finite, forward-only sequence of text fragments.
// Recv returns io.EOF after the last fragment of a completed stream; any other error means
// the stream failed and no further fragments will arrive. Fragments received before a failure
// remain valid.
type DeltaStream interface {
	Recv() (string, error)
	Close() error
}

// Gateway submits a conversation to a language model.
// The system prompt is prepended to messages.
type Gateway interface {
	CompleteStream(ctx context.Context, messages []types.Message, systemPrompt string) (DeltaStream, error)
	CompleteOnce(ctx context.Context, messages []types.Message, systemPrompt string) (string, error)
}
