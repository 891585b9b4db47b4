package chat

import (
	"github.com/google/uuid"

	"github.com/casesimpli/assistant-backend/internal/types"
)

// TurnRequest is the request body for a chat turn.
// A nil ChatID starts a new conversation.
type TurnRequest struct {
	ChatID  *uuid.UUID `json:"chat_id,omitempty"`
	Message string     `json:"message"`
}

// CompletionResponse is the result of a non-streaming turn.
type CompletionResponse struct {
	Response string          `json:"response"`
	History  []types.Message `json:"history"`
	ChatID   uuid.UUID       `json:"chat_id"`
	Title    *string         `json:"title"`
}

// StreamStatus is the terminal state of a streamed reply.
type StreamStatus int

const (
	StreamCompleted StreamStatus = iota
	StreamFailed
	StreamCancelled
)

func (s StreamStatus) String() string {
	switch s {
	case StreamCompleted:
		return "completed"
	case StreamFailed:
		return "failed"
	case StreamCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// TurnResult describes a finished streaming turn.
type TurnResult struct {
	ChatID uuid.UUID
	Status StreamStatus
	// Reply is the assistant content as persisted, possibly partial or empty.
	Reply string
	// Err is the upstream failure when Status is StreamFailed.
	Err error
}
