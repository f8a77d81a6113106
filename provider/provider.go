package provider

import (
	"context"

	"github.com/casualjim/brainstorm/messages"
	"github.com/google/uuid"
)

// Provider is implemented by every hosted completion API adapter.
type Provider interface {
	ChatCompletion(context.Context, CompletionParams) (<-chan StreamEvent, error)
}

// CompletionParams holds everything needed for a single chat completion request.
type CompletionParams struct {
	// RunID identifies this request in events and logs.
	RunID uuid.UUID

	// Model is the provider specific model identifier.
	Model string

	// Messages is the full request sequence, system prompt included.
	Messages []messages.Message

	// Stream asks for incremental delivery of the response.
	Stream bool

	// Prevents unkeyed literals
	_ struct{}
}
