package output

import (
	"context"

	"articlegen/internal/domain/entity"
)

// LLMPort is a chat model bound to one model id and sampling temperature.
// Implementations wrap remote failures in *entity.ProviderError.
type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	Messages []entity.Message
	Tools    []entity.ToolDefinition
}

type ChatResponse struct {
	Message entity.Message
}
