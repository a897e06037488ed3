package input

import (
	"context"

	"articlegen/internal/domain/entity"
)

type AgentExecutor interface {
	Execute(ctx context.Context, req entity.AgentRequest) (*entity.AgentResponse, error)
}
