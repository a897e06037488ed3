package input

import (
	"context"

	"articlegen/internal/application/port/output"
	"articlegen/internal/domain/entity"
)

type PipelineRunner interface {
	Run(ctx context.Context, tasks []entity.Task, progress output.ProgressPort) (*entity.PipelineResult, error)
}

type ArticleGenerator interface {
	Generate(ctx context.Context, topic string, progress output.ProgressPort) (*entity.Article, error)
}
