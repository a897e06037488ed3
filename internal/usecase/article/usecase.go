package article

import (
	"context"
	"fmt"
	"strings"
	"time"

	"articlegen/internal/application/port/input"
	"articlegen/internal/application/port/output"
	"articlegen/internal/domain/entity"
)

var _ input.ArticleGenerator = (*UseCase)(nil)

type TaskBuilder interface {
	BuildTasks(topic string) ([]entity.Task, error)
}

type UseCase struct {
	crew     TaskBuilder
	pipeline input.PipelineRunner
	logger   output.LoggerPort
	now      func() time.Time
}

type Option func(*UseCase)

// WithClock sets the source of the article's generation date.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) { uc.now = now }
}

func New(crew TaskBuilder, pipeline input.PipelineRunner, logger output.LoggerPort, opts ...Option) *UseCase {
	uc := &UseCase{
		crew:     crew,
		pipeline: pipeline,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Generate validates topic, runs the research and write tasks and returns
// the writer's output as an article. A blank topic fails with
// entity.ErrInvalidInput before any task is built.
func (uc *UseCase) Generate(ctx context.Context, topic string, progress output.ProgressPort) (*entity.Article, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: please enter a topic", entity.ErrInvalidInput)
	}

	tasks, err := uc.crew.BuildTasks(topic)
	if err != nil {
		return nil, fmt.Errorf("build tasks: %w", err)
	}

	uc.logger.Info("Article generation started", "topic", topic, "tasks", len(tasks))
	start := uc.now()

	result, err := uc.pipeline.Run(ctx, tasks, progress)
	if err != nil {
		uc.logger.Error("Article generation failed", "topic", topic, "error", err)
		return nil, err
	}

	article := &entity.Article{
		Topic:       topic,
		Body:        result.Final(),
		GeneratedAt: uc.now(),
	}
	uc.logger.Info("Article generation completed", "topic", topic, "bodyLen", len(article.Body), "duration", article.GeneratedAt.Sub(start).String())
	return article, nil
}
