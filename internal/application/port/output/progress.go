package output

import "articlegen/internal/domain/entity"

// ProgressPort receives real progress events from a pipeline run.
type ProgressPort interface {
	OnProgress(event entity.ProgressEvent)
}

type ProgressFunc func(event entity.ProgressEvent)

func (f ProgressFunc) OnProgress(event entity.ProgressEvent) {
	f(event)
}

type NopProgress struct{}

func (NopProgress) OnProgress(entity.ProgressEvent) {}
