package service

import (
	"fmt"
	"sync"
	"time"

	"articlegen/internal/domain/entity"

	"github.com/google/uuid"
)

const DefaultRunHistory = 20

// RunRegistry tracks pipeline runs and admits at most one active run.
type RunRegistry struct {
	mu      sync.Mutex
	runs    map[string]*entity.PipelineRun
	order   []string
	active  string
	history int
	now     func() time.Time
}

func NewRunRegistry(history int) *RunRegistry {
	if history <= 0 {
		history = DefaultRunHistory
	}
	return &RunRegistry{
		runs:    make(map[string]*entity.PipelineRun),
		history: history,
		now:     time.Now,
	}
}

// Start registers a running run for topic. It fails with
// entity.ErrRunInFlight while another run has not finished.
func (r *RunRegistry) Start(topic string) (*entity.PipelineRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != "" {
		return nil, fmt.Errorf("%w: run %s", entity.ErrRunInFlight, r.active)
	}

	run := &entity.PipelineRun{
		ID:        uuid.NewString(),
		Topic:     topic,
		Status:    entity.RunStatusRunning,
		StartedAt: r.now(),
	}
	r.runs[run.ID] = run
	r.order = append(r.order, run.ID)
	r.active = run.ID
	r.evict()

	return snapshot(run), nil
}

func (r *RunRegistry) AppendEvent(id string, ev entity.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run, ok := r.runs[id]; ok && !run.Done() {
		run.Events = append(run.Events, ev)
	}
}

func (r *RunRegistry) Complete(id string, article *entity.Article) {
	r.finish(id, func(run *entity.PipelineRun) {
		run.Status = entity.RunStatusCompleted
		run.Article = article
	})
}

func (r *RunRegistry) Fail(id string, err error) {
	r.finish(id, func(run *entity.PipelineRun) {
		run.Status = entity.RunStatusFailed
		run.Error = err.Error()
	})
}

func (r *RunRegistry) finish(id string, apply func(*entity.PipelineRun)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[id]
	if !ok || run.Done() {
		return
	}
	apply(run)
	finished := r.now()
	run.FinishedAt = &finished
	if r.active == id {
		r.active = ""
	}
}

// Get returns a copy of the run so callers can read it without locking.
func (r *RunRegistry) Get(id string) (*entity.PipelineRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrRunNotFound, id)
	}
	return snapshot(run), nil
}

// Active returns the id of the run in flight, if any.
func (r *RunRegistry) Active() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active, r.active != ""
}

// evict drops the oldest finished runs beyond the history limit.
func (r *RunRegistry) evict() {
	for len(r.order) > r.history {
		victim := -1
		for i, id := range r.order {
			if id != r.active {
				victim = i
				break
			}
		}
		if victim < 0 {
			return
		}
		delete(r.runs, r.order[victim])
		r.order = append(r.order[:victim], r.order[victim+1:]...)
	}
}

func snapshot(run *entity.PipelineRun) *entity.PipelineRun {
	cp := *run
	cp.Events = append([]entity.ProgressEvent(nil), run.Events...)
	return &cp
}
