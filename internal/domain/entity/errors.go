package entity

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrProvider     = errors.New("provider error")
	ErrStartup      = errors.New("startup error")
	ErrPipeline     = errors.New("pipeline error")
	ErrTemplate     = errors.New("template error")
	ErrRunInFlight  = errors.New("a run is already in progress")
	ErrRunNotFound  = errors.New("run not found")
)

// ProviderError is a failure of a remote LLM or search backend.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// PipelineError reports the task that aborted a pipeline run.
type PipelineError struct {
	TaskIndex int
	TaskName  TaskName
	Err       error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("task %d (%s) failed: %v", e.TaskIndex+1, e.TaskName, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

func (e *PipelineError) Is(target error) bool { return target == ErrPipeline }
