package orchestrator

import (
	"context"
	"fmt"
	"time"

	"articlegen/internal/application/port/input"
	"articlegen/internal/application/port/output"
	"articlegen/internal/domain/entity"
)

var _ input.PipelineRunner = (*UseCase)(nil)

// UseCase runs tasks strictly one after another. Every task receives the
// outputs of all tasks before it; the first failure aborts the rest.
type UseCase struct {
	executor input.AgentExecutor
	logger   output.LoggerPort
	now      func() time.Time
}

func New(executor input.AgentExecutor, logger output.LoggerPort) *UseCase {
	return &UseCase{
		executor: executor,
		logger:   logger,
		now:      time.Now,
	}
}

func (uc *UseCase) Run(ctx context.Context, tasks []entity.Task, progress output.ProgressPort) (*entity.PipelineResult, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: pipeline has no tasks", entity.ErrInvalidInput)
	}
	if progress == nil {
		progress = output.NopProgress{}
	}

	coworkers := crewOf(tasks)
	result := &entity.PipelineResult{Outputs: make([]entity.TaskOutput, 0, len(tasks))}

	for i, task := range tasks {
		emit := func(kind entity.ProgressKind, tool entity.ToolName, msg string, isErr bool) {
			progress.OnProgress(entity.ProgressEvent{
				Kind:      kind,
				TaskIndex: i,
				TaskCount: len(tasks),
				TaskName:  task.Name,
				AgentRole: task.Agent.Role,
				ToolName:  tool,
				Message:   msg,
				IsError:   isErr,
				Time:      uc.now(),
			})
		}

		if err := ctx.Err(); err != nil {
			emit(entity.ProgressTaskFailed, "", err.Error(), true)
			return nil, &entity.PipelineError{TaskIndex: i, TaskName: task.Name, Err: err}
		}

		uc.logger.Info("Task started", "task", task.Name, "agent", task.Agent.Role, "index", i+1, "total", len(tasks))
		emit(entity.ProgressTaskStarted, "", "", false)

		resp, err := uc.executor.Execute(ctx, entity.AgentRequest{
			Agent:          task.Agent,
			Task:           task.Description,
			ExpectedOutput: task.ExpectedOutput,
			Context:        append([]entity.TaskOutput(nil), result.Outputs...),
			Tools:          task.Tools,
			Coworkers:      coworkers,
			OnTool: func(ev entity.ToolEvent) {
				if ev.Done {
					msg := ""
					if ev.IsError {
						msg = ev.Result
					}
					emit(entity.ProgressToolFinished, ev.Tool, msg, ev.IsError)
					return
				}
				emit(entity.ProgressToolStarted, ev.Tool, ev.Arguments, false)
			},
		})
		if err != nil {
			uc.logger.Error("Task failed", "task", task.Name, "error", err)
			emit(entity.ProgressTaskFailed, "", err.Error(), true)
			return nil, &entity.PipelineError{TaskIndex: i, TaskName: task.Name, Err: err}
		}

		result.Outputs = append(result.Outputs, entity.TaskOutput{
			TaskName:   task.Name,
			AgentRole:  task.Agent.Role,
			Raw:        resp.Result,
			Iterations: resp.Iterations,
		})

		uc.logger.Info("Task completed", "task", task.Name, "iterations", resp.Iterations, "outputLen", len(resp.Result))
		emit(entity.ProgressTaskCompleted, "", fmt.Sprintf("%d iterations", resp.Iterations), false)
	}

	return result, nil
}

// crewOf returns the distinct agents bound to tasks, by role.
func crewOf(tasks []entity.Task) []entity.Agent {
	seen := make(map[string]bool, len(tasks))
	agents := make([]entity.Agent, 0, len(tasks))
	for _, t := range tasks {
		if seen[t.Agent.Role] {
			continue
		}
		seen[t.Agent.Role] = true
		agents = append(agents, t.Agent)
	}
	return agents
}
