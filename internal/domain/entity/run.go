package entity

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

type ProgressKind string

const (
	ProgressTaskStarted   ProgressKind = "task_started"
	ProgressToolStarted   ProgressKind = "tool_started"
	ProgressToolFinished  ProgressKind = "tool_finished"
	ProgressTaskCompleted ProgressKind = "task_completed"
	ProgressTaskFailed    ProgressKind = "task_failed"
)

// ProgressEvent is emitted by the orchestrator as real work happens.
type ProgressEvent struct {
	Kind      ProgressKind `json:"kind"`
	TaskIndex int          `json:"taskIndex"`
	TaskCount int          `json:"taskCount"`
	TaskName  TaskName     `json:"taskName"`
	AgentRole string       `json:"agentRole"`
	ToolName  ToolName     `json:"toolName,omitempty"`
	Message   string       `json:"message,omitempty"`
	IsError   bool         `json:"isError,omitempty"`
	Time      time.Time    `json:"time"`
}

// PipelineRun is the state of one user submission. The result is either
// Article (completed) or Error (failed), never both.
type PipelineRun struct {
	ID         string          `json:"id"`
	Topic      string          `json:"topic"`
	Status     RunStatus       `json:"status"`
	Events     []ProgressEvent `json:"events"`
	Article    *Article        `json:"-"`
	Error      string          `json:"error,omitempty"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt *time.Time      `json:"finishedAt,omitempty"`
}

func (r *PipelineRun) Done() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}
