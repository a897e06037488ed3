package entity

type TaskName string

const (
	TaskResearch TaskName = "research"
	TaskWrite    TaskName = "write"
)

// Task is one unit of work bound to exactly one agent.
type Task struct {
	Name           TaskName
	Description    string
	ExpectedOutput string
	Agent          Agent
	Tools          []ToolName
	Sequential     bool
}

type TaskOutput struct {
	TaskName   TaskName
	AgentRole  string
	Raw        string
	Iterations int
}

type PipelineResult struct {
	Outputs []TaskOutput
}

// Final returns the output of the last task.
func (r *PipelineResult) Final() string {
	if r == nil || len(r.Outputs) == 0 {
		return ""
	}
	return r.Outputs[len(r.Outputs)-1].Raw
}
