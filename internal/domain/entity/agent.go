package entity

type AgentType string

const (
	AgentTypeResearcher AgentType = "researcher"
	AgentTypeWriter     AgentType = "writer"
)

// Agent is a persona that executes tasks. Goal may hold {topic}-style
// placeholders until the crew renders it for a run.
type Agent struct {
	Type            AgentType
	Role            string
	Goal            string
	Backstory       string
	Tools           []ToolName
	AllowDelegation bool
	MaxIterations   int
}

// WithGoal returns a copy of the agent with its goal replaced.
func (a Agent) WithGoal(goal string) Agent {
	a.Goal = goal
	a.Tools = append([]ToolName(nil), a.Tools...)
	return a
}

type AgentRequest struct {
	Agent          Agent
	Task           string
	ExpectedOutput string
	Context        []TaskOutput
	Tools          []ToolName
	Coworkers      []Agent
	OnTool         func(ToolEvent)
}

type AgentResponse struct {
	Result     string
	Iterations int
}

// ToolEvent reports a tool call made by an agent. Done is false when the
// call starts and true once Result is known.
type ToolEvent struct {
	Tool      ToolName
	Arguments string
	Result    string
	IsError   bool
	Done      bool
}
