// Package crew holds the agent personas and task templates of the article
// pipeline and turns them into per-run tasks for a topic.
package crew

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"articlegen/internal/domain/entity"
	"articlegen/internal/infrastructure/prompts"

	"gopkg.in/yaml.v3"
)

//go:embed crew.yaml
var defaultCrew []byte

const topicParam = "topic"

var knownTools = map[entity.ToolName]bool{
	entity.ToolWebSearch: true,
	entity.ToolReadPage:  true,
}

type agentSpec struct {
	Role            string   `yaml:"role"`
	Goal            string   `yaml:"goal"`
	Backstory       string   `yaml:"backstory"`
	Tools           []string `yaml:"tools"`
	AllowDelegation bool     `yaml:"allow_delegation"`
	MaxIterations   int      `yaml:"max_iterations"`
}

type taskSpec struct {
	Name           string   `yaml:"name"`
	Agent          string   `yaml:"agent"`
	Description    string   `yaml:"description"`
	ExpectedOutput string   `yaml:"expected_output"`
	Tools          []string `yaml:"tools"`
	AsyncExecution bool     `yaml:"async_execution"`
}

type document struct {
	Agents map[string]agentSpec `yaml:"agents"`
	Tasks  []taskSpec           `yaml:"tasks"`
}

type taskTemplate struct {
	name           entity.TaskName
	agentKey       string
	description    string
	expectedOutput string
	tools          []entity.ToolName
}

// Crew is immutable after construction and safe for concurrent use.
type Crew struct {
	agents map[string]entity.Agent
	order  []string
	tasks  []taskTemplate
}

func Default() (*Crew, error) {
	return Parse(defaultCrew)
}

func LoadFile(path string) (*Crew, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read crew file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Crew, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse crew: %w", err)
	}
	if len(doc.Tasks) == 0 {
		return nil, fmt.Errorf("crew defines no tasks")
	}

	c := &Crew{agents: make(map[string]entity.Agent, len(doc.Agents))}

	for _, t := range doc.Tasks {
		spec, ok := doc.Agents[t.Agent]
		if !ok {
			return nil, fmt.Errorf("task %q: unknown agent %q", t.Name, t.Agent)
		}
		if _, done := c.agents[t.Agent]; !done {
			agent, err := buildAgent(t.Agent, spec)
			if err != nil {
				return nil, err
			}
			c.agents[t.Agent] = agent
			c.order = append(c.order, t.Agent)
		}

		if t.Name == "" || strings.TrimSpace(t.Description) == "" {
			return nil, fmt.Errorf("task %q: name and description are required", t.Name)
		}
		if t.AsyncExecution {
			return nil, fmt.Errorf("task %q: asynchronous execution is not supported", t.Name)
		}
		tools, err := toolNames(t.Tools)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", t.Name, err)
		}
		c.tasks = append(c.tasks, taskTemplate{
			name:           entity.TaskName(t.Name),
			agentKey:       t.Agent,
			description:    strings.TrimSpace(t.Description),
			expectedOutput: strings.TrimSpace(t.ExpectedOutput),
			tools:          tools,
		})
	}

	return c, nil
}

func buildAgent(key string, spec agentSpec) (entity.Agent, error) {
	if spec.Role == "" {
		return entity.Agent{}, fmt.Errorf("agent %q: role is required", key)
	}
	tools, err := toolNames(spec.Tools)
	if err != nil {
		return entity.Agent{}, fmt.Errorf("agent %q: %w", key, err)
	}
	return entity.Agent{
		Type:            entity.AgentType(key),
		Role:            spec.Role,
		Goal:            strings.TrimSpace(spec.Goal),
		Backstory:       strings.TrimSpace(spec.Backstory),
		Tools:           tools,
		AllowDelegation: spec.AllowDelegation,
		MaxIterations:   spec.MaxIterations,
	}, nil
}

func toolNames(names []string) ([]entity.ToolName, error) {
	result := make([]entity.ToolName, 0, len(names))
	for _, n := range names {
		name := entity.ToolName(n)
		if !knownTools[name] {
			return nil, fmt.Errorf("unknown tool %q", n)
		}
		result = append(result, name)
	}
	return result, nil
}

// Agents returns the agent definitions with unrendered goals, in the order
// tasks first reference them.
func (c *Crew) Agents() []entity.Agent {
	result := make([]entity.Agent, 0, len(c.order))
	for _, key := range c.order {
		result = append(result, c.agents[key])
	}
	return result
}

// BuildResearchTask renders the research task for topic.
func (c *Crew) BuildResearchTask(topic string) (entity.Task, error) {
	return c.BuildTask(entity.TaskResearch, topic)
}

// BuildWriteTask renders the write task for topic.
func (c *Crew) BuildWriteTask(topic string) (entity.Task, error) {
	return c.BuildTask(entity.TaskWrite, topic)
}

func (c *Crew) BuildTask(name entity.TaskName, topic string) (entity.Task, error) {
	params, err := topicParams(topic)
	if err != nil {
		return entity.Task{}, err
	}
	for _, tmpl := range c.tasks {
		if tmpl.name == name {
			return c.render(tmpl, params)
		}
	}
	return entity.Task{}, fmt.Errorf("crew has no task %q", name)
}

// BuildTasks renders every task of the crew for topic, in pipeline order.
func (c *Crew) BuildTasks(topic string) ([]entity.Task, error) {
	params, err := topicParams(topic)
	if err != nil {
		return nil, err
	}
	tasks := make([]entity.Task, 0, len(c.tasks))
	for _, tmpl := range c.tasks {
		task, err := c.render(tmpl, params)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (c *Crew) render(tmpl taskTemplate, params map[string]string) (entity.Task, error) {
	description, err := prompts.Render(tmpl.description, params)
	if err != nil {
		return entity.Task{}, fmt.Errorf("task %q description: %w", tmpl.name, err)
	}
	expected, err := prompts.Render(tmpl.expectedOutput, params)
	if err != nil {
		return entity.Task{}, fmt.Errorf("task %q expected output: %w", tmpl.name, err)
	}
	agent, err := renderAgent(c.agents[tmpl.agentKey], params)
	if err != nil {
		return entity.Task{}, err
	}

	return entity.Task{
		Name:           tmpl.name,
		Description:    description,
		ExpectedOutput: expected,
		Agent:          agent,
		Tools:          append([]entity.ToolName(nil), tmpl.tools...),
		Sequential:     true,
	}, nil
}

func renderAgent(agent entity.Agent, params map[string]string) (entity.Agent, error) {
	goal, err := prompts.Render(agent.Goal, params)
	if err != nil {
		return entity.Agent{}, fmt.Errorf("agent %q goal: %w", agent.Role, err)
	}
	return agent.WithGoal(goal), nil
}

func topicParams(topic string) (map[string]string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic must not be empty", entity.ErrInvalidInput)
	}
	return map[string]string{topicParam: topic}, nil
}
