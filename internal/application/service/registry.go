package service

import (
	"sort"
	"sync"

	"articlegen/internal/application/port/output"
	"articlegen/internal/domain/entity"
)

var _ output.ToolRegistry = (*ToolRegistryImpl)(nil)

type ToolRegistryImpl struct {
	mu    sync.RWMutex
	tools map[entity.ToolName]output.ToolPort
}

func NewToolRegistry() *ToolRegistryImpl {
	return &ToolRegistryImpl{
		tools: make(map[entity.ToolName]output.ToolPort),
	}
}

func (r *ToolRegistryImpl) Register(tool output.ToolPort) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

func (r *ToolRegistryImpl) Get(name entity.ToolName) (output.ToolPort, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

func (r *ToolRegistryImpl) All() []output.ToolPort {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]output.ToolPort, 0, len(r.tools))
	for _, tool := range r.tools {
		result = append(result, tool)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

// Definitions returns definitions for the named tools, or for every
// registered tool when no names are given. Unknown names are skipped.
func (r *ToolRegistryImpl) Definitions(names ...entity.ToolName) []entity.ToolDefinition {
	if len(names) == 0 {
		all := r.All()
		result := make([]entity.ToolDefinition, 0, len(all))
		for _, tool := range all {
			result = append(result, definitionOf(tool))
		}
		return result
	}

	result := make([]entity.ToolDefinition, 0, len(names))
	seen := make(map[entity.ToolName]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if tool, ok := r.Get(name); ok {
			result = append(result, definitionOf(tool))
		}
	}
	return result
}

func definitionOf(tool output.ToolPort) entity.ToolDefinition {
	return entity.ToolDefinition{
		Name:        tool.Name(),
		Description: tool.Description(),
		Parameters:  tool.Parameters(),
	}
}

var _ output.AgentRegistry = (*AgentRegistryImpl)(nil)

// AgentRegistryImpl keeps agents by role, in registration order.
type AgentRegistryImpl struct {
	mu     sync.RWMutex
	agents []entity.Agent
}

func NewAgentRegistry() *AgentRegistryImpl {
	return &AgentRegistryImpl{}
}

func (r *AgentRegistryImpl) Register(agent entity.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.agents {
		if existing.Role == agent.Role {
			r.agents[i] = agent
			return
		}
	}
	r.agents = append(r.agents, agent)
}

func (r *AgentRegistryImpl) Get(role string) (entity.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, agent := range r.agents {
		if agent.Role == role {
			return agent, true
		}
	}
	return entity.Agent{}, false
}

func (r *AgentRegistryImpl) List() []entity.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entity.Agent(nil), r.agents...)
}
