package prompts

import (
	"bytes"
	"sort"
	"text/template"

	"articlegen/internal/domain/entity"
)

type ToolInfo struct {
	Name        string
	Description string
}

type CoworkerInfo struct {
	Role string
	Goal string
}

type AgentPromptData struct {
	Role      string
	Goal      string
	Backstory string
	Tools     []ToolInfo
	Coworkers []CoworkerInfo
}

// GenerateAgentPrompt renders the system prompt for an agent persona.
func GenerateAgentPrompt(baseTemplate string, agent entity.Agent, tools []entity.ToolDefinition, coworkers []entity.Agent) (string, error) {
	toolInfos := make([]ToolInfo, 0, len(tools))
	for _, t := range tools {
		toolInfos = append(toolInfos, ToolInfo{
			Name:        string(t.Name),
			Description: t.Description,
		})
	}
	sort.Slice(toolInfos, func(i, j int) bool {
		return toolInfos[i].Name < toolInfos[j].Name
	})

	coworkerInfos := make([]CoworkerInfo, 0, len(coworkers))
	for _, c := range coworkers {
		coworkerInfos = append(coworkerInfos, CoworkerInfo{Role: c.Role, Goal: c.Goal})
	}

	data := AgentPromptData{
		Role:      agent.Role,
		Goal:      agent.Goal,
		Backstory: agent.Backstory,
		Tools:     toolInfos,
		Coworkers: coworkerInfos,
	}

	tmpl, err := template.New("agent").Option("missingkey=error").Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
