package prompts

import (
	"strings"
	"testing"

	"articlegen/internal/domain/entity"
)

func TestGenerateAgentPrompt(t *testing.T) {
	agent := entity.Agent{
		Role:      "Senior Researcher",
		Goal:      "Uncover groundbreaking technologies in robotics",
		Backstory: "Driven by curiosity.",
	}
	tools := []entity.ToolDefinition{
		{Name: entity.ToolWebSearch, Description: "Search the web"},
		{Name: entity.ToolDelegateWork, Description: "Delegate work"},
	}
	coworkers := []entity.Agent{{Role: "Writer", Goal: "Narrate compelling tech stories"}}

	result, err := GenerateAgentPrompt(AgentPrompt, agent, tools, coworkers)
	if err != nil {
		t.Fatalf("GenerateAgentPrompt failed: %v", err)
	}

	if !strings.Contains(result, "You are Senior Researcher.") {
		t.Error("Result should contain the role")
	}
	if !strings.Contains(result, "Your personal goal is: Uncover groundbreaking technologies in robotics") {
		t.Error("Result should contain the goal")
	}
	if strings.Index(result, "- delegate_work: Delegate work") > strings.Index(result, "- web_search: Search the web") {
		t.Error("Tools should be sorted by name")
	}
	if !strings.Contains(result, "- Writer: Narrate compelling tech stories") {
		t.Error("Result should list coworkers")
	}
}

func TestGenerateAgentPromptWithoutToolsOrCoworkers(t *testing.T) {
	result, err := GenerateAgentPrompt(AgentPrompt, entity.Agent{Role: "Writer"}, nil, nil)
	if err != nil {
		t.Fatalf("GenerateAgentPrompt failed: %v", err)
	}

	if strings.Contains(result, "## TOOLS") || strings.Contains(result, "## COWORKERS") {
		t.Errorf("Empty sections should be omitted, got:\n%s", result)
	}
}

func TestGenerateAgentPromptInvalidTemplate(t *testing.T) {
	_, err := GenerateAgentPrompt(`Test {{.InvalidField}}`, entity.Agent{}, nil, nil)
	if err == nil {
		t.Error("Expected error for invalid template, got nil")
	}
}
