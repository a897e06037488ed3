package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"articlegen/internal/application/port/input"
	"articlegen/internal/application/port/output"
	"articlegen/internal/domain/entity"
)

var (
	_ output.ToolPort = (*DelegateWorkTool)(nil)
	_ output.ToolPort = (*AskQuestionTool)(nil)
)

// NewDelegationTools returns the coworker tools for an agent that may
// delegate. It matches executor.DelegationTools.
func NewDelegationTools(logger output.LoggerPort) func(output.AgentRegistry, input.AgentExecutor) []output.ToolPort {
	return func(coworkers output.AgentRegistry, exec input.AgentExecutor) []output.ToolPort {
		base := coworkerTool{coworkers: coworkers, exec: exec, logger: logger}
		return []output.ToolPort{
			&DelegateWorkTool{coworkerTool: base},
			&AskQuestionTool{coworkerTool: base},
		}
	}
}

type coworkerTool struct {
	coworkers output.AgentRegistry
	exec      input.AgentExecutor
	logger    output.LoggerPort
}

func (t coworkerTool) roles() []string {
	agents := t.coworkers.List()
	roles := make([]string, 0, len(agents))
	for _, a := range agents {
		roles = append(roles, a.Role)
	}
	return roles
}

func (t coworkerTool) parameters(field, description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"coworker": map[string]interface{}{
				"type":        "string",
				"enum":        t.roles(),
				"description": "Role of the coworker",
			},
			field: map[string]interface{}{
				"type":        "string",
				"description": description,
			},
			"context": map[string]interface{}{
				"type":        "string",
				"description": "Everything the coworker needs to know; they know nothing about your task",
			},
		},
		"required": []string{"coworker", field, "context"},
	}
}

func (t coworkerTool) run(ctx context.Context, name entity.ToolName, arguments, field string, frame func(string) string) (string, error) {
	var args map[string]string
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	role := strings.TrimSpace(args["coworker"])
	coworker, ok := t.coworkers.Get(role)
	if !ok {
		return "", fmt.Errorf("coworker %q not found, choose one of: %s", role, strings.Join(t.roles(), ", "))
	}
	if strings.TrimSpace(args[field]) == "" {
		return "", fmt.Errorf("%s is required", field)
	}

	t.logger.Info("Delegating to coworker", "tool", name, "coworker", role)

	coworker.AllowDelegation = false
	resp, err := t.exec.Execute(ctx, entity.AgentRequest{
		Agent: coworker,
		Task:  frame(args[field]) + "\n\nContext:\n" + args["context"],
	})
	if err != nil {
		return "", fmt.Errorf("coworker %q failed: %w", role, err)
	}
	return resp.Result, nil
}

type DelegateWorkTool struct {
	coworkerTool
}

func (t *DelegateWorkTool) Name() entity.ToolName { return entity.ToolDelegateWork }
func (t *DelegateWorkTool) Description() string {
	return fmt.Sprintf("Delegate a specific task to one of the coworkers: %s. Returns the coworker's complete result.", strings.Join(t.roles(), ", "))
}
func (t *DelegateWorkTool) Parameters() map[string]interface{} {
	return t.parameters("task", "The task to delegate")
}
func (t *DelegateWorkTool) Execute(ctx context.Context, arguments string) (string, error) {
	return t.run(ctx, t.Name(), arguments, "task", func(task string) string { return task })
}

type AskQuestionTool struct {
	coworkerTool
}

func (t *AskQuestionTool) Name() entity.ToolName { return entity.ToolAskQuestion }
func (t *AskQuestionTool) Description() string {
	return fmt.Sprintf("Ask a specific question to one of the coworkers: %s. Returns their answer.", strings.Join(t.roles(), ", "))
}
func (t *AskQuestionTool) Parameters() map[string]interface{} {
	return t.parameters("question", "The question to ask")
}
func (t *AskQuestionTool) Execute(ctx context.Context, arguments string) (string, error) {
	return t.run(ctx, t.Name(), arguments, "question", func(q string) string {
		return "Answer the following question: " + q
	})
}
