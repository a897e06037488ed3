package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"articlegen/internal/application/port/input"
	"articlegen/internal/application/port/output"
	"articlegen/internal/application/service"
	"articlegen/internal/domain/entity"
	"articlegen/internal/infrastructure/prompts"
)

var _ input.AgentExecutor = (*UseCase)(nil)

const (
	DefaultMaxIterations = 15
	maxObservationLen    = 20000
)

// DelegationTools builds the coworker tools offered to an agent that may
// delegate. The executor passed in runs the coworkers.
type DelegationTools func(coworkers output.AgentRegistry, exec input.AgentExecutor) []output.ToolPort

type UseCase struct {
	llm                  output.LLMPort
	tools                output.ToolRegistry
	logger               output.LoggerPort
	delegation           DelegationTools
	systemPromptTemplate string
	finalAnswerPrompt    string
	maxIterations        int
}

type Option func(*UseCase)

func WithDelegation(factory DelegationTools) Option {
	return func(uc *UseCase) { uc.delegation = factory }
}

func WithMaxIterations(n int) Option {
	return func(uc *UseCase) {
		if n > 0 {
			uc.maxIterations = n
		}
	}
}

func WithSystemPrompt(tmpl string) Option {
	return func(uc *UseCase) {
		if tmpl != "" {
			uc.systemPromptTemplate = tmpl
		}
	}
}

func New(
	llm output.LLMPort,
	tools output.ToolRegistry,
	logger output.LoggerPort,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		llm:                  llm,
		tools:                tools,
		logger:               logger,
		systemPromptTemplate: prompts.AgentPrompt,
		finalAnswerPrompt:    prompts.FinalAnswerPrompt,
		maxIterations:        DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute runs one task for one agent: a tool-calling loop that ends when the
// model answers without tool calls. Provider failures abort the task; other
// tool failures are reported back to the model as observations.
func (uc *UseCase) Execute(ctx context.Context, req entity.AgentRequest) (*entity.AgentResponse, error) {
	log := uc.logger.WithField("agent", req.Agent.Role)

	set := uc.resolveTools(req)
	toolDefs := make([]entity.ToolDefinition, 0, len(set.order))
	for _, name := range set.order {
		t := set.byName[name]
		toolDefs = append(toolDefs, entity.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}

	systemPrompt, err := prompts.GenerateAgentPrompt(uc.systemPromptTemplate, req.Agent, toolDefs, set.coworkers)
	if err != nil {
		return nil, fmt.Errorf("failed to generate system prompt: %w", err)
	}

	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: systemPrompt},
		{Role: entity.RoleUser, Content: BuildTaskMessage(req)},
	}

	maxIterations := uc.maxIterations
	if req.Agent.MaxIterations > 0 {
		maxIterations = req.Agent.MaxIterations
	}

	for iter := 1; iter <= maxIterations; iter++ {
		log.Debug("Agent iteration", "iteration", iter)

		resp, err := uc.llm.Chat(ctx, output.ChatRequest{
			Messages: messages,
			Tools:    toolDefs,
		})
		if err != nil {
			return nil, fmt.Errorf("llm request failed: %w", err)
		}

		messages = append(messages, resp.Message)

		if len(resp.Message.ToolCalls) == 0 {
			log.Info("Agent finished", "iterations", iter)
			return finalize(req.Agent, resp.Message.Content, iter)
		}

		for _, tc := range resp.Message.ToolCalls {
			observation, err := uc.executeTool(ctx, log, set, tc, req.OnTool)
			if err != nil {
				return nil, err
			}

			messages = append(messages, entity.Message{
				Role:       entity.RoleTool,
				ToolCallID: tc.ID,
				Name:       tc.Name,
				Content:    observation,
			})
		}
	}

	log.Info("Max iterations reached, requesting final answer", "maxIterations", maxIterations)
	messages = append(messages, entity.Message{
		Role:    entity.RoleUser,
		Content: uc.finalAnswerPrompt,
	})

	summaryResp, err := uc.llm.Chat(ctx, output.ChatRequest{
		Messages: messages,
		Tools:    nil,
	})
	if err != nil {
		return nil, fmt.Errorf("final answer request failed: %w", err)
	}

	return finalize(req.Agent, summaryResp.Message.Content, maxIterations+1)
}

func finalize(agent entity.Agent, content string, iterations int) (*entity.AgentResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("agent %q returned an empty answer", agent.Role)
	}
	return &entity.AgentResponse{Result: content, Iterations: iterations}, nil
}

type toolset struct {
	byName    map[entity.ToolName]output.ToolPort
	order     []entity.ToolName
	coworkers []entity.Agent
}

func (s *toolset) add(t output.ToolPort) {
	if _, ok := s.byName[t.Name()]; ok {
		return
	}
	s.byName[t.Name()] = t
	s.order = append(s.order, t.Name())
}

func (uc *UseCase) resolveTools(req entity.AgentRequest) *toolset {
	set := &toolset{byName: make(map[entity.ToolName]output.ToolPort)}

	names := append(append([]entity.ToolName(nil), req.Tools...), req.Agent.Tools...)
	for _, name := range names {
		if t, ok := uc.tools.Get(name); ok {
			set.add(t)
		} else {
			uc.logger.Warn("Tool not registered", "name", name, "agent", req.Agent.Role)
		}
	}

	if !req.Agent.AllowDelegation || uc.delegation == nil {
		return set
	}

	for _, c := range req.Coworkers {
		if c.Role != req.Agent.Role {
			set.coworkers = append(set.coworkers, c)
		}
	}
	if len(set.coworkers) == 0 {
		return set
	}

	registry := service.NewAgentRegistry()
	for _, c := range set.coworkers {
		registry.Register(c)
	}
	for _, t := range uc.delegation(registry, uc) {
		set.add(t)
	}
	return set
}

func (uc *UseCase) executeTool(ctx context.Context, log output.LoggerPort, set *toolset, tc entity.ToolCall, onTool func(entity.ToolEvent)) (string, error) {
	name := entity.ToolName(tc.Name)
	notify(onTool, entity.ToolEvent{Tool: name, Arguments: tc.Arguments})

	t, ok := set.byName[name]
	if !ok {
		log.Warn("Unknown tool called", "name", tc.Name)
		observation := fmt.Sprintf("Error: unknown tool '%s'", tc.Name)
		notify(onTool, entity.ToolEvent{Tool: name, Arguments: tc.Arguments, Result: observation, IsError: true, Done: true})
		return observation, nil
	}

	log.Info("Executing tool", "name", tc.Name, "args", tc.Arguments)

	result, err := t.Execute(ctx, tc.Arguments)
	if err != nil {
		log.Error("Tool execution failed", "name", tc.Name, "error", err)
		notify(onTool, entity.ToolEvent{Tool: name, Arguments: tc.Arguments, Result: err.Error(), IsError: true, Done: true})
		if errors.Is(err, entity.ErrProvider) || errors.Is(err, entity.ErrPipeline) || ctx.Err() != nil {
			return "", fmt.Errorf("tool %s failed: %w", tc.Name, err)
		}
		return "Error: " + err.Error(), nil
	}

	result = truncateObservation(result, maxObservationLen)

	log.Debug("Tool completed", "name", tc.Name, "resultLen", len(result))
	notify(onTool, entity.ToolEvent{Tool: name, Arguments: tc.Arguments, Result: result, Done: true})
	return result, nil
}

// truncateObservation cuts s to at most limit bytes without splitting a rune.
func truncateObservation(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + "\n... (truncated)"
}

func notify(onTool func(entity.ToolEvent), ev entity.ToolEvent) {
	if onTool != nil {
		onTool(ev)
	}
}

// BuildTaskMessage renders the user turn for a task: the description, the
// expected output and the verbatim outputs of the tasks it depends on.
func BuildTaskMessage(req entity.AgentRequest) string {
	var sb strings.Builder
	sb.WriteString(req.Task)

	if req.ExpectedOutput != "" {
		sb.WriteString("\n\nThis is the expected criteria for your final answer: ")
		sb.WriteString(req.ExpectedOutput)
		sb.WriteString("\nYou MUST return the actual complete content as the final answer, not a summary.")
	}

	if len(req.Context) > 0 {
		sb.WriteString("\n\nThis is the context you're working with:")
		for _, out := range req.Context {
			fmt.Fprintf(&sb, "\n\n## %s (%s)\n%s", out.AgentRole, out.TaskName, out.Raw)
		}
	}

	return sb.String()
}
