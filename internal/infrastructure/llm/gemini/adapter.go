package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"articlegen/internal/application/port/output"
	"articlegen/internal/domain/entity"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

var _ output.LLMPort = (*Adapter)(nil)

const (
	DefaultModel = "gemini-2.5-pro"
	providerName = "gemini"
)

type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	Logger      output.LoggerPort
}

func DefaultConfig(apiKey, model string) Config {
	if model == "" {
		model = DefaultModel
	}
	return Config{APIKey: apiKey, Model: model, Temperature: 0.3}
}

// Adapter talks to the Gemini API through the genai SDK.
type Adapter struct {
	models      generator
	model       string
	temperature float32
	logger      output.LoggerPort
}

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func New(ctx context.Context, cfg Config) (*Adapter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Adapter{
		models:      client.Models,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}, nil
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	system, contents, err := convertMessages(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("convert messages: %w", err)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       genai.Ptr(a.temperature),
	}
	if decls := convertTools(req.Tools); len(decls) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	resp, err := a.models.GenerateContent(ctx, a.model, contents, config)
	if err != nil {
		return nil, &entity.ProviderError{Provider: providerName, Op: "generate content", Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &entity.ProviderError{Provider: providerName, Op: "generate content", Err: errors.New("no candidates in response")}
	}

	msg, err := convertResponse(resp.Candidates[0].Content)
	if err != nil {
		return nil, &entity.ProviderError{Provider: providerName, Op: "decode response", Err: err}
	}

	if a.logger != nil && resp.UsageMetadata != nil {
		a.logger.Debug("Gemini generate content",
			"model", a.model,
			"promptTokens", resp.UsageMetadata.PromptTokenCount,
			"candidateTokens", resp.UsageMetadata.CandidatesTokenCount,
			"toolCalls", len(msg.ToolCalls))
	}

	return &output.ChatResponse{Message: msg}, nil
}

// convertMessages splits out the system prompt and maps the conversation to
// Gemini contents. Consecutive tool results share one user turn.
func convertMessages(messages []entity.Message) (*genai.Content, []*genai.Content, error) {
	var system *genai.Content
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case entity.RoleSystem:
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, &genai.Part{Text: msg.Content})

		case entity.RoleAssistant:
			content := &genai.Content{Role: string(genai.RoleModel)}
			if msg.Content != "" {
				content.Parts = append(content.Parts, &genai.Part{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				args := map[string]any{}
				if strings.TrimSpace(tc.Arguments) != "" {
					if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
						return nil, nil, fmt.Errorf("tool call %s arguments: %w", tc.ID, err)
					}
				}
				content.Parts = append(content.Parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   tc.ID,
					Name: tc.Name,
					Args: args,
				}})
			}
			contents = append(contents, content)

		case entity.RoleTool:
			part := &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       msg.ToolCallID,
				Name:     msg.Name,
				Response: map[string]any{"output": msg.Content},
			}}
			if n := len(contents); n > 0 && isToolTurn(contents[n-1]) {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
				continue
			}
			contents = append(contents, &genai.Content{Role: string(genai.RoleUser), Parts: []*genai.Part{part}})

		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	return system, contents, nil
}

func isToolTurn(c *genai.Content) bool {
	if c.Role != string(genai.RoleUser) || len(c.Parts) == 0 {
		return false
	}
	for _, p := range c.Parts {
		if p.FunctionResponse == nil {
			return false
		}
	}
	return true
}

func convertResponse(content *genai.Content) (entity.Message, error) {
	msg := entity.Message{Role: entity.RoleAssistant}
	var text strings.Builder

	for _, part := range content.Parts {
		if part == nil {
			continue
		}
		if part.Thought {
			continue
		}
		if part.Text != "" {
			text.WriteString(part.Text)
		}
		if fc := part.FunctionCall; fc != nil {
			args, err := json.Marshal(fc.Args)
			if err != nil {
				return entity.Message{}, fmt.Errorf("function call %s arguments: %w", fc.Name, err)
			}
			id := fc.ID
			if id == "" {
				id = "call_" + uuid.NewString()
			}
			msg.ToolCalls = append(msg.ToolCalls, entity.ToolCall{ID: id, Name: fc.Name, Arguments: string(args)})
		}
	}

	msg.Content = text.String()
	return msg, nil
}

func convertTools(tools []entity.ToolDefinition) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        string(t.Name),
			Description: t.Description,
			Parameters:  convertSchema(t.Parameters),
		})
	}
	return decls
}

// convertSchema maps a JSON-schema fragment onto genai.Schema. Keys Gemini
// does not understand are dropped.
func convertSchema(raw map[string]interface{}) *genai.Schema {
	if raw == nil {
		return nil
	}
	s := &genai.Schema{}

	if typ, ok := raw["type"].(string); ok {
		s.Type = genai.Type(strings.ToUpper(typ))
	}
	if desc, ok := raw["description"].(string); ok {
		s.Description = desc
	}
	s.Enum = stringList(raw["enum"])
	s.Required = stringList(raw["required"])

	if props, ok := raw["properties"].(map[string]interface{}); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		names := make([]string, 0, len(props))
		for name, p := range props {
			if pm, ok := p.(map[string]interface{}); ok {
				s.Properties[name] = convertSchema(pm)
				names = append(names, name)
			}
		}
		sort.Strings(names)
		s.PropertyOrdering = names
	}
	if items, ok := raw["items"].(map[string]interface{}); ok {
		s.Items = convertSchema(items)
	}
	return s
}

func stringList(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...)
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
