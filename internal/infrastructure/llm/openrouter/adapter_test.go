package openrouter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"articlegen/internal/application/port/output"
	"articlegen/internal/domain/entity"
	"articlegen/internal/infrastructure/logger"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertResponseMessage_WithContent(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		Role:    "assistant",
		Content: "Hello, world!",
	}

	result := convertResponseMessage(msg)

	assert.Equal(t, entity.RoleAssistant, result.Role)
	assert.Equal(t, "Hello, world!", result.Content)
	assert.Empty(t, result.ToolCalls)
}

func TestConvertResponseMessage_WithToolCalls(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		Role: "assistant",
		ToolCalls: []openai.ToolCall{
			{
				ID:   "call_123",
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      "web_search",
					Arguments: `{"query":"robotics"}`,
				},
			},
		},
	}

	result := convertResponseMessage(msg)

	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "call_123", result.ToolCalls[0].ID)
	assert.Equal(t, "web_search", result.ToolCalls[0].Name)
	assert.Equal(t, `{"query":"robotics"}`, result.ToolCalls[0].Arguments)
}

func TestConvertMessages_ToolRoundTrip(t *testing.T) {
	messages := []entity.Message{
		{Role: entity.RoleUser, Content: "Hello"},
		{Role: entity.RoleAssistant, ToolCalls: []entity.ToolCall{{ID: "c1", Name: "web_search", Arguments: "{}"}}},
		{Role: entity.RoleTool, ToolCallID: "c1", Name: "web_search", Content: "1. result"},
	}

	result := convertMessages(messages)

	require.Len(t, result, 3)
	assert.Equal(t, "user", result[0].Role)
	require.Len(t, result[1].ToolCalls, 1)
	assert.Equal(t, openai.ToolTypeFunction, result[1].ToolCalls[0].Type)
	assert.Equal(t, "c1", result[2].ToolCallID)
	assert.Equal(t, "web_search", result[2].Name)
}

func TestConvertTools(t *testing.T) {
	tools := convertTools([]entity.ToolDefinition{{
		Name:        entity.ToolWebSearch,
		Description: "Search the web",
		Parameters:  map[string]interface{}{"type": "object"},
	}})

	require.Len(t, tools, 1)
	assert.Equal(t, "web_search", tools[0].Function.Name)
	assert.Equal(t, "Search the web", tools[0].Function.Description)
}

func TestChat_SendsTemperatureAndModel(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"done"}}]}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig("key", "test/model")
	cfg.BaseURL = srv.URL
	cfg.Logger = logger.NewNop()
	adapter := NewOpenRouterAdapter(cfg)

	resp, err := adapter.Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{{Role: entity.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "done", resp.Message.Content)
	assert.Equal(t, "test/model", got.Model)
	assert.InDelta(t, 0.3, got.Temperature, 0.0001)
	assert.Empty(t, got.Tools)
}

func TestChat_WrapsProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig("key", "")
	cfg.BaseURL = srv.URL
	adapter := NewOpenRouterAdapter(cfg)

	_, err := adapter.Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{{Role: entity.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrProvider)
	assert.Contains(t, err.Error(), "429")
}
