package serpapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"articlegen/internal/application/port/output"
	"articlegen/internal/domain/entity"

	"github.com/tmc/langchaingo/tools/serpapi"
)

var _ output.SearchPort = (*Adapter)(nil)

const (
	providerName = "serpapi"
	searchURL    = "https://www.google.com/search?q="
)

type caller interface {
	Call(ctx context.Context, input string) (string, error)
}

// Adapter runs searches through the langchaingo SerpAPI tool, which returns
// a single condensed answer rather than a result list.
type Adapter struct {
	tool   caller
	logger output.LoggerPort
}

func New(apiKey string, logger output.LoggerPort) (*Adapter, error) {
	tool, err := serpapi.New(serpapi.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create serpapi tool: %w", err)
	}
	return &Adapter{tool: tool, logger: logger}, nil
}

func (a *Adapter) Search(ctx context.Context, query string) ([]entity.SearchResult, error) {
	answer, err := a.tool.Call(ctx, query)
	if err != nil {
		return nil, &entity.ProviderError{Provider: providerName, Op: "search", Err: err}
	}

	answer = strings.TrimSpace(answer)
	if a.logger != nil {
		a.logger.Debug("SerpAPI search", "query", query, "answerLen", len(answer))
	}
	if answer == "" {
		return nil, nil
	}

	return []entity.SearchResult{{
		Title:   "Google Search: " + query,
		Snippet: answer,
		URL:     searchURL + url.QueryEscape(query),
	}}, nil
}
