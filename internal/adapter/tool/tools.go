package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"articlegen/internal/application/port/output"
	"articlegen/internal/domain/entity"
)

const DefaultSearchResults = 5

var (
	_ output.ToolPort = (*SearchTool)(nil)
	_ output.ToolPort = (*ReadPageTool)(nil)
)

type SearchTool struct {
	search     output.SearchPort
	logger     output.LoggerPort
	maxResults int
}

func NewSearchTool(search output.SearchPort, logger output.LoggerPort, maxResults int) *SearchTool {
	if maxResults <= 0 {
		maxResults = DefaultSearchResults
	}
	return &SearchTool{search: search, logger: logger, maxResults: maxResults}
}

func (t *SearchTool) Name() entity.ToolName { return entity.ToolWebSearch }
func (t *SearchTool) Description() string {
	return "Search the internet for a query. Returns the top results with title, snippet and link. Use it to find recent facts, products, companies, papers and news about the topic."
}
func (t *SearchTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search query",
			},
		},
		"required": []string{"query"},
	}
}

func (t *SearchTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(args), &input); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(input.Query) == "" {
		return "", fmt.Errorf("query is required")
	}

	results, err := t.search.Search(ctx, input.Query)
	if err != nil {
		return "", err
	}

	t.logger.Debug("Search completed", "query", input.Query, "results", len(results))
	return FormatResults(results, t.maxResults), nil
}

// FormatResults renders at most limit results as a numbered list.
func FormatResults(results []entity.SearchResult, limit int) string {
	if len(results) == 0 {
		return "No results found."
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r.Title)
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", r.Snippet)
		}
		if r.URL != "" {
			fmt.Fprintf(&sb, "   Link: %s\n", r.URL)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

type ReadPageTool struct {
	reader output.PageReaderPort
	logger output.LoggerPort
}

func NewReadPageTool(reader output.PageReaderPort, logger output.LoggerPort) *ReadPageTool {
	return &ReadPageTool{reader: reader, logger: logger}
}

func (t *ReadPageTool) Name() entity.ToolName { return entity.ToolReadPage }
func (t *ReadPageTool) Description() string {
	return "Read the text content of a web page. Use it on links returned by web_search when the snippet is not enough."
}
func (t *ReadPageTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "Absolute http(s) URL of the page",
			},
		},
		"required": []string{"url"},
	}
}

func (t *ReadPageTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal([]byte(args), &input); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if !strings.HasPrefix(input.URL, "http://") && !strings.HasPrefix(input.URL, "https://") {
		return "", fmt.Errorf("url must start with http:// or https://")
	}

	text, err := t.reader.Read(ctx, input.URL)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "The page has no readable text.", nil
	}
	return text, nil
}
