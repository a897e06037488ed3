package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"articlegen/internal/application/port/output"
	"articlegen/internal/domain/entity"
)

var _ output.SearchPort = (*Client)(nil)

const (
	DefaultBaseURL    = "https://google.serper.dev"
	DefaultNumResults = 10
	providerName      = "serper"
)

type Config struct {
	APIKey     string
	BaseURL    string
	NumResults int
	Timeout    time.Duration
	Logger     output.LoggerPort
}

// Client queries the Serper Google Search API.
type Client struct {
	apiKey  string
	baseURL string
	num     int
	http    *http.Client
	logger  output.LoggerPort
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.NumResults <= 0 {
		cfg.NumResults = DefaultNumResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		num:     cfg.NumResults,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger,
	}
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num,omitempty"`
}

type organicResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

type answerBox struct {
	Title   string `json:"title"`
	Answer  string `json:"answer"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

type searchResponse struct {
	AnswerBox *answerBox      `json:"answerBox,omitempty"`
	Organic   []organicResult `json:"organic"`
}

func (c *Client) Search(ctx context.Context, query string) ([]entity.SearchResult, error) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(searchRequest{Q: query, Num: c.num}); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return nil, &entity.ProviderError{Provider: providerName, Op: "search", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &entity.ProviderError{
			Provider: providerName,
			Op:       "search",
			Err:      fmt.Errorf("status %d: %s", res.StatusCode, bytes.TrimSpace(b)),
		}
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, &entity.ProviderError{Provider: providerName, Op: "decode response", Err: err}
	}

	results := make([]entity.SearchResult, 0, len(sr.Organic)+1)
	if ab := sr.AnswerBox; ab != nil && (ab.Answer != "" || ab.Snippet != "") {
		snippet := ab.Answer
		if snippet == "" {
			snippet = ab.Snippet
		}
		results = append(results, entity.SearchResult{Title: ab.Title, Snippet: snippet, URL: ab.Link})
	}
	for _, o := range sr.Organic {
		results = append(results, entity.SearchResult{Title: o.Title, Snippet: o.Snippet, URL: o.Link})
	}

	if c.logger != nil {
		c.logger.Debug("Serper search", "query", query, "results", len(results), "duration", time.Since(start).String())
	}
	return results, nil
}
