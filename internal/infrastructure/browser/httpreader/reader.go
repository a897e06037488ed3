package httpreader

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"articlegen/internal/application/port/output"
	"articlegen/internal/infrastructure/browser/htmltext"
)

var _ output.PageReaderPort = (*Reader)(nil)

const (
	defaultUserAgent = "Mozilla/5.0 (compatible; articlegen/1.0)"
	maxBodySize      = 5 << 20
)

type Config struct {
	Timeout   time.Duration
	UserAgent string
	Logger    output.LoggerPort
}

// Reader fetches pages with a plain GET and extracts their text.
type Reader struct {
	client    *http.Client
	userAgent string
	logger    output.LoggerPort
}

func New(cfg Config) *Reader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &Reader{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		logger:    cfg.Logger,
	}
}

func (r *Reader) Read(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	res, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: status %d", url, res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}

	mediaType, _, _ := mime.ParseMediaType(res.Header.Get("Content-Type"))
	if r.logger != nil {
		r.logger.Debug("Page fetched", "url", url, "contentType", mediaType, "bytes", len(body))
	}

	switch {
	case mediaType == "" || mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return htmltext.Extract(string(body), nil)
	case strings.HasPrefix(mediaType, "text/"):
		return strings.TrimSpace(string(body)), nil
	default:
		return "", fmt.Errorf("unsupported content type %q", mediaType)
	}
}

func (r *Reader) Close() {}
