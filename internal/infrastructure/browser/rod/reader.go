package rod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"articlegen/internal/application/port/output"
	"articlegen/internal/infrastructure/browser/htmltext"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

var _ output.PageReaderPort = (*PageReader)(nil)

// PageReader renders pages in a headless Chrome so that script-built content
// is readable. The browser is launched on first use.
type PageReader struct {
	cfg    BrowserConfig
	logger output.LoggerPort

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

type BrowserConfig struct {
	Headless  bool
	NoSandbox bool
	Timeout   time.Duration
	IdleWait  time.Duration
	Bin       string
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:  true,
		NoSandbox: true,
		Timeout:   30 * time.Second,
		IdleWait:  2 * time.Second,
	}
}

func NewPageReader(cfg BrowserConfig, logger output.LoggerPort) *PageReader {
	return &PageReader{cfg: cfg, logger: logger}
}

func (r *PageReader) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().
		Headless(r.cfg.Headless).
		NoSandbox(r.cfg.NoSandbox).
		Delete("use-mock-keychain").
		Set("disable-setuid-sandbox")
	if r.cfg.Bin != "" {
		l = l.Bin(r.cfg.Bin)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	r.logger.Info("Browser launched", "headless", r.cfg.Headless)
	r.browser = browser
	r.launcher = l
	return browser, nil
}

func (r *PageReader) Read(ctx context.Context, url string) (string, error) {
	browser, err := r.connect()
	if err != nil {
		return "", err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("failed to open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	p := page.Context(ctx).Timeout(r.cfg.Timeout)
	if err := p.Navigate(url); err != nil {
		return "", fmt.Errorf("navigation failed: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return "", fmt.Errorf("page load failed: %w", err)
	}
	if r.cfg.IdleWait > 0 {
		_ = p.WaitIdle(r.cfg.IdleWait)
	}

	html, err := p.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}

	r.logger.Debug("Page rendered", "url", url, "htmlLen", len(html))
	return htmltext.Extract(html, nil)
}

func (r *PageReader) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		_ = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		r.launcher.Kill()
		r.launcher.Cleanup()
		r.launcher = nil
	}
}
