package rod

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"articlegen/internal/infrastructure/logger"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scriptedHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
	<div id="result"></div>
	<script>document.getElementById('result').textContent = 'Rendered by script';</script>
</body>
</html>`

func newTestReader(t *testing.T) *PageReader {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no Chrome/Chromium found")
	}

	cfg := DefaultConfig()
	cfg.Bin = bin
	r := NewPageReader(cfg, logger.NewNop())
	t.Cleanup(r.Close)
	return r
}

func TestPageReader_ReadsScriptContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, scriptedHTML)
	}))
	defer server.Close()

	reader := newTestReader(t)

	text, err := reader.Read(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Contains(t, text, "Test Page")
	assert.Contains(t, text, "Hello World")
	assert.Contains(t, text, "Rendered by script")
	assert.NotContains(t, text, "getElementById")
}

func TestPageReader_CanceledContext(t *testing.T) {
	reader := newTestReader(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reader.Read(ctx, "http://127.0.0.1:1")
	assert.Error(t, err)
}
