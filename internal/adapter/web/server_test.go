package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"articlegen/internal/application/port/output"
	"articlegen/internal/application/service"
	"articlegen/internal/domain/entity"
	"articlegen/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu      sync.Mutex
	topics  []string
	release chan struct{}
	err     error
	panics  bool
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{release: make(chan struct{})}
}

func (g *fakeGenerator) Generate(ctx context.Context, topic string, progress output.ProgressPort) (*entity.Article, error) {
	g.mu.Lock()
	g.topics = append(g.topics, topic)
	g.mu.Unlock()
	if g.panics {
		panic("provider exploded")
	}

	progress.OnProgress(entity.ProgressEvent{Kind: entity.ProgressTaskStarted, TaskCount: 2, AgentRole: "Senior Researcher"})

	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if g.err != nil {
		return nil, g.err
	}
	return &entity.Article{
		Topic:       topic,
		Body:        "## Heading\n\nSome *text*.",
		GeneratedAt: time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.topics)
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, gen *fakeGenerator) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(gen, service.NewRunRegistry(0), logger.NewNop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return srv, ts
}

func postJSON(t *testing.T, url, body string) (*http.Response, envelope) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func getRun(t *testing.T, base, id string) runViewJSON {
	t.Helper()
	resp, err := http.Get(base + "/api/runs/" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	var view runViewJSON
	require.NoError(t, json.Unmarshal(env.Data, &view))
	return view
}

type runViewJSON struct {
	ID          string                 `json:"id"`
	Topic       string                 `json:"topic"`
	Status      entity.RunStatus       `json:"status"`
	Events      []entity.ProgressEvent `json:"events"`
	Error       string                 `json:"error"`
	HTML        string                 `json:"html"`
	DownloadURL string                 `json:"downloadUrl"`
	Filename    string                 `json:"filename"`
}

func waitForStatus(t *testing.T, base, id string, status entity.RunStatus) runViewJSON {
	t.Helper()
	var view runViewJSON
	require.Eventually(t, func() bool {
		view = getRun(t, base, id)
		return view.Status == status
	}, 2*time.Second, 10*time.Millisecond)
	return view
}

func TestCreateRun_EmptyTopicIsRejected(t *testing.T) {
	gen := newFakeGenerator()
	_, ts := newTestServer(t, gen)

	for _, body := range []string{`{"topic":""}`, `{"topic":"   "}`} {
		resp, env := postJSON(t, ts.URL+"/api/runs", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Please enter a topic.", env.Message)
	}

	resp, err := http.PostForm(ts.URL+"/api/runs", url.Values{"topic": {""}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Zero(t, gen.calls())
}

func TestCreateRun_CompletesAndServesArticle(t *testing.T) {
	gen := newFakeGenerator()
	_, ts := newTestServer(t, gen)

	resp, env := postJSON(t, ts.URL+"/api/runs", `{"topic":"  Test Topic "}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var accepted acceptedRun
	require.NoError(t, json.Unmarshal(env.Data, &accepted))
	require.NotEmpty(t, accepted.ID)
	assert.Equal(t, "/api/runs/"+accepted.ID, resp.Header.Get("Location"))

	running := getRun(t, ts.URL, accepted.ID)
	assert.Equal(t, entity.RunStatusRunning, running.Status)
	assert.Empty(t, running.DownloadURL)

	close(gen.release)
	view := waitForStatus(t, ts.URL, accepted.ID, entity.RunStatusCompleted)

	assert.Equal(t, "Test Topic", view.Topic)
	assert.Len(t, view.Events, 1)
	assert.Contains(t, view.HTML, "<h1>Generated Article on Test Topic</h1>")
	assert.Contains(t, view.HTML, "<em>text</em>")
	assert.Equal(t, "Test_Topic_article.md", view.Filename)

	dl, err := http.Get(ts.URL + view.DownloadURL)
	require.NoError(t, err)
	defer dl.Body.Close()

	assert.Equal(t, http.StatusOK, dl.StatusCode)
	assert.Equal(t, "text/markdown; charset=utf-8", dl.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename=Test_Topic_article.md`, dl.Header.Get("Content-Disposition"))

	var sb bytes.Buffer
	_, err = sb.ReadFrom(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "# Generated Article on Test Topic\n\n## Heading\n\nSome *text*.\n\n---\n*Generated on September 15, 2025*", sb.String())
}

func TestCreateRun_RejectsOverlappingRun(t *testing.T) {
	gen := newFakeGenerator()
	_, ts := newTestServer(t, gen)

	resp, env := postJSON(t, ts.URL+"/api/runs", `{"topic":"Robotics"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var accepted acceptedRun
	require.NoError(t, json.Unmarshal(env.Data, &accepted))

	resp, env = postJSON(t, ts.URL+"/api/runs", `{"topic":"Biotech"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ERROR", env.Status)

	close(gen.release)
	waitForStatus(t, ts.URL, accepted.ID, entity.RunStatusCompleted)

	resp, _ = postJSON(t, ts.URL+"/api/runs", `{"topic":"Biotech"}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Eventually(t, func() bool { return gen.calls() == 2 }, time.Second, 10*time.Millisecond)
}

func TestCreateRun_FailureIsReportedWithoutDownload(t *testing.T) {
	gen := newFakeGenerator()
	gen.err = &entity.PipelineError{TaskIndex: 0, TaskName: entity.TaskResearch, Err: errors.New("provider down")}
	close(gen.release)
	_, ts := newTestServer(t, gen)

	resp, env := postJSON(t, ts.URL+"/api/runs", `{"topic":"Robotics"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var accepted acceptedRun
	require.NoError(t, json.Unmarshal(env.Data, &accepted))

	view := waitForStatus(t, ts.URL, accepted.ID, entity.RunStatusFailed)
	assert.Equal(t, "task 1 (research) failed: provider down", view.Error)
	assert.Empty(t, view.HTML)
	assert.Empty(t, view.DownloadURL)

	dl, err := http.Get(ts.URL + "/api/runs/" + accepted.ID + "/article.md")
	require.NoError(t, err)
	dl.Body.Close()
	assert.Equal(t, http.StatusNotFound, dl.StatusCode)

	health, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestGetRun_UnknownID(t *testing.T) {
	_, ts := newTestServer(t, newFakeGenerator())

	resp, err := http.Get(ts.URL + "/api/runs/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIndex_RendersForm(t *testing.T) {
	_, ts := newTestServer(t, newFakeGenerator())

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	var sb bytes.Buffer
	_, err = sb.ReadFrom(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, sb.String(), "AI Article Generator")
	assert.Contains(t, sb.String(), `id="generate">Generate Article`)
}

func TestClose_CancelsRunInFlight(t *testing.T) {
	gen := newFakeGenerator()
	srv, ts := newTestServer(t, gen)

	resp, env := postJSON(t, ts.URL+"/api/runs", `{"topic":"Robotics"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var accepted acceptedRun
	require.NoError(t, json.Unmarshal(env.Data, &accepted))

	srv.Close()

	run, err := srv.runs.Get(accepted.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusFailed, run.Status)
	assert.Contains(t, run.Error, "context canceled")
}

func TestCreateRun_PanicFailsRunAndFreesSlot(t *testing.T) {
	gen := newFakeGenerator()
	gen.panics = true
	_, ts := newTestServer(t, gen)

	resp, env := postJSON(t, ts.URL+"/api/runs", `{"topic":"Robotics"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var accepted acceptedRun
	require.NoError(t, json.Unmarshal(env.Data, &accepted))

	view := waitForStatus(t, ts.URL, accepted.ID, entity.RunStatusFailed)
	assert.Contains(t, view.Error, "provider exploded")

	resp, _ = postJSON(t, ts.URL+"/api/runs", `{"topic":"Drones"}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}
