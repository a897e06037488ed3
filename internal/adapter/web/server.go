package web

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"articlegen/internal/application/port/input"
	"articlegen/internal/application/port/output"
	"articlegen/internal/application/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// Server is the browser front end: a form page plus a small JSON API that
// starts a run in the background and lets the page poll for its state.
type Server struct {
	generator input.ArticleGenerator
	runs      *service.RunRegistry
	logger    output.LoggerPort
	markdown  goldmark.Markdown
	accessLog *zerolog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type Option func(*Server)

// WithAccessLog installs the httplog request logger middleware.
func WithAccessLog(l zerolog.Logger) Option {
	return func(s *Server) { s.accessLog = &l }
}

func NewServer(generator input.ArticleGenerator, runs *service.RunRegistry, logger output.LoggerPort, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		generator: generator,
		runs:      runs,
		logger:    logger,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		baseCtx:   ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.accessLog != nil {
		r.Use(httplog.RequestLogger(*s.accessLog))
	}

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api/runs", func(r chi.Router) {
		r.Post("/", s.handleCreateRun)
		r.Get("/{id}", s.handleGetRun)
		r.Get("/{id}/article.md", s.handleDownload)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down and
// cancels any run still in flight.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.Close()
		return err
	}
}

// Close cancels background runs and waits for them to record their outcome.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Server) render(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}
