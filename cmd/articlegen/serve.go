package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"articlegen/internal/di"
)

// ServeCmd starts the web UI.
// Usage: articlegen serve --addr :8501
type ServeCmd struct {
	Addr string `short:"a" long:"addr" description:"listen address (default HTTP_ADDR or :8501)"`
}

func (s *ServeCmd) Execute(_ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := bootstrap(ctx, func(cfg *di.Config) {
		if s.Addr != "" {
			cfg.HTTPAddr = s.Addr
		}
	})
	if err != nil {
		return err
	}
	defer container.Close()

	return container.WebServer().ListenAndServe(ctx, container.Config.HTTPAddr)
}
