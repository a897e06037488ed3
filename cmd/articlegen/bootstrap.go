package main

import (
	"context"
	"fmt"

	"articlegen/internal/di"
	"articlegen/internal/infrastructure/env"
)

// bootstrap loads configuration from the environment and builds the
// container. Missing credentials fail here, before anything is served.
func bootstrap(ctx context.Context, override func(*di.Config)) (*di.Container, error) {
	envService := env.NewEnvService()

	cfg, err := di.LoadConfig(envService)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(&cfg)
	}

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialization failed: %w", err)
	}

	container.Logger.Debug("Environment loaded", "appEnv", envService.AppEnv(), "files", envService.LoadedFiles())
	return container, nil
}
