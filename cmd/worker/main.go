package main

import (
	"context"
	"fmt"
	"os"

	"github.com/base-14/examples/go/echo-product-catalog/config"
	"github.com/base-14/examples/go/echo-product-catalog/internal/jobs"
	"github.com/base-14/examples/go/echo-product-catalog/internal/logging"
	"github.com/base-14/examples/go/echo-product-catalog/internal/telemetry"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logging.Init(cfg.IsDevelopment(), cfg.LogLevel)

	if !cfg.JobsEnabled() {
		logging.Logger().Fatal().Msg("REDIS_URL is required to run the worker")
	}

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Options{
		ServiceName: cfg.OTelServiceName + "-worker",
		Environment: cfg.Environment,
		Endpoint:    cfg.OTelEndpoint,
	})
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to initialize telemetry")
	}

	server := jobs.NewServer(jobs.ServerConfig{
		RedisAddr:       cfg.RedisAddr(),
		Concurrency:     cfg.WorkerConcurrency,
		ShutdownTimeout: cfg.ShutdownTimeout,
	})
	if err := server.Start(); err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to start worker")
	}

	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"worker": func(ctx context.Context) error {
			server.Shutdown()
			return shutdownTelemetry(ctx)
		},
	})

	exitCode := <-wait
	logging.Logger().Info().Int("exit_code", exitCode).Msg("worker stopped")
	os.Exit(exitCode)
}
