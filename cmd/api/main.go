package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/base-14/examples/go/echo-product-catalog/config"
	"github.com/base-14/examples/go/echo-product-catalog/internal/database"
	"github.com/base-14/examples/go/echo-product-catalog/internal/docs"
	"github.com/base-14/examples/go/echo-product-catalog/internal/handlers"
	"github.com/base-14/examples/go/echo-product-catalog/internal/jobs"
	"github.com/base-14/examples/go/echo-product-catalog/internal/logging"
	"github.com/base-14/examples/go/echo-product-catalog/internal/middleware"
	"github.com/base-14/examples/go/echo-product-catalog/internal/repository"
	"github.com/base-14/examples/go/echo-product-catalog/internal/server"
	"github.com/base-14/examples/go/echo-product-catalog/internal/services"
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

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Options{
		ServiceName: cfg.OTelServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTelEndpoint,
	})
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to initialize telemetry")
	}

	if err := middleware.InitMetrics(); err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to initialize metrics")
	}

	db, err := database.Connect(ctx, database.Config{
		Driver:        cfg.DBDriver,
		DatabaseURL:   cfg.DatabaseURL,
		Debug:         cfg.IsDevelopment(),
		MaxRetries:    cfg.DBConnectRetries,
		RetryInterval: time.Second,
	})
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to initialize database")
	}

	if err := database.Migrate(ctx, db); err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to run database migrations")
	}

	if cfg.DBSeed {
		if err := database.Seed(ctx, db); err != nil {
			logging.Logger().Fatal().Err(err).Msg("failed to seed database")
		}
	}

	apiDoc, err := docs.Load(ctx)
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to load api documentation")
	}

	var (
		jobClient *jobs.Client
		publisher services.EventPublisher
		redisAddr string
	)
	if cfg.JobsEnabled() {
		redisAddr = cfg.RedisAddr()
		jobClient, err = jobs.NewClient(redisAddr)
		if err != nil {
			logging.Logger().Fatal().Err(err).Msg("failed to create job client")
		}
		publisher = jobClient
	} else {
		logging.Logger().Info().Msg("REDIS_URL not set, product events disabled")
	}

	productRepo := repository.NewProductRepository(db, repository.ListOrder(cfg.ProductListOrder))
	productService := services.NewProductService(productRepo, publisher)

	e := server.New(server.Options{
		ServiceName: cfg.OTelServiceName,
		FrontendURL: cfg.FrontendURL,
		AccessLog:   true,
		Docs:        apiDoc,
		Health:      handlers.NewHealthHandler(db, redisAddr),
		Products:    handlers.NewProductHandler(productService),
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logging.Logger().Info().Str("port", cfg.Port).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger().Fatal().Err(err).Msg("server error")
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			logging.Logger().Info().Msg("shutting down server")
			var errs []error
			if err := e.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("server: %w", err))
			}
			if jobClient != nil {
				if err := jobClient.Close(); err != nil {
					errs = append(errs, fmt.Errorf("job client: %w", err))
				}
			}
			if err := database.Close(db); err != nil {
				errs = append(errs, fmt.Errorf("database: %w", err))
			}
			return errors.Join(errs...)
		},
		"telemetry": func(ctx context.Context) error {
			return shutdownTelemetry(ctx)
		},
	})

	exitCode := <-wait
	logging.Logger().Info().Int("exit_code", exitCode).Msg("server stopped")
	os.Exit(exitCode)
}
