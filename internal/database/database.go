package database

import (
	"context"
	"fmt"
	"time"

	"github.com/base-14/examples/go/echo-product-catalog/internal/logging"

	"github.com/cenkalti/backoff/v5"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver        string
	DatabaseURL   string
	Debug         bool
	MaxRetries    int
	RetryInterval time.Duration
}

// Connect opens the storage handle and verifies it with a ping, retrying
// transient failures with exponential backoff. The caller owns the returned
// handle and must release it with Close.
func Connect(ctx context.Context, cfg Config) (*gorm.DB, error) {
	tries := cfg.MaxRetries
	if tries < 1 {
		tries = 1
	}

	bo := backoff.NewExponentialBackOff()
	if cfg.RetryInterval > 0 {
		bo.InitialInterval = cfg.RetryInterval
	}
	bo.MaxInterval = 10 * time.Second

	db, err := backoff.Retry(ctx, func() (*gorm.DB, error) {
		return open(cfg)
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(tries)),
		backoff.WithNotify(func(err error, next time.Duration) {
			logging.Warn(ctx).
				Err(err).
				Dur("retry_in", next).
				Msg("database not reachable, retrying")
		}),
	)
	if err != nil {
		logging.Error(ctx).
			Err(err).
			Str("driver", cfg.Driver).
			Msg("There was an error connecting to the database")
		return nil, err
	}

	logging.Info(ctx).
		Str("driver", cfg.Driver).
		Msg("database connection successful")

	return db, nil
}

func open(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseURL)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		return nil, backoff.Permanent(fmt.Errorf("unsupported database driver %q", cfg.Driver))
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		_ = Close(db)
		return nil, backoff.Permanent(fmt.Errorf("failed to setup otel plugin: %w", err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// every new connection to an in-memory database is a different database
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	return db, nil
}

func CheckHealth(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
