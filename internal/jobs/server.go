package jobs

import (
	"context"
	"time"

	"github.com/base-14/examples/go/echo-product-catalog/internal/jobs/tasks"
	"github.com/base-14/examples/go/echo-product-catalog/internal/logging"

	"github.com/hibiken/asynq"
)

type ServerConfig struct {
	RedisAddr       string
	Concurrency     int
	ShutdownTimeout time.Duration
}

// Server consumes product events from the default queue.
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewServer(cfg ServerConfig) *Server {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Concurrency:     cfg.Concurrency,
			ShutdownTimeout: cfg.ShutdownTimeout,
			Queues:          map[string]int{DefaultQueue: 1},
			ErrorHandler:    asynq.ErrorHandlerFunc(reportTaskError),
		},
	)

	return &Server{
		server: server,
		mux:    NewMux(),
	}
}

// NewMux routes every task type the worker understands.
func NewMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(logTask)
	mux.HandleFunc(tasks.TypeProductEvent, tasks.HandleProductEvent)
	return mux
}

func (s *Server) Start() error {
	logging.Logger().Info().Msg("starting product event worker")
	return s.server.Start(s.mux)
}

func (s *Server) Shutdown() {
	logging.Logger().Info().Msg("shutting down product event worker")
	s.server.Shutdown()
}

func logTask(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		start := time.Now()
		err := next.ProcessTask(ctx, task)

		retried, _ := asynq.GetRetryCount(ctx)
		event := logging.Debug(ctx)
		if err != nil {
			event = logging.Warn(ctx).Err(err)
		}
		event.
			Str("task_type", task.Type()).
			Int("retried", retried).
			Dur("duration", time.Since(start)).
			Msg("task handled")

		return err
	})
}

func reportTaskError(ctx context.Context, task *asynq.Task, err error) {
	taskID, _ := asynq.GetTaskID(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	retried, _ := asynq.GetRetryCount(ctx)

	logging.Error(ctx).
		Err(err).
		Str("task_id", taskID).
		Str("task_type", task.Type()).
		Int("retried", retried).
		Int("max_retry", maxRetry).
		Msg("task failed")
}
