package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var logger = newJSONLogger(os.Stdout)

// Init configures the process logger. Development mode writes human readable
// lines with caller info; otherwise every line is a JSON object.
func Init(isDevelopment bool, level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if isDevelopment {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Caller().
			Logger()
		return
	}
	logger = newJSONLogger(os.Stdout)
}

// SetOutput redirects the process logger, keeping JSON encoding.
func SetOutput(w io.Writer) {
	logger = newJSONLogger(w)
}

func newJSONLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

func Logger() *zerolog.Logger {
	return &logger
}

// WithContext returns the process logger annotated with the trace and span
// ids of the span active in ctx, if any.
func WithContext(ctx context.Context) zerolog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}

	return logger.With().
		Str("traceId", sc.TraceID().String()).
		Str("spanId", sc.SpanID().String()).
		Logger()
}

func Info(ctx context.Context) *zerolog.Event {
	l := WithContext(ctx)
	return l.Info()
}

func Error(ctx context.Context) *zerolog.Event {
	l := WithContext(ctx)
	return l.Error()
}

func Debug(ctx context.Context) *zerolog.Event {
	l := WithContext(ctx)
	return l.Debug()
}

func Warn(ctx context.Context) *zerolog.Event {
	l := WithContext(ctx)
	return l.Warn()
}
