package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/base-14/examples/go/echo-product-catalog/internal/logging"
	"github.com/base-14/examples/go/echo-product-catalog/internal/models"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

const TypeProductEvent = "catalog:product_event"

const (
	ActionCreated             = "created"
	ActionUpdated             = "updated"
	ActionAvailabilityToggled = "availability_toggled"
	ActionDeleted             = "deleted"
)

var (
	tracer        = otel.Tracer("echo-product-catalog-worker")
	meter         = otel.Meter("echo-product-catalog-worker")
	jobsCompleted metric.Int64Counter
	jobsFailed    metric.Int64Counter
	jobsDuration  metric.Float64Histogram
)

func init() {
	var err error

	jobsCompleted, err = meter.Int64Counter(
		"jobs.completed",
		metric.WithDescription("Total number of jobs completed successfully"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create jobs completed counter")
	}

	jobsFailed, err = meter.Int64Counter(
		"jobs.failed",
		metric.WithDescription("Total number of jobs failed"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create jobs failed counter")
	}

	jobsDuration, err = meter.Float64Histogram(
		"jobs.duration_ms",
		metric.WithDescription("Job processing duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create jobs duration histogram")
	}
}

type ProductEventPayload struct {
	EventID      string            `json:"event_id"`
	Action       string            `json:"action"`
	Product      models.Product    `json:"product"`
	OccurredAt   time.Time         `json:"occurred_at"`
	TraceContext map[string]string `json:"trace_context"`
}

func HandleProductEvent(ctx context.Context, task *asynq.Task) error {
	start := time.Now()

	var payload ProductEventPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		recordJobMetrics(ctx, false, time.Since(start))
		return fmt.Errorf("invalid product event payload: %w", asynq.SkipRetry)
	}

	if payload.Action == "" || payload.Product.ID == 0 {
		recordJobMetrics(ctx, false, time.Since(start))
		return fmt.Errorf("product event %q is missing action or product id: %w", payload.EventID, asynq.SkipRetry)
	}

	parentCtx := otel.GetTextMapPropagator().Extract(
		context.Background(),
		propagation.MapCarrier(payload.TraceContext),
	)

	ctx, span := tracer.Start(parentCtx, "job.product_event")
	defer span.End()

	span.SetAttributes(
		attribute.String("event.id", payload.EventID),
		attribute.String("event.action", payload.Action),
		attribute.Int64("product.id", int64(payload.Product.ID)),
		attribute.String("job.type", TypeProductEvent),
	)

	logging.Info(ctx).
		Str("event_id", payload.EventID).
		Str("action", payload.Action).
		Uint("product_id", payload.Product.ID).
		Str("product_name", payload.Product.Name).
		Bool("availability", payload.Product.Availability).
		Time("occurred_at", payload.OccurredAt).
		Msg("product event processed")

	span.SetStatus(codes.Ok, "product event processed")
	recordJobMetrics(ctx, true, time.Since(start))

	return nil
}

func recordJobMetrics(ctx context.Context, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("job.type", TypeProductEvent),
	}

	if success {
		if jobsCompleted != nil {
			jobsCompleted.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
	} else {
		if jobsFailed != nil {
			jobsFailed.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
	}

	if jobsDuration != nil {
		jobsDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	}
}
