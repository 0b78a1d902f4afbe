package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/base-14/examples/go/echo-product-catalog/internal/jobs/tasks"
	"github.com/base-14/examples/go/echo-product-catalog/internal/logging"
	"github.com/base-14/examples/go/echo-product-catalog/internal/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

const DefaultQueue = "default"

var (
	tracer       = otel.Tracer("echo-product-catalog")
	meter        = otel.Meter("echo-product-catalog")
	jobsEnqueued metric.Int64Counter
)

type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr string) (*Client, error) {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})

	var err error
	jobsEnqueued, err = meter.Int64Counter(
		"jobs.enqueued",
		metric.WithDescription("Total number of jobs enqueued"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create jobs enqueued counter")
	}

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// NewProductEventTask builds the task for a product change, carrying the
// caller's trace context so the worker span joins the request trace.
func NewProductEventTask(ctx context.Context, action string, product *models.Product) (*asynq.Task, string, error) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	eventID := uuid.NewString()
	payload := tasks.ProductEventPayload{
		EventID:      eventID,
		Action:       action,
		Product:      *product,
		OccurredAt:   time.Now().UTC(),
		TraceContext: carrier,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, "", err
	}

	return asynq.NewTask(tasks.TypeProductEvent, payloadBytes, asynq.TaskID(eventID), asynq.Queue(DefaultQueue)), eventID, nil
}

func (c *Client) EnqueueProductEvent(ctx context.Context, action string, product *models.Product) error {
	ctx, span := tracer.Start(ctx, "job.enqueue.product_event")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product.id", int64(product.ID)),
		attribute.String("event.action", action),
		attribute.String("job.type", tasks.TypeProductEvent),
	)

	task, eventID, err := NewProductEventTask(ctx, action, product)
	if err != nil {
		span.RecordError(err)
		return err
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if jobsEnqueued != nil {
		jobsEnqueued.Add(ctx, 1, metric.WithAttributes(
			attribute.String("job.type", tasks.TypeProductEvent),
		))
	}

	span.SetAttributes(
		attribute.String("job.id", info.ID),
		attribute.String("job.queue", info.Queue),
	)

	logging.Info(ctx).
		Str("job_id", info.ID).
		Str("event_id", eventID).
		Str("action", action).
		Uint("product_id", product.ID).
		Msg("job enqueued")

	return nil
}
