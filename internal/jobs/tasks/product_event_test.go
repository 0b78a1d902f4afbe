package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/base-14/examples/go/echo-product-catalog/internal/logging"
	"github.com/base-14/examples/go/echo-product-catalog/internal/models"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(t *testing.T, payload ProductEventPayload) *asynq.Task {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(TypeProductEvent, b)
}

func TestHandleProductEvent(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.SetOutput(&bytes.Buffer{})

	task := newTask(t, ProductEventPayload{
		EventID: "evt-1",
		Action:  ActionCreated,
		Product: models.Product{ID: 7, Name: "Monitor", Price: 300, Availability: true},
	})

	require.NoError(t, HandleProductEvent(context.Background(), task))
	assert.Contains(t, buf.String(), "product event processed")
	assert.Contains(t, buf.String(), `"product_id":7`)
}

func TestHandleProductEvent_InvalidPayloadSkipsRetry(t *testing.T) {
	task := asynq.NewTask(TypeProductEvent, []byte("not json"))

	err := HandleProductEvent(context.Background(), task)
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleProductEvent_MissingFieldsSkipsRetry(t *testing.T) {
	task := newTask(t, ProductEventPayload{EventID: "evt-2"})

	err := HandleProductEvent(context.Background(), task)
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
