package middleware

import (
	"errors"
	"net/http"

	"github.com/base-14/examples/go/echo-product-catalog/internal/logging"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorHandler is the echo HTTPErrorHandler. HTTP errors keep their status
// and message; anything else becomes a 500 without leaking the cause.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	ctx := c.Request().Context()
	span := trace.SpanFromContext(ctx)

	code, message := statusAndMessage(err)

	span.SetAttributes(attribute.Int("http.response.status_code", code))
	if code >= http.StatusInternalServerError {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	var traceID string
	if span.SpanContext().HasTraceID() {
		traceID = span.SpanContext().TraceID().String()
	}

	event := logging.Warn(ctx)
	if code >= http.StatusInternalServerError {
		event = logging.Error(ctx)
	}
	event.Err(err).
		Int("status", code).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Msg("request error")

	if c.Request().Method == http.MethodHead {
		if err := c.NoContent(code); err != nil {
			logging.Error(ctx).Err(err).Msg("failed to write error response")
		}
		return
	}

	response := ErrorResponse{
		Error:   message,
		TraceID: traceID,
	}

	if err := c.JSON(code, response); err != nil {
		logging.Error(ctx).Err(err).Msg("failed to write error response")
	}
}

func statusAndMessage(err error) (int, string) {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		return http.StatusInternalServerError, "internal server error"
	}

	if m, ok := he.Message.(string); ok && m != "" {
		return he.Code, m
	}
	return he.Code, http.StatusText(he.Code)
}
