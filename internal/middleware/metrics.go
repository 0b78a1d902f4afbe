package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter           = otel.Meter("echo-product-catalog")
	requestCounter  metric.Int64Counter
	requestDuration metric.Float64Histogram
	activeRequests  metric.Int64UpDownCounter
)

func InitMetrics() error {
	var err error

	requestCounter, err = meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	requestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	activeRequests, err = meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	return err
}

// Metrics records request count, latency and in-flight requests per route.
// It is a no-op until InitMetrics has run.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if requestCounter == nil || requestDuration == nil || activeRequests == nil {
				return next(c)
			}

			start := time.Now()
			ctx := c.Request().Context()

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			routeAttrs := metric.WithAttributes(
				attribute.String("http.method", c.Request().Method),
				attribute.String("http.route", route),
			)

			activeRequests.Add(ctx, 1, routeAttrs)
			defer activeRequests.Add(ctx, -1, routeAttrs)

			err := next(c)

			attrs := metric.WithAttributes(
				attribute.String("http.method", c.Request().Method),
				attribute.String("http.route", route),
				attribute.Int("http.status_code", responseStatus(c, err)),
			)
			requestCounter.Add(ctx, 1, attrs)
			requestDuration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)

			return err
		}
	}
}

// responseStatus reports the status the client will see; errors are written
// by the error handler after this middleware returns.
func responseStatus(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	code, _ := statusAndMessage(err)
	return code
}
