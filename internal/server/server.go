package server

import (
	"strings"

	"github.com/base-14/examples/go/echo-product-catalog/internal/docs"
	"github.com/base-14/examples/go/echo-product-catalog/internal/handlers"
	"github.com/base-14/examples/go/echo-product-catalog/internal/metrics"
	"github.com/base-14/examples/go/echo-product-catalog/internal/middleware"
	"github.com/base-14/examples/go/echo-product-catalog/internal/validation"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

const healthPath = "/api/health"

type Options struct {
	ServiceName string
	FrontendURL string
	AccessLog   bool
	Docs        *openapi3.T
	Health      *handlers.HealthHandler
	Products    *handlers.ProductHandler
}

// New builds the echo instance with the full route table.
func New(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler

	e.Pre(echomiddleware.RemoveTrailingSlashWithConfig(echomiddleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/docs")
		},
	}))

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(otelecho.Middleware(opts.ServiceName, otelecho.WithSkipper(func(c echo.Context) bool {
		return c.Path() == healthPath
	})))
	e.Use(middleware.Metrics())
	e.Use(middleware.CORS(opts.FrontendURL))

	if opts.AccessLog {
		e.Use(middleware.RequestLogger())
	}

	e.GET(healthPath, opts.Health.Check)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	if opts.Docs != nil {
		docs.Register(e, opts.Docs)
	}

	products := e.Group("/api/products")
	products.GET("", opts.Products.List)
	products.GET("/:id", opts.Products.Get, validation.Gate(validation.IDRules...))
	products.POST("", opts.Products.Create, validation.Gate(validation.CreateRules...))
	products.PUT("/:id", opts.Products.Update, validation.Gate(validation.UpdateRules...))
	products.PATCH("/:id", opts.Products.ToggleAvailability, validation.Gate(validation.IDRules...))
	products.DELETE("/:id", opts.Products.Delete, validation.Gate(validation.IDRules...))

	return e
}
