// Package docs serves the OpenAPI description of the catalog API and a
// Swagger UI for it.
package docs

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/swaggest/swgui/v5emb"
)

const (
	BasePath = "/api/docs/"
	SpecPath = "/api/docs/openapi.json"
)

//go:embed openapi.yaml
var spec []byte

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	return doc, nil
}

// Register mounts the JSON document and the UI on e.
func Register(e *echo.Echo, doc *openapi3.T) {
	ui := v5emb.New(doc.Info.Title, SpecPath, BasePath)

	e.GET(SpecPath, func(c echo.Context) error {
		return c.JSON(http.StatusOK, doc)
	})
	e.GET(BasePath+"*", echo.WrapHandler(ui))
	e.GET("/api/docs", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, BasePath)
	})
}
