package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newEcho(frontendURL string) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.Use(Metrics())
	e.Use(CORS(frontendURL))

	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("connection refused")
	})
	e.GET("/ok", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return e
}

func TestErrorHandler_HTTPError(t *testing.T) {
	e := newEcho("http://localhost:5173")

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, rec.Body.String())
}

func TestErrorHandler_InternalErrorHidesCause(t *testing.T) {
	e := newEcho("http://localhost:5173")

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	e := newEcho("http://localhost:5173")

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}

func TestMetrics_WithInstruments(t *testing.T) {
	assert.NoError(t, InitMetrics())
	e := newEcho("http://localhost:5173")

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.NotZero(t, rec.Code)
	}
}

func TestCORS(t *testing.T) {
	e := newEcho("http://localhost:5173")

	tests := []struct {
		name          string
		origin        string
		expectAllowed string
	}{
		{name: "frontend origin", origin: "http://localhost:5173", expectAllowed: "http://localhost:5173"},
		{name: "other origin", origin: "http://evil.example", expectAllowed: ""},
		{name: "no origin", origin: "", expectAllowed: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ok", nil)
			if tt.origin != "" {
				req.Header.Set(echo.HeaderOrigin, tt.origin)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.expectAllowed, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		})
	}
}
