package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/base-14/examples/go/echo-product-catalog/internal/database"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
)

type HealthHandler struct {
	db        *gorm.DB
	redisAddr string
}

// NewHealthHandler checks the database, and Redis when redisAddr is set.
func NewHealthHandler(db *gorm.DB, redisAddr string) *HealthHandler {
	return &HealthHandler{db: db, redisAddr: redisAddr}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
}

func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:   statusHealthy,
		Database: statusHealthy,
	}

	if err := database.CheckHealth(ctx, h.db); err != nil {
		response.Database = statusUnhealthy
		response.Status = statusDegraded
	}

	if h.redisAddr != "" {
		response.Redis = statusHealthy
		if err := h.checkRedis(ctx); err != nil {
			response.Redis = statusUnhealthy
			response.Status = statusDegraded
		}
	}

	statusCode := http.StatusOK
	if response.Status != statusHealthy {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, response)
}

func (h *HealthHandler) checkRedis(ctx context.Context) error {
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: h.redisAddr})
	defer inspector.Close()

	done := make(chan error, 1)
	go func() {
		_, err := inspector.Queues()
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
