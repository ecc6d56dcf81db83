package handler

import (
	"context"
	"time"

	"exam-hub/internal/domain"
	"exam-hub/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const healthTimeout = 3 * time.Second

// HealthHandler reports whether the store and the optional cache respond.
type HealthHandler struct {
	store *domain.Store
	cache domain.Cache
}

// NewHealthHandler creates a HealthHandler. cache may be nil.
func NewHealthHandler(store *domain.Store, cache domain.Cache) *HealthHandler {
	return &HealthHandler{store: store, cache: cache}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Cache  string `json:"cache"`
}

// Check godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} handler.HealthResponse
// @Failure 503 {object} handler.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Store: "ok", Cache: "disabled"}
	if err := h.store.Ping(ctx); err != nil {
		logger.Get().Error("Health check: store unreachable", zap.Error(err))
		resp.Status, resp.Store = "unavailable", "down"
	}
	if h.cache != nil {
		resp.Cache = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			logger.Get().Warn("Health check: cache unreachable", zap.Error(err))
			resp.Status, resp.Cache = "degraded", "down"
			if resp.Store == "down" {
				resp.Status = "unavailable"
			}
		}
	}

	status := fiber.StatusOK
	if resp.Status == "unavailable" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(resp)
}
