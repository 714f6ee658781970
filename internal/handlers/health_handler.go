package handlers

import (
	"context"
	"time"

	"contacts/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HealthHandler reports whether the service can reach its storage.
type HealthHandler struct {
	service *services.ContactService
	log     *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(service *services.ContactService, log *zap.Logger) *HealthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthHandler{service: service, log: log}
}

// RegisterRoutes registers the health route.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth pings storage with a short timeout.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.service.Ping(ctx); err != nil {
		return errorResponse(c, h.log, fiber.NewError(fiber.StatusServiceUnavailable, "storage unavailable: "+err.Error()))
	}
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
