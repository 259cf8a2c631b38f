package handlers

import (
	"context"
	"time"

	"commission/internal/bootstrap"

	"github.com/gofiber/fiber/v2"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	checks map[string]bootstrap.HealthChecker
}

func NewHealthHandler(checks map[string]bootstrap.HealthChecker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	status := "ok"
	code := fiber.StatusOK
	services := fiber.Map{}
	for name, check := range h.checks {
		if err := check.HealthCheck(ctx); err != nil {
			services[name] = err.Error()
			status = "degraded"
			code = fiber.StatusServiceUnavailable
			continue
		}
		services[name] = "connected"
	}

	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"version":  "1.0.0",
		"services": services,
	})
}
