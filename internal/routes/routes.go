// Package routes defines the API routing configuration.
package routes

import (
	"commission/internal/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups what SetupRoutes mounts.
type Handlers struct {
	Fee    *handlers.FeeHandler
	Health *handlers.HealthHandler
	// Gatherer backs /metrics; nil leaves the endpoint unmounted.
	Gatherer prometheus.Gatherer
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, h Handlers) {
	app.Get("/health", h.Health.HealthCheck)

	if h.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	api.Post("/fees", h.Fee.CalculateFees)
}
