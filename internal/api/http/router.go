package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/jira-digest/internal/api/http/handlers"
	"github.com/spec-kit/jira-digest/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Digests        *handlers.DigestHandler
	Connections    *handlers.ConnectionHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle, auth.RequireSubject())
	api.Post("/digests", cfg.Digests.Build)

	connections := api.Group("/connections")
	connections.Get("/", cfg.Connections.List)
	connections.Get("/:id", cfg.Connections.Get)
	connections.Post("/:id/digests", cfg.Digests.BuildForConnection)
	connections.Post("/", auth.RequireOperator(), cfg.Connections.Create)
	connections.Delete("/:id", auth.RequireOperator(), cfg.Connections.Delete)
}
