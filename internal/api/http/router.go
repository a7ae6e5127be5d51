package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/notify-service/internal/api/http/handlers"
	"github.com/spec-kit/notify-service/internal/auth"
	"github.com/spec-kit/notify-service/internal/hub"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Devices        *handlers.DevicesHandler
	Notifications  *handlers.NotificationsHandler
	Realtime       *hub.Handler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Get("/validate", cfg.AuthMiddleware.Handle, cfg.Auth.Validate)

	devices := app.Group("/devices", cfg.AuthMiddleware.Handle)
	devices.Post("/register", cfg.Devices.Register)
	devices.Get("/", cfg.Devices.List)
	devices.Delete("/", cfg.Devices.Unregister)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle)
	notifications.Post("/send", cfg.Notifications.Send)

	// Real-time channel: the handshake cannot always carry headers, so this
	// route alone also accepts ?access_token=.
	app.Get("/ws/notifications", cfg.AuthMiddleware.HandleRealtime, cfg.Realtime.Upgrade)
}
