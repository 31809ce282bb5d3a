package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/api/http/handlers"
	"github.com/spec-kit/triage-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Triage         *handlers.TriageHandler
	Teams          *handlers.TeamsHandler
	Stats          *handlers.StatsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	v1 := app.Group("/v1")

	v1.Post("/classify", cfg.Triage.Classify)

	v1.Post("/tasks", cfg.Triage.Triage)
	v1.Get("/tasks", cfg.Triage.ListTasks)
	v1.Get("/tasks/:id", cfg.Triage.GetTask)
	v1.Get("/tasks/:id/decisions", cfg.Triage.Decisions)
	v1.Post("/tasks/:id/assignments", cfg.Triage.Assign)

	v1.Post("/teams", cfg.Teams.CreateTeam)
	v1.Get("/teams", cfg.Teams.ListTeams)
	v1.Get("/teams/workloads", cfg.Teams.Workloads)
	v1.Get("/teams/:id", cfg.Teams.GetTeam)
	v1.Put("/teams/:id", cfg.Teams.UpdateTeam)
	v1.Post("/teams/:id/release", cfg.Teams.ReleaseTask)

	stats := v1.Group("/stats", cfg.AuthMiddleware.Handle)
	stats.Get("/classifications", cfg.Stats.ClassificationStats)
	stats.Get("/assignments", cfg.Stats.AssignmentStats)
	stats.Get("/metrics", cfg.Stats.Metrics)
}
