package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/algolab-dev/labrec-api/internal/config"
	"github.com/algolab-dev/labrec-api/internal/handler"
	"github.com/algolab-dev/labrec-api/internal/middleware"
	"github.com/algolab-dev/labrec-api/internal/models"
	"github.com/algolab-dev/labrec-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProgramHandler      *handler.ProgramHandler
	SubmissionHandler   *handler.SubmissionHandler
	ProgressHandler     *handler.ProgressHandler
	RecordHandler       *handler.RecordHandler
	RunnerHandler       *handler.RunnerHandler
	AssistantHandler    *handler.AssistantHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	teacherOnly := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)

	if deps.ProgramHandler != nil {
		programs := api.Group("/programs", jwtMiddleware)
		deps.ProgramHandler.Register(programs, teacherOnly)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.RegisterAlgorithms(submissions.Group("/algorithms"), teacherOnly)
		deps.SubmissionHandler.RegisterCode(submissions.Group("/code"), teacherOnly)
	}

	if deps.ProgressHandler != nil {
		progress := api.Group("/progress", jwtMiddleware)
		deps.ProgressHandler.Register(progress, teacherOnly)
	}

	if deps.RecordHandler != nil {
		records := api.Group("/records", jwtMiddleware)
		deps.RecordHandler.Register(records)
	}

	if deps.RunnerHandler != nil {
		runner := api.Group("/runner", jwtMiddleware, middleware.RateLimit("runner", 10, time.Minute))
		deps.RunnerHandler.Register(runner)
	}

	if deps.AssistantHandler != nil {
		assistant := api.Group("/assistant", jwtMiddleware, middleware.RateLimit("assistant", 5, time.Minute))
		deps.AssistantHandler.Register(assistant)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}
}
