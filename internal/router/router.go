package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aulamax/aulamax-api/internal/config"
	"github.com/aulamax/aulamax-api/internal/handler"
	"github.com/aulamax/aulamax-api/internal/middleware"
	"github.com/aulamax/aulamax-api/internal/models"
	"github.com/aulamax/aulamax-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	AssessmentHandler *handler.AssessmentHandler
	SubmissionHandler *handler.SubmissionHandler
	AttemptHandler    *handler.AttemptHandler
	GradingHandler    *handler.GradingHandler
	UploadHandler     *handler.UploadHandler
	ProgressHandler   *handler.ProgressHandler
	ActivityHandler   *handler.ActivityHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	if deps.AssessmentHandler != nil {
		assessments := api.Group("/assessments", jwtMiddleware)
		deps.AssessmentHandler.Register(assessments)

		// Students create submissions against a specific assessment.
		if deps.SubmissionHandler != nil {
			deps.SubmissionHandler.Register(assessments)
		}
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.RegisterCollection(submissions)
	}

	if deps.AttemptHandler != nil {
		quizzes := api.Group("/quizzes", jwtMiddleware)
		deps.AttemptHandler.Register(quizzes)

		attempts := api.Group("/attempts", jwtMiddleware)
		deps.AttemptHandler.RegisterCollection(attempts)
	}

	if deps.GradingHandler != nil {
		grades := api.Group("/grades", jwtMiddleware)
		deps.GradingHandler.Register(grades)
	}

	if deps.UploadHandler != nil {
		uploads := api.Group("/uploads", jwtMiddleware, middleware.RateLimit("uploads", 30, time.Minute))
		deps.UploadHandler.Register(uploads)
	}

	if deps.ProgressHandler != nil {
		students := api.Group("/students", jwtMiddleware, middleware.RequireStudent())
		deps.ProgressHandler.Register(students)
	}

	if deps.ActivityHandler != nil {
		admin := api.Group("/admin/activity", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.ActivityHandler.Register(admin)
	}
}
