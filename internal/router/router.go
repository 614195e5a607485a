package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sigra-edu/sigra-api/internal/config"
	"github.com/sigra-edu/sigra-api/internal/handler"
	"github.com/sigra-edu/sigra-api/internal/middleware"
	"github.com/sigra-edu/sigra-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	CourseHandler       *handler.CourseHandler
	OutcomeHandler      *handler.OutcomeHandler
	ActivityHandler     *handler.ActivityHandler
	GradeHandler        *handler.GradeHandler
	NoticeHandler       *handler.NoticeHandler
	ProfileHandler      *handler.ProfileHandler
	ResourceHandler     *handler.ResourceHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 10, time.Minute))
		deps.AuthHandler.Register(auth)

		authProtected := api.Group("/auth", jwtMiddleware)
		deps.AuthHandler.RegisterProtected(authProtected)
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)

		if deps.OutcomeHandler != nil {
			deps.OutcomeHandler.RegisterCourseRoutes(courses)
		}
		if deps.ResourceHandler != nil {
			deps.ResourceHandler.RegisterCourseRoutes(courses)
		}
	}

	if deps.OutcomeHandler != nil {
		outcomes := api.Group("/outcomes", jwtMiddleware)
		deps.OutcomeHandler.Register(outcomes)

		if deps.ActivityHandler != nil {
			deps.ActivityHandler.RegisterOutcomeRoutes(outcomes)
		}
	}

	if deps.ActivityHandler != nil {
		types := api.Group("/activity-types", jwtMiddleware)
		deps.ActivityHandler.RegisterTypes(types)
	}

	if deps.GradeHandler != nil {
		grades := api.Group("/grades", jwtMiddleware)
		deps.GradeHandler.Register(grades)

		enrollments := api.Group("/enrollments", jwtMiddleware)
		deps.GradeHandler.RegisterEnrollmentRoutes(enrollments)
	}

	me := api.Group("/me", jwtMiddleware)
	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(me)
	}
	if deps.NoticeHandler != nil {
		deps.NoticeHandler.Register(me)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}
}
