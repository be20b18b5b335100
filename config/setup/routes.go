package setup

import (
	"time"

	"doc-notification/app"
	"doc-notification/handlers"
	"doc-notification/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(fiberApp *fiber.App, application *app.App) {
	// Public routes
	fiberApp.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })
	fiberApp.Get("/api/time", handlers.ServerTime)

	// Auth routes
	fiberApp.Post("/api/auth/register", handlers.Register(application))
	fiberApp.Post("/api/auth/login", handlers.Login(application))
	fiberApp.Post("/api/auth/logout", handlers.Logout(application))

	// Protected API routes
	api := fiberApp.Group("/api", middleware.AuthRequired(application.Users), limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if email, ok := c.Locals("userEmail").(string); ok {
				return "user:" + email
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded for your account",
			})
		},
	}))

	api.Get("/auth/me", handlers.Me(application))
	api.Put("/profile", handlers.UpdateProfile(application))

	api.Get("/patients", handlers.ListPatients(application))
	api.Post("/patients", handlers.CreatePatient(application))
	api.Delete("/patients", handlers.ClearPatients(application))
	api.Get("/patients/:id", handlers.GetPatient(application))
	api.Put("/patients/:id", handlers.UpdatePatient(application))
	api.Delete("/patients/:id", handlers.DeletePatient(application))

	api.Get("/dashboard", handlers.Dashboard(application))

	api.Get("/backup/export", handlers.ExportBackup(application))
	api.Post("/backup/save", handlers.SaveBackup(application))
	api.Post("/backup/preview", handlers.PreviewBackup(application))
	api.Post("/backup/import", handlers.ImportBackup(application))
}
