package api

import (
	"github.com/Zhihong0321/ATAP-solar/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, handlers *Handlers) {
	api := app.Group("/api")

	// Health check endpoint
	api.Get("/health", handlers.HealthCheck)

	// Public site surface
	api.Get("/home", handlers.Home)
	api.Get("/news/:id", handlers.NewsDetail)
	api.Get("/stocks", handlers.Stocks)
	api.Get("/settings", handlers.GetSettings)
	api.Put("/settings", handlers.UpdateSettings)

	// Admin surface: the bearer token is extracted here and forwarded to the
	// remote content API, which is the authority on its validity.
	admin := api.Group("/admin", middleware.RequireToken())
	{
		admin.Get("/state", handlers.AdminState)
		admin.Post("/sync", handlers.AdminSync)
		admin.Post("/errors/clear", handlers.AdminClearError)

		admin.Post("/news", handlers.AdminCreateNews)
		admin.Put("/news/:id", handlers.AdminUpdateNews)
		admin.Patch("/news/:id/publish", handlers.AdminPublishNews)
		admin.Delete("/news/:id", handlers.AdminDeleteNews)
		admin.Post("/news/:id/refresh", handlers.AdminRefreshNews)

		admin.Post("/tasks", handlers.AdminCreateTask)
		admin.Put("/tasks/:id", handlers.AdminUpdateTask)
		admin.Delete("/tasks/:id", handlers.AdminDeleteTask)
		admin.Post("/tasks/:id/run", handlers.AdminRunTask)
		admin.Post("/process-rewrites", handlers.AdminProcessRewrites)

		admin.Post("/categories", handlers.AdminCreateCategory)
		admin.Put("/categories/:id", handlers.AdminUpdateCategory)
		admin.Delete("/categories/:id", handlers.AdminDeleteCategory)
		admin.Post("/categories/:id/tags", handlers.AdminCreateTag)
		admin.Delete("/tags/:id", handlers.AdminDeleteTag)

		admin.Post("/media", handlers.AdminUploadMedia)
	}

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
