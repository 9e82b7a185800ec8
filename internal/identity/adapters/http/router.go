// Package http содержит компоненты HTTP сервера командной стороны.
package http

import (
	"github.com/gofiber/fiber/v3"

	"useridentity/internal/identity/adapters/http/middleware"
	"useridentity/internal/identity/adapters/http/users"
	"useridentity/internal/identity/ports/api"
)

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, commands api.CommandHandler) {
	usersHandler := users.NewHandler(commands)

	// Middleware для всех запросов.
	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API версии 1.
	apiV1 := app.Group("/api/v1")

	userRoutes := apiV1.Group("/users")
	userRoutes.Post("/register", usersHandler.Register)
	userRoutes.Post("/authenticate", usersHandler.Authenticate)
	userRoutes.Put("/external", usersHandler.UpsertExternal)
	userRoutes.Post("/", usersHandler.Create)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})
}
