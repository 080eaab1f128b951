package engine

import "github.com/gofiber/fiber/v2"

func RegisterContentRoutes(app *fiber.App, h *Handler, middleware ...fiber.Handler) {
	api := app.Group("/api", middleware...)

	api.Get("/:collection/:ref", h.GetRecord)
	api.Get("/:collection/:ref/related", h.Related)
}
