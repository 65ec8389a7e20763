package v1

import (
	"github.com/gofiber/fiber/v2"

	"studio-space-backend/internal/handlers"
)

func registerBoard(r fiber.Router, h *handlers.Handlers) {
	requireAuth := h.Middleware.RequireAuth
	optionalAuth := h.Middleware.OptionalAuth

	// Register routes
	r.Get("/boards", requireAuth, h.Boards.List)
	r.Post("/boards", requireAuth, h.Boards.Create)
	r.Get("/boards/explore", optionalAuth, h.Boards.Explore)
	r.Get("/boards/:id", optionalAuth, h.Boards.Get)
	r.Put("/boards/:id", requireAuth, h.Boards.Update)
	r.Delete("/boards/:id", requireAuth, h.Boards.Delete)
	r.Post("/boards/:id/like", requireAuth, h.Boards.Like)
	r.Get("/boards/:id/share", h.Boards.Shared)
	r.Post("/boards/:id/duplicate", requireAuth, h.Boards.Duplicate)
	r.Get("/boards/:id/palette", optionalAuth, h.Boards.Palette)
	r.Post("/boards/:id/suggestions", requireAuth, h.Assistant.Suggestions)

	r.Post("/boards/:id/tags", requireAuth, h.Tags.Add)
	r.Put("/boards/:id/tags", requireAuth, h.Tags.Replace)
	r.Delete("/boards/:id/tags/:name", requireAuth, h.Tags.Remove)
	r.Get("/tags/popular", h.Tags.Popular)
}
