package v1

import (
	"github.com/gofiber/fiber/v2"

	"studio-space-backend/internal/handlers"
)

func registerShare(r fiber.Router, h *handlers.Handlers) {
	requireAuth := h.Middleware.RequireAuth

	r.Post("/boards/:id/share-links", requireAuth, h.Share.Create)
	r.Get("/boards/:id/share-links", requireAuth, h.Share.List)
	r.Delete("/share-links/:token", requireAuth, h.Share.Delete)

	r.Get("/shared/:token", h.Share.View)
	r.Post("/shared/:token/unlock", credentialLimiter(), h.Share.Unlock)
}
