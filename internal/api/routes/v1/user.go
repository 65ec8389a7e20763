package v1

import (
	"github.com/gofiber/fiber/v2"

	"studio-space-backend/internal/handlers"
)

func registerUser(r fiber.Router, h *handlers.Handlers) {
	g := r.Group("/users", h.Middleware.RequireAuth)

	g.Get("/profile", h.Users.Profile)
	g.Put("/profile", h.Users.UpdateProfile)
	g.Put("/change-password", h.Users.ChangePassword)
	g.Put("/preferences", h.Users.UpdatePreferences)
	g.Delete("/account", h.Users.DeleteAccount)
	g.Get("/stats", h.Users.Stats)
	g.Get("/liked-boards", h.Users.LikedBoards)
}
