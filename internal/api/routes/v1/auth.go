package v1

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"studio-space-backend/internal/handlers"
)

// credentialLimiter throttles password attempts per client IP.
func credentialLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many attempts, please try again later",
			})
		},
	})
}

func registerAuth(r fiber.Router, h *handlers.Handlers) {
	g := r.Group("/auth")

	g.Post("/signup", credentialLimiter(), h.Auth.Signup)
	g.Post("/login", credentialLimiter(), h.Auth.Login)
	g.Post("/google", h.Auth.Google)
	g.Get("/google/url", h.Auth.GoogleURL)
	g.Post("/google/callback", h.Auth.GoogleCallback)

	g.Get("/me", h.Middleware.RequireAuth, h.Auth.Me)
	g.Post("/refresh", h.Middleware.RequireAuth, h.Auth.Refresh)
}
