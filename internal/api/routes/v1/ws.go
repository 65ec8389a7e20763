package v1

import (
	"github.com/gofiber/fiber/v2"

	"studio-space-backend/internal/handlers"
	"studio-space-backend/internal/libraries"
)

// registerWebSocket mounts the live board feed; the token is read from the
// query string.
func registerWebSocket(r fiber.Router, h *handlers.Handlers, hub *libraries.Hub) {
	r.Get("/ws/boards/:id", libraries.WebSocketGuard(h.Boards), libraries.WebSocketHandler(hub))
}
