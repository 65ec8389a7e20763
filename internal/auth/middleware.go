package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"studio-space-backend/internal/models"
)

const (
	localUser   = "user"
	localUserID = "userID"
)

type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Middleware struct {
	tokens *TokenManager
	users  UserLoader
}

func NewMiddleware(tokens *TokenManager, users UserLoader) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

func bearer(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func setUser(c *fiber.Ctx, user *models.User) {
	c.Locals(localUser, user)
	c.Locals(localUserID, user.ID.String())
}

// RequireAuth rejects requests without a valid bearer token for a user that
// still exists.
func (m *Middleware) RequireAuth(c *fiber.Ctx) error {
	raw := bearer(c)
	if raw == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Access token required"})
	}
	id, err := m.tokens.Parse(raw)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Invalid or expired token"})
	}
	user, err := m.users.GetByID(c.UserContext(), id)
	if err != nil || user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}
	setUser(c, user)
	return c.Next()
}

// OptionalAuth attaches the user when the token checks out and otherwise
// carries on anonymously.
func (m *Middleware) OptionalAuth(c *fiber.Ctx) error {
	if raw := bearer(c); raw != "" {
		if id, err := m.tokens.Parse(raw); err == nil {
			if user, err := m.users.GetByID(c.UserContext(), id); err == nil && user != nil {
				setUser(c, user)
			}
		}
	}
	return c.Next()
}

// CurrentUser is nil on anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

// CurrentUserID is uuid.Nil on anonymous requests.
func CurrentUserID(c *fiber.Ctx) uuid.UUID {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return uuid.Nil
}
