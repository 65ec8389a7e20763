package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"studio-space-backend/internal/auth"
	"studio-space-backend/internal/logger"
	"studio-space-backend/internal/models"
	"studio-space-backend/internal/repo"
)

// GoogleAuth is implemented by auth.GoogleProvider.
type GoogleAuth interface {
	Verify(ctx context.Context, rawIDToken string) (*auth.GoogleIdentity, error)
	AuthURL(ctx context.Context) (string, string, error)
	Exchange(ctx context.Context, code, state string) (*auth.GoogleIdentity, error)
}

type AuthHandler struct {
	users  repo.UserRepoInterface
	tokens *auth.TokenManager
	google GoogleAuth
	notify Notifications
}

func NewAuthHandler(users repo.UserRepoInterface, tokens *auth.TokenManager, google GoogleAuth, notify Notifications) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, google: google, notify: notify}
}

func (h *AuthHandler) respondWithToken(c *fiber.Ctx, status int, message string, user *models.User) error {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		return serverError(c, err, "Failed to issue token")
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"user":    user,
		"token":   token,
	})
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var dto struct {
		Name      string `json:"name" validate:"required,notblank,min=2,max=255"`
		Email     string `json:"email" validate:"required,email"`
		Password  string `json:"password" validate:"required,min=6"`
		BirthDate string `json:"birthDate" validate:"required,datetime=2006-01-02"`
	}
	if ok, err := bind(c, &dto); !ok {
		return err
	}

	ctx := c.UserContext()
	if _, err := h.users.GetByEmail(ctx, dto.Email); err == nil {
		return errorJSON(c, fiber.StatusConflict, "User already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return serverError(c, err, "Failed to create user")
	}

	hash, err := auth.HashPassword(dto.Password)
	if err != nil {
		return serverError(c, err, "Failed to create user")
	}
	birth, _ := time.Parse("2006-01-02", dto.BirthDate)

	user := &models.User{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: &hash,
		BirthDate:    &birth,
		Provider:     models.ProviderLocal,
		Preferences:  models.Preferences{EmailNotifications: true},
	}
	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return errorJSON(c, fiber.StatusConflict, "User already exists")
		}
		return serverError(c, err, "Failed to create user")
	}

	h.notify.Welcome(user)
	return h.respondWithToken(c, fiber.StatusCreated, "User created successfully", user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var dto struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if ok, err := bind(c, &dto); !ok {
		return err
	}

	user, err := h.users.GetByEmail(c.UserContext(), dto.Email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return serverError(c, err, "Failed to log in")
	}
	if user == nil || !user.HasPassword() || !auth.CheckPassword(*user.PasswordHash, dto.Password) {
		return errorJSON(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	return h.respondWithToken(c, fiber.StatusOK, "Login successful", user)
}

func (h *AuthHandler) Google(c *fiber.Ctx) error {
	var dto struct {
		IDToken string `json:"idToken"`
	}
	if err := c.BodyParser(&dto); err != nil || dto.IDToken == "" {
		return errorJSON(c, fiber.StatusBadRequest, "ID token is required")
	}

	identity, err := h.google.Verify(c.UserContext(), dto.IDToken)
	if errors.Is(err, auth.ErrGoogleDisabled) {
		return errorJSON(c, fiber.StatusServiceUnavailable, "Google sign-in is not configured")
	}
	if err != nil {
		logger.FromCtx(c).WithError(err).Warn("google token rejected")
		return errorJSON(c, fiber.StatusUnauthorized, "Invalid Google token")
	}
	return h.googleLogin(c, identity)
}

func (h *AuthHandler) GoogleURL(c *fiber.Ctx) error {
	url, state, err := h.google.AuthURL(c.UserContext())
	if errors.Is(err, auth.ErrGoogleDisabled) {
		return errorJSON(c, fiber.StatusServiceUnavailable, "Google sign-in is not configured")
	}
	if err != nil {
		return serverError(c, err, "Failed to start Google sign-in")
	}
	return c.JSON(fiber.Map{"url": url, "state": state})
}

func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	var dto struct {
		Code  string `json:"code" validate:"required"`
		State string `json:"state" validate:"required"`
	}
	if ok, err := bind(c, &dto); !ok {
		return err
	}

	identity, err := h.google.Exchange(c.UserContext(), dto.Code, dto.State)
	switch {
	case errors.Is(err, auth.ErrGoogleDisabled):
		return errorJSON(c, fiber.StatusServiceUnavailable, "Google sign-in is not configured")
	case errors.Is(err, auth.ErrInvalidState):
		return errorJSON(c, fiber.StatusBadRequest, "Invalid or expired state")
	case err != nil:
		logger.FromCtx(c).WithError(err).Warn("google code exchange failed")
		return errorJSON(c, fiber.StatusUnauthorized, "Invalid Google token")
	}
	return h.googleLogin(c, identity)
}

// googleLogin finds the user by email, linking a local account on first
// Google sign-in, or creates a new Google account.
func (h *AuthHandler) googleLogin(c *fiber.Ctx, identity *auth.GoogleIdentity) error {
	ctx := c.UserContext()
	user, err := h.users.GetByEmail(ctx, identity.Email)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		user = &models.User{
			Name:          identity.Name,
			Email:         identity.Email,
			Provider:      models.ProviderGoogle,
			ProviderID:    &identity.Subject,
			EmailVerified: true,
			Preferences:   models.Preferences{EmailNotifications: true},
		}
		if identity.Name == "" {
			user.Name = identity.Email
		}
		if identity.Picture != "" {
			user.AvatarURL = &identity.Picture
		}
		if err := h.users.Create(ctx, user); err != nil {
			return serverError(c, err, "Failed to create user")
		}
		h.notify.Welcome(user)
		return h.respondWithToken(c, fiber.StatusOK, "Login successful", user)
	case err != nil:
		return serverError(c, err, "Failed to log in")
	}

	if user.ProviderID == nil {
		updates := map[string]any{
			"provider":       models.ProviderGoogle,
			"provider_id":    identity.Subject,
			"email_verified": true,
		}
		if user.AvatarURL == nil && identity.Picture != "" {
			updates["avatar_url"] = identity.Picture
		}
		if user, err = h.users.Update(ctx, user.ID, updates); err != nil {
			return serverError(c, err, "Failed to link Google account")
		}
	}
	return h.respondWithToken(c, fiber.StatusOK, "Login successful", user)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": auth.CurrentUser(c)})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token, err := h.tokens.Issue(auth.CurrentUserID(c))
	if err != nil {
		return serverError(c, err, "Failed to issue token")
	}
	return c.JSON(fiber.Map{"token": token})
}

