package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"studio-space-backend/internal/auth"
	"studio-space-backend/internal/repo"
)

type UserHandler struct {
	users   repo.UserRepoInterface
	boards  repo.BoardRepoInterface
	images  repo.ImageRepoInterface
	janitor *BlobJanitor
	explore *ExploreCache
	notify  Notifications
}

func NewUserHandler(
	users repo.UserRepoInterface,
	boards repo.BoardRepoInterface,
	images repo.ImageRepoInterface,
	janitor *BlobJanitor,
	explore *ExploreCache,
	notify Notifications,
) *UserHandler {
	return &UserHandler{
		users:   users,
		boards:  boards,
		images:  images,
		janitor: janitor,
		explore: explore,
		notify:  notify,
	}
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": auth.CurrentUser(c)})
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var dto struct {
		Name      *string `json:"name" validate:"omitempty,notblank,min=2,max=255"`
		Email     *string `json:"email" validate:"omitempty,email"`
		BirthDate *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	}
	if ok, err := bind(c, &dto); !ok {
		return err
	}

	user := auth.CurrentUser(c)
	ctx := c.UserContext()
	updates := map[string]any{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Email != nil {
		existing, err := h.users.GetByEmail(ctx, *dto.Email)
		if err == nil && existing.ID != user.ID {
			return errorJSON(c, fiber.StatusConflict, "Email already in use")
		}
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return serverError(c, err, "Failed to update profile")
		}
		updates["email"] = *dto.Email
	}
	if dto.BirthDate != nil {
		birth, _ := time.Parse("2006-01-02", *dto.BirthDate)
		updates["birth_date"] = birth
	}
	if len(updates) == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "No valid updates provided")
	}

	updated, err := h.users.Update(ctx, user.ID, updates)
	if errors.Is(err, repo.ErrDuplicate) {
		return errorJSON(c, fiber.StatusConflict, "Email already in use")
	}
	if err != nil {
		return serverError(c, err, "Failed to update profile")
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    updated,
	})
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var dto struct {
		CurrentPassword string `json:"currentPassword" validate:"required"`
		NewPassword     string `json:"newPassword" validate:"required,min=6"`
	}
	if ok, err := bind(c, &dto); !ok {
		return err
	}

	user := auth.CurrentUser(c)
	if !user.HasPassword() {
		return errorJSON(c, fiber.StatusBadRequest, "This account signs in with Google and has no password")
	}
	if !auth.CheckPassword(*user.PasswordHash, dto.CurrentPassword) {
		return errorJSON(c, fiber.StatusUnauthorized, "Current password is incorrect")
	}

	hash, err := auth.HashPassword(dto.NewPassword)
	if err != nil {
		return serverError(c, err, "Failed to change password")
	}
	if _, err := h.users.Update(c.UserContext(), user.ID, map[string]any{"password_hash": hash}); err != nil {
		return serverError(c, err, "Failed to change password")
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

func (h *UserHandler) UpdatePreferences(c *fiber.Ctx) error {
	var dto struct {
		EmailNotifications *bool `json:"emailNotifications"`
		Newsletter         *bool `json:"newsletter"`
		ProfilePublic      *bool `json:"profilePublic"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user := auth.CurrentUser(c)
	updates := map[string]any{}
	if dto.EmailNotifications != nil {
		updates["pref_email_notifications"] = *dto.EmailNotifications
	}
	if dto.Newsletter != nil {
		updates["pref_newsletter"] = *dto.Newsletter
	}
	if dto.ProfilePublic != nil {
		updates["pref_profile_public"] = *dto.ProfilePublic
	}
	if len(updates) == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "No valid updates provided")
	}

	updated, err := h.users.Update(c.UserContext(), user.ID, updates)
	if err != nil {
		return serverError(c, err, "Failed to update preferences")
	}
	if dto.ProfilePublic != nil && *dto.ProfilePublic != user.Preferences.ProfilePublic {
		h.notify.PrivacyChanged(updated, *dto.ProfilePublic)
	}
	return c.JSON(fiber.Map{
		"message":     "Preferences updated successfully",
		"preferences": updated.Preferences,
	})
}

func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	userID := auth.CurrentUserID(c)
	ctx := c.UserContext()

	keys, err := h.images.KeysForUser(ctx, userID)
	if err != nil {
		return serverError(c, err, "Failed to delete account")
	}
	if err := h.users.Delete(ctx, userID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return serverError(c, err, "Failed to delete account")
	}
	h.janitor.Sweep(ctx, keys)
	h.explore.Invalidate(ctx)

	return c.JSON(fiber.Map{"message": "Account deleted successfully"})
}

func (h *UserHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.users.Stats(c.UserContext(), auth.CurrentUserID(c))
	if err != nil {
		return serverError(c, err, "Failed to get stats")
	}
	return c.JSON(fiber.Map{"stats": stats})
}

func (h *UserHandler) LikedBoards(c *fiber.Ctx) error {
	boards, err := h.boards.LikedBy(c.UserContext(), auth.CurrentUserID(c))
	if err != nil {
		return serverError(c, err, "Failed to get liked boards")
	}
	return c.JSON(fiber.Map{"boards": boards})
}
