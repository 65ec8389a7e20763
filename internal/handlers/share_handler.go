package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"studio-space-backend/internal/auth"
	"studio-space-backend/internal/models"
	"studio-space-backend/internal/repo"
)

func newShareToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// snapshot builds the read-only view of a board handed to share-link and
// public share visitors.
func snapshot(ctx context.Context, boards repo.BoardRepoInterface, images repo.ImageRepoInterface, boardID uuid.UUID) (*models.SharedBoard, error) {
	summary, err := boards.Summary(ctx, boardID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	list, err := images.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	shared := &models.SharedBoard{
		ID:              summary.ID,
		Title:           summary.Title,
		Description:     summary.Description,
		BackgroundColor: summary.BackgroundColor,
		AuthorName:      summary.AuthorName,
		CreatedAt:       summary.CreatedAt,
		Images:          make([]models.SharedImage, 0, len(list)),
		Tags:            summary.Tags,
	}
	for _, img := range list {
		shared.Images = append(shared.Images, img.Shared())
	}
	return shared, nil
}

type shareLinkView struct {
	Token             string     `json:"token"`
	URL               string     `json:"url"`
	PasswordProtected bool       `json:"passwordProtected"`
	ExpiresAt         *time.Time `json:"expiresAt"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// ShareHandler manages password-gated client gallery links.
type ShareHandler struct {
	boards      repo.BoardRepoInterface
	images      repo.ImageRepoInterface
	links       repo.ShareLinkRepoInterface
	frontendURL string
	now         func() time.Time
}

func NewShareHandler(boards repo.BoardRepoInterface, images repo.ImageRepoInterface, links repo.ShareLinkRepoInterface, frontendURL string) *ShareHandler {
	return &ShareHandler{
		boards:      boards,
		images:      images,
		links:       links,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
}

func (h *ShareHandler) view(link *models.ShareLink) shareLinkView {
	return shareLinkView{
		Token:             link.Token,
		URL:               h.frontendURL + "/shared/" + link.Token,
		PasswordProtected: link.PasswordProtected(),
		ExpiresAt:         link.ExpiresAt,
		CreatedAt:         link.CreatedAt,
	}
}

func (h *ShareHandler) Create(c *fiber.Ctx) error {
	board, err := ownedBoard(c, h.boards)
	if err != nil {
		return err
	}
	var dto struct {
		Password       string `json:"password" validate:"omitempty,min=4,max=72"`
		ExpiresInHours int    `json:"expiresInHours" validate:"min=0,max=8760"`
	}
	if len(c.Body()) > 0 {
		if ok, err := bind(c, &dto); !ok {
			return err
		}
	}

	link := &models.ShareLink{
		Token:   newShareToken(),
		BoardID: board.ID,
	}
	if dto.Password != "" {
		hash, err := auth.HashPassword(dto.Password)
		if err != nil {
			return serverError(c, err, "Failed to create share link")
		}
		link.PasswordHash = &hash
	}
	if dto.ExpiresInHours > 0 {
		expires := h.now().UTC().Add(time.Duration(dto.ExpiresInHours) * time.Hour)
		link.ExpiresAt = &expires
	}

	if err := h.links.Create(c.UserContext(), link); err != nil {
		return serverError(c, err, "Failed to create share link")
	}
	return c.Status(fiber.StatusCreated).JSON(h.view(link))
}

func (h *ShareHandler) List(c *fiber.Ctx) error {
	board, err := ownedBoard(c, h.boards)
	if err != nil {
		return err
	}
	links, err := h.links.ListByBoard(c.UserContext(), board.ID)
	if err != nil {
		return serverError(c, err, "Failed to get share links")
	}
	views := make([]shareLinkView, 0, len(links))
	for i := range links {
		views = append(views, h.view(&links[i]))
	}
	return c.JSON(fiber.Map{"links": views})
}

func (h *ShareHandler) Delete(c *fiber.Ctx) error {
	ctx := c.UserContext()
	link, err := h.links.GetByToken(ctx, c.Params("token"))
	if errors.Is(err, repo.ErrNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Share link not found")
	}
	if err != nil {
		return serverError(c, err, "Failed to delete share link")
	}

	board, err := h.boards.GetByID(ctx, link.BoardID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return serverError(c, err, "Failed to delete share link")
	}
	if board == nil || board.UserID != auth.CurrentUserID(c) {
		return errorJSON(c, fiber.StatusForbidden, "Access denied")
	}

	if err := h.links.Delete(ctx, link.Token); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return serverError(c, err, "Failed to delete share link")
	}
	return c.JSON(fiber.Map{"message": "Share link deleted successfully"})
}

// open resolves a token to a usable link, writing the 404/410 response when
// it is not.
func (h *ShareHandler) open(c *fiber.Ctx) (*models.ShareLink, error) {
	link, err := h.links.GetByToken(c.UserContext(), c.Params("token"))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "This share link is invalid")
	}
	if err != nil {
		return nil, err
	}
	if link.Expired(h.now()) {
		return nil, fiber.NewError(fiber.StatusGone, "This share link has expired")
	}
	return link, nil
}

func (h *ShareHandler) render(c *fiber.Ctx, link *models.ShareLink) error {
	board, err := snapshot(c.UserContext(), h.boards, h.images, link.BoardID)
	if errors.Is(err, repo.ErrNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "This share link is invalid")
	}
	if err != nil {
		return serverError(c, err, "Failed to load shared board")
	}
	return c.JSON(fiber.Map{"board": board})
}

func (h *ShareHandler) View(c *fiber.Ctx) error {
	link, err := h.open(c)
	if err != nil {
		return err
	}
	if link.PasswordProtected() {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":            "Password required",
			"passwordRequired": true,
		})
	}
	return h.render(c, link)
}

func (h *ShareHandler) Unlock(c *fiber.Ctx) error {
	link, err := h.open(c)
	if err != nil {
		return err
	}
	var dto struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if link.PasswordProtected() && !auth.CheckPassword(*link.PasswordHash, dto.Password) {
		return errorJSON(c, fiber.StatusUnauthorized, "Incorrect password")
	}
	return h.render(c, link)
}
