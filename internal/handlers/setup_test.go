package handlers

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"studio-space-backend/internal/auth"
	"studio-space-backend/internal/cache"
	"studio-space-backend/internal/models"
)

const testUploadLimit = 4096

func TestMain(m *testing.M) {
	auth.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type testEnv struct {
	app    *fiber.App
	h      *Handlers
	w      *world
	tokens *auth.TokenManager
	events *fakeEvents
	notify *fakeNotify
	google *fakeGoogle
	blobs  *memStore
	agent  *fakeAgent
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	w := newWorld()
	e := &testEnv{
		w:      w,
		tokens: auth.NewTokenManager("test-secret", time.Hour),
		events: &fakeEvents{},
		notify: &fakeNotify{},
		google: &fakeGoogle{},
		blobs:  newMemStore(),
		agent:  &fakeAgent{},
	}

	users := &fakeUsers{w}
	boards := &fakeBoards{w}
	images := &fakeImages{w}
	tags := &fakeTags{w}
	links := &fakeLinks{w}
	janitor := NewBlobJanitor(images, e.blobs)
	explore := NewExploreCache(cache.NewMemory(), time.Minute)

	e.h = &Handlers{
		Middleware: auth.NewMiddleware(e.tokens, users),
		Auth:       NewAuthHandler(users, e.tokens, e.google, e.notify),
		Boards:     NewBoardHandler(boards, images, e.tokens, janitor, explore, e.events, e.notify),
		Tags:       NewTagHandler(boards, tags, explore, e.events),
		Images:     NewImageHandler(boards, images, e.blobs, janitor, e.events, testUploadLimit),
		Share:      NewShareHandler(boards, images, links, "https://studio.test/"),
		Users:      NewUserHandler(users, boards, images, janitor, explore, e.notify),
		Colors:     NewColorHandler(),
		Assistant:  NewAssistantHandler(boards, images, e.agent),
		Health:     NewHealthHandler(nil),
	}

	e.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	mount(e.app.Group("/api"), e.h)
	return e
}

// mount mirrors the production route table.
func mount(r fiber.Router, h *Handlers) {
	requireAuth := h.Middleware.RequireAuth
	optionalAuth := h.Middleware.OptionalAuth

	r.Get("/health", h.Health.Check)

	r.Post("/auth/signup", h.Auth.Signup)
	r.Post("/auth/login", h.Auth.Login)
	r.Post("/auth/google", h.Auth.Google)
	r.Get("/auth/google/url", h.Auth.GoogleURL)
	r.Post("/auth/google/callback", h.Auth.GoogleCallback)
	r.Get("/auth/me", requireAuth, h.Auth.Me)
	r.Post("/auth/refresh", requireAuth, h.Auth.Refresh)

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

	r.Post("/images/upload", requireAuth, h.Images.Upload)
	r.Post("/images/reorder", requireAuth, h.Images.Reorder)
	r.Put("/images/:id", requireAuth, h.Images.Update)
	r.Delete("/images/:id", requireAuth, h.Images.Delete)
	r.Post("/images/:id/duplicate", requireAuth, h.Images.Duplicate)

	r.Post("/boards/:id/share-links", requireAuth, h.Share.Create)
	r.Get("/boards/:id/share-links", requireAuth, h.Share.List)
	r.Delete("/share-links/:token", requireAuth, h.Share.Delete)
	r.Get("/shared/:token", h.Share.View)
	r.Post("/shared/:token/unlock", h.Share.Unlock)

	r.Get("/users/profile", requireAuth, h.Users.Profile)
	r.Put("/users/profile", requireAuth, h.Users.UpdateProfile)
	r.Put("/users/change-password", requireAuth, h.Users.ChangePassword)
	r.Put("/users/preferences", requireAuth, h.Users.UpdatePreferences)
	r.Delete("/users/account", requireAuth, h.Users.DeleteAccount)
	r.Get("/users/stats", requireAuth, h.Users.Stats)
	r.Get("/users/liked-boards", requireAuth, h.Users.LikedBoards)

	r.Post("/colors/analyze", h.Colors.Analyze)
	r.Get("/colors/harmonies", h.Colors.Harmonies)
}

// addUser stores a local account and returns it with a valid token. An empty
// password makes a Google-only account.
func (e *testEnv) addUser(t *testing.T, name, email, password string) (*models.User, string) {
	t.Helper()
	u := &models.User{
		ID:          uuid.New(),
		Name:        name,
		Email:       email,
		Provider:    models.ProviderLocal,
		Preferences: models.Preferences{EmailNotifications: true},
	}
	if password != "" {
		hash, err := auth.HashPassword(password)
		require.NoError(t, err)
		u.PasswordHash = &hash
	} else {
		u.Provider = models.ProviderGoogle
		u.ProviderID = strPtr("google-" + name)
	}
	e.w.users[u.ID] = u

	token, err := e.tokens.Issue(u.ID)
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) addBoard(owner uuid.UUID, title string, public bool) *models.Board {
	now := time.Now()
	b := &models.Board{
		ID:              uuid.New(),
		Title:           title,
		BackgroundColor: models.DefaultBackgroundColor,
		IsPublic:        public,
		UserID:          owner,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	e.w.boards[b.ID] = b
	return b
}

func (e *testEnv) addImage(boardID uuid.UUID, key string, z int, palette ...string) *models.Image {
	raw, _ := json.Marshal(palette)
	img := &models.Image{
		ID:         uuid.New(),
		URL:        "https://cdn.test/" + key,
		StorageKey: key,
		Width:      100,
		Height:     80,
		ZIndex:     z,
		Palette:    raw,
		BoardID:    boardID,
		CreatedAt:  time.Now(),
	}
	e.w.images[img.ID] = img
	e.blobs.objects[key] = []byte("blob")
	return img
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(t, req, token)
}

func (e *testEnv) send(t *testing.T, req *http.Request, token string) (*http.Response, []byte) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func decode(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// pngHeader is a PNG signature plus an IHDR chunk declaring w x h pixels
// with no image data behind it.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := append([]byte("IHDR"), make([]byte, 13)...)
	binary.BigEndian.PutUint32(chunk[4:], w)
	binary.BigEndian.PutUint32(chunk[8:], h)
	chunk[12] = 8

	_ = binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

// multipartRequest builds a form post; file is attached as "image" when set.
func multipartRequest(t *testing.T, path string, fields map[string]string, file []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		part, err := mw.CreateFormFile("image", "upload.png")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
