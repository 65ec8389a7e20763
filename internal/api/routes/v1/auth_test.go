package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio-space-backend/internal/auth"
	"studio-space-backend/internal/handlers"
	"studio-space-backend/internal/models"
	"studio-space-backend/internal/repo"
)

// noUsers knows nobody, so every login fails with 401.
type noUsers struct{}

func (noUsers) Create(context.Context, *models.User) error { return nil }
func (noUsers) GetByID(context.Context, uuid.UUID) (*models.User, error) {
	return nil, repo.ErrNotFound
}
func (noUsers) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, repo.ErrNotFound
}
func (noUsers) Update(context.Context, uuid.UUID, map[string]any) (*models.User, error) {
	return nil, repo.ErrNotFound
}
func (noUsers) Delete(context.Context, uuid.UUID) error { return repo.ErrNotFound }
func (noUsers) Stats(context.Context, uuid.UUID) (*models.UserStats, error) {
	return &models.UserStats{}, nil
}
func (noUsers) NewsletterSubscribers(context.Context) ([]models.User, error) { return nil, nil }

type noLinks struct{}

func (noLinks) Create(context.Context, *models.ShareLink) error { return nil }
func (noLinks) GetByToken(context.Context, string) (*models.ShareLink, error) {
	return nil, repo.ErrNotFound
}
func (noLinks) ListByBoard(context.Context, uuid.UUID) ([]models.ShareLink, error) {
	return nil, nil
}
func (noLinks) Delete(context.Context, string) error { return repo.ErrNotFound }

func newLimitedApp() *fiber.App {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	users := noUsers{}
	h := &handlers.Handlers{
		Middleware: auth.NewMiddleware(tokens, users),
		Auth:       handlers.NewAuthHandler(users, tokens, nil, nil),
		Share:      handlers.NewShareHandler(nil, nil, noLinks{}, "https://studio.test"),
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	api := app.Group("/api")
	registerAuth(api, h)
	registerShare(api, h)
	return app
}

func post(t *testing.T, app *fiber.App, path string, body any) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return resp.StatusCode, out
}

func TestCredentialRoutesAreRateLimited(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"login", "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "wrong"}, http.StatusUnauthorized},
		{"signup", "/api/auth/signup", map[string]string{}, http.StatusBadRequest},
		{"share unlock", "/api/shared/abc/unlock", map[string]string{"password": "guess"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newLimitedApp()
			for i := 0; i < 10; i++ {
				status, _ := post(t, app, tt.path, tt.body)
				require.Equal(t, tt.status, status, "attempt %d", i+1)
			}

			status, body := post(t, app, tt.path, tt.body)
			assert.Equal(t, http.StatusTooManyRequests, status)
			assert.Equal(t, "Too many attempts, please try again later", body["error"])
		})
	}
}

func TestLimitersAreIndependent(t *testing.T) {
	app := newLimitedApp()
	login := map[string]string{"email": "ada@example.com", "password": "wrong"}
	for i := 0; i < 11; i++ {
		post(t, app, "/api/auth/login", login)
	}

	status, _ := post(t, app, "/api/auth/login", login)
	assert.Equal(t, http.StatusTooManyRequests, status)

	status, _ = post(t, app, "/api/shared/abc/unlock", map[string]string{"password": "guess"})
	assert.Equal(t, http.StatusNotFound, status)
}
