package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio-space-backend/internal/models"
)

func TestShareLinkLifecycle(t *testing.T) {
	e := newTestEnv(t)
	ada, adaToken := e.addUser(t, "Ada", "ada@example.com", "secret1")
	_, gusToken := e.addUser(t, "Gus", "gus@example.com", "secret1")
	board := e.addBoard(ada.ID, "Client gallery", false)
	e.addImage(board.ID, "k1", 0)
	e.w.tags[board.ID] = []string{"#wedding"}
	links := "/api/boards/" + board.ID.String() + "/share-links"

	resp, _ := e.do(t, http.MethodPost, links, map[string]any{"password": "hunter2"}, gusToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := e.do(t, http.MethodPost, links, map[string]any{"password": "hunter2", "expiresInHours": 48}, adaToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	created := decode(t, raw)
	token := created["token"].(string)
	assert.Equal(t, true, created["passwordProtected"])
	assert.Equal(t, "https://studio.test/shared/"+token, created["url"])
	assert.NotNil(t, created["expiresAt"])

	resp, raw = e.do(t, http.MethodGet, "/api/shared/"+token, nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	locked := decode(t, raw)
	assert.Equal(t, "Password required", locked["error"])
	assert.Equal(t, true, locked["passwordRequired"])

	resp, raw = e.do(t, http.MethodPost, "/api/shared/"+token+"/unlock", map[string]string{"password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Incorrect password", decode(t, raw)["error"])

	resp, raw = e.do(t, http.MethodPost, "/api/shared/"+token+"/unlock", map[string]string{"password": "hunter2"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	shared := decode(t, raw)["board"].(map[string]any)
	assert.Equal(t, "Client gallery", shared["title"])
	assert.Equal(t, []any{"#wedding"}, shared["tags"])
	assert.Len(t, shared["images"], 1)

	resp, raw = e.do(t, http.MethodGet, links, nil, adaToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode(t, raw)["links"], 1)

	resp, _ = e.do(t, http.MethodDelete, "/api/share-links/"+token, nil, gusToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, "/api/share-links/"+token, nil, adaToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = e.do(t, http.MethodGet, "/api/shared/"+token, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "This share link is invalid", decode(t, raw)["error"])
}

func TestShareLinkOpenAndExpired(t *testing.T) {
	e := newTestEnv(t)
	ada, adaToken := e.addUser(t, "Ada", "ada@example.com", "secret1")
	board := e.addBoard(ada.ID, "Private", false)

	resp, raw := e.do(t, http.MethodPost, "/api/boards/"+board.ID.String()+"/share-links", nil, adaToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	created := decode(t, raw)
	assert.Equal(t, false, created["passwordProtected"])
	assert.Nil(t, created["expiresAt"])

	resp, raw = e.do(t, http.MethodGet, "/api/shared/"+created["token"].(string), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Private", decode(t, raw)["board"].(map[string]any)["title"])

	past := time.Now().Add(-time.Hour)
	e.w.links["stale"] = &models.ShareLink{ID: uuid.New(), Token: "stale", BoardID: board.ID, ExpiresAt: &past}

	resp, raw = e.do(t, http.MethodGet, "/api/shared/stale", nil, "")
	assert.Equal(t, http.StatusGone, resp.StatusCode)
	assert.Equal(t, "This share link has expired", decode(t, raw)["error"])

	resp, _ = e.do(t, http.MethodPost, "/api/shared/stale/unlock", map[string]string{"password": "x"}, "")
	assert.Equal(t, http.StatusGone, resp.StatusCode)
}
