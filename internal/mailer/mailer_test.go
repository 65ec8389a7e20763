package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio-space-backend/internal/models"
)

type sent struct {
	to, subject, body string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recordingSender) Send(_ context.Context, to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{to, subject, body})
	return nil
}

func user(notify, newsletter bool) *models.User {
	return &models.User{
		ID:          uuid.New(),
		Name:        "Ada",
		Email:       "ada@example.com",
		Preferences: models.Preferences{EmailNotifications: notify, Newsletter: newsletter},
	}
}

func TestNewSender(t *testing.T) {
	s, err := NewSender("log", "", "from@example.com")
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)
	assert.NoError(t, s.Send(context.Background(), "a@b.c", "hi", "<p>hi</p>"))

	_, err = NewSender("resend", "", "")
	assert.Error(t, err)

	_, err = NewSender("pigeon", "", "")
	assert.Error(t, err)
}

func TestResendSender(t *testing.T) {
	var got resendPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewResendSender("key", "Studio <hi@example.com>")
	s.endpoint = srv.URL
	require.NoError(t, s.Send(context.Background(), "ada@example.com", "Hello", "<p>x</p>"))
	assert.Equal(t, []string{"ada@example.com"}, got.To)
	assert.Equal(t, "Hello", got.Subject)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer failing.Close()
	s.endpoint = failing.URL
	assert.Error(t, s.Send(context.Background(), "ada@example.com", "Hello", "<p>x</p>"))
}

func TestNotifierHonoursPreferences(t *testing.T) {
	rec := &recordingSender{}
	n := NewNotifier(rec, "http://app")
	board := &models.Board{ID: uuid.New(), Title: "Autumn <Mood>"}

	n.Welcome(user(false, false))
	n.BoardCreated(user(false, false), board)
	n.PrivacyChanged(user(false, false), true)
	n.Wait()
	require.Len(t, rec.sent, 1)
	assert.Equal(t, "Welcome to Studio Space!", rec.sent[0].subject)

	n.BoardCreated(user(true, false), board)
	n.PrivacyChanged(user(true, false), true)
	n.Wait()
	require.Len(t, rec.sent, 3)

	subjects := []string{rec.sent[1].subject, rec.sent[2].subject}
	assert.Contains(t, subjects, `Your moodboard "Autumn <Mood>" has been created!`)
	assert.Contains(t, subjects, "Your profile is now public")
	for _, s := range rec.sent[1:] {
		assert.NotContains(t, s.body, "<Mood>")
	}
}

func TestNewsletter(t *testing.T) {
	rec := &recordingSender{}
	n := NewNotifier(rec, "http://app")

	ok, err := n.Newsletter(context.Background(), user(true, false), nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = n.Newsletter(context.Background(), user(true, true), []string{"#minimal", "#retro"})
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, rec.sent, 1)
	assert.Contains(t, rec.sent[0].body, "#minimal, #retro")
	assert.Contains(t, rec.sent[0].body, "http://app/explore")
}
