package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"studio-space-backend/internal/cache"
)

const stateTTL = 5 * time.Minute

var (
	ErrGoogleDisabled = errors.New("google sign-in is not configured")
	ErrInvalidState   = errors.New("invalid or expired oauth state")
)

// GoogleIdentity is what a verified Google ID token tells us about a user.
type GoogleIdentity struct {
	Subject       string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

type GoogleProvider struct {
	clientID string
	oauth    *oauth2.Config
	states   cache.Cache
	validate validateFunc
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string, states cache.Cache) *GoogleProvider {
	return &GoogleProvider{
		clientID: clientID,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		states:   states,
		validate: idtoken.Validate,
	}
}

func (g *GoogleProvider) enabled() bool {
	return g != nil && g.clientID != ""
}

// Verify checks an ID token against our client id.
func (g *GoogleProvider) Verify(ctx context.Context, rawIDToken string) (*GoogleIdentity, error) {
	if !g.enabled() {
		return nil, ErrGoogleDisabled
	}
	payload, err := g.validate(ctx, rawIDToken, g.clientID)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	str := func(key string) string {
		v, _ := payload.Claims[key].(string)
		return v
	}
	verified, _ := payload.Claims["email_verified"].(bool)

	id := &GoogleIdentity{
		Subject:       payload.Subject,
		Email:         str("email"),
		Name:          str("name"),
		Picture:       str("picture"),
		EmailVerified: verified,
	}
	if id.Email == "" {
		return nil, errors.New("verify id token: no email claim")
	}
	return id, nil
}

// AuthURL starts the authorization code flow. The state is remembered for
// five minutes.
func (g *GoogleProvider) AuthURL(ctx context.Context) (string, string, error) {
	if !g.enabled() {
		return "", "", ErrGoogleDisabled
	}
	state := uuid.NewString()
	if err := g.states.Set(ctx, stateKey(state), "1", stateTTL); err != nil {
		return "", "", fmt.Errorf("store oauth state: %w", err)
	}
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), state, nil
}

// Exchange consumes state, trades code for tokens and verifies the returned
// ID token.
func (g *GoogleProvider) Exchange(ctx context.Context, code, state string) (*GoogleIdentity, error) {
	if !g.enabled() {
		return nil, ErrGoogleDisabled
	}
	_, ok, err := g.states.Pull(ctx, stateKey(state))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}

	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return nil, errors.New("exchange code: no id_token in response")
	}
	return g.Verify(ctx, raw)
}

func stateKey(state string) string {
	return "oauth:state:" + state
}
