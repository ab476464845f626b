// Package auth holds the client side of the GitHub OAuth login: the state
// parameter of a pending login and the access token obtained afterwards.
package auth

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	StateKey = "oauth_state"
	TokenKey = "gh_token"
)

// Scope is the only scope requested: the server needs to know who the user
// is, nothing else.
const Scope = "read:user"

// Session reads and writes login state through a Store.
type Session struct {
	store Store
	oauth *oauth2.Config
}

// NewSession creates a session for the OAuth app clientID. redirectURL is
// where GitHub sends the user back after authorizing.
func NewSession(store Store, clientID, redirectURL string) *Session {
	return &Session{
		store: store,
		oauth: &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURL,
			Scopes:      []string{Scope},
			Endpoint:    github.Endpoint,
		},
	}
}

// BeginLogin stores a fresh random state and returns the GitHub authorize
// URL carrying it.
func (s *Session) BeginLogin() (string, error) {
	state := uuid.NewString()
	if err := s.store.Set(StateKey, state); err != nil {
		return "", fmt.Errorf("saving login state: %w", err)
	}
	return s.oauth.AuthCodeURL(state), nil
}

// VerifyState reports whether state is the one saved by BeginLogin.
func (s *Session) VerifyState(state string) (bool, error) {
	saved, err := s.store.Get(StateKey)
	if err != nil {
		return false, fmt.Errorf("reading login state: %w", err)
	}
	return saved != "" && state == saved, nil
}

// SetToken stores the access token and forgets the login state.
func (s *Session) SetToken(token string) error {
	if err := s.store.Set(TokenKey, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	if err := s.store.Clear(StateKey); err != nil {
		return fmt.Errorf("clearing login state: %w", err)
	}
	return nil
}

// Token returns the stored access token, or "" when not logged in.
func (s *Session) Token() (string, error) {
	token, err := s.store.Get(TokenKey)
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return token, nil
}

func (s *Session) Logout() error {
	if err := s.store.Clear(TokenKey); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	return s.store.Clear(StateKey)
}
