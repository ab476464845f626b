package api

import (
	"context"
	"net/http"
	"slices"

	gh "github.com/google/go-github/v73/github"
	"github.com/rubiojr/koho/pkg/ghclient"
)

// Policy decides who may use the advanced search endpoint: explicitly
// allowed logins, and collaborators of Owner/Repo.
type Policy struct {
	Owner        string
	Repo         string
	AllowedUsers []string
}

// SetPolicy replaces the access policy. Requests in flight keep the policy
// they started with.
func (s *Server) SetPolicy(p Policy) {
	p.AllowedUsers = slices.Clone(p.AllowedUsers)
	s.policy.Store(&p)
}

func (s *Server) Policy() Policy {
	return *s.policy.Load()
}

// authorized reports whether login passes the current policy.
func (s *Server) authorized(ctx context.Context, login string) (bool, error) {
	p := s.Policy()
	if slices.Contains(p.AllowedUsers, login) {
		return true, nil
	}
	if p.Owner == "" || p.Repo == "" {
		return false, nil
	}

	client, err := s.githubClient(s.githubToken)
	if err != nil {
		return false, err
	}
	ok, _, err := client.Repositories.IsCollaborator(ctx, p.Owner, p.Repo, login)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// tokenOwner returns the login of the user token belongs to.
func (s *Server) tokenOwner(ctx context.Context, token string) (string, error) {
	client, err := s.githubClient(token)
	if err != nil {
		return "", err
	}
	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return "", err
	}
	return user.GetLogin(), nil
}

func (s *Server) githubClient(token string) (*gh.Client, error) {
	return ghclient.New(token, s.githubBaseURL, s.httpClient)
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		return ""
	}
	return auth[len(prefix):]
}
