// Package ghclient builds the GitHub API clients shared by the article
// fetcher, the API server and the gist access log.
package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v73/github"
	"github.com/rubiojr/koho/pkg/version"
	"golang.org/x/oauth2"
)

// HTTPClient returns base, or an oauth2 client on top of it when token is
// set. A nil base means http.DefaultClient.
func HTTPClient(token string, base *http.Client) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	if token == "" {
		return base
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return oauth2.NewClient(ctx, ts)
}

// New returns a go-github client authenticated with token (anonymous when
// empty). baseURL overrides https://api.github.com/ when set.
func New(token, baseURL string, base *http.Client) (*github.Client, error) {
	client := github.NewClient(HTTPClient(token, base))
	client.UserAgent = version.UserAgent()
	if baseURL == "" {
		return client, nil
	}

	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	client.BaseURL = u
	return client, nil
}
