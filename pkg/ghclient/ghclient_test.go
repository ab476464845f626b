package ghclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientWithoutToken(t *testing.T) {
	assert.Same(t, http.DefaultClient, HTTPClient("", nil))

	base := &http.Client{}
	assert.Same(t, base, HTTPClient("", base))
}

func TestNewSendsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "Bearer gho_abc", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"login":"octocat"}`))
	}))
	defer server.Close()

	client, err := New("gho_abc", server.URL, nil)
	require.NoError(t, err)

	user, _, err := client.Users.Get(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "octocat", user.GetLogin())
}

func TestNewDefaultBaseURL(t *testing.T) {
	client, err := New("", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.github.com/", client.BaseURL.String())
}
