package article

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rubiojr/koho/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentsPath(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "parent marker stripped",
			source: "../csv/a.csv",
			want:   "repos/o/r/contents/csv/a.csv?ref=main",
		},
		{
			name:   "only one parent marker stripped",
			source: "../../csv/a.csv",
			want:   "repos/o/r/contents/../csv/a.csv?ref=main",
		},
		{
			name:   "segments escaped",
			source: "../csv/北町 広報.csv",
			want:   "repos/o/r/contents/csv/%E5%8C%97%E7%94%BA%20%E5%BA%83%E5%A0%B1.csv?ref=main",
		},
		{
			name:   "no marker",
			source: "csv/b.csv",
			want:   "repos/o/r/contents/csv/b.csv?ref=main",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentsPath("o", "r", "main", tt.source))
		})
	}
}

// contentsServer fakes the GitHub contents API. Responses are keyed by the
// decoded request path.
func contentsServer(t *testing.T, responses map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ref"); got != "main" {
			t.Errorf("expected ref=main, got %q", got)
		}
		resp, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/raw/a.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(append([]byte{0xEF, 0xBB, 0xBF}, []byte(sampleCSV)...))
	})
	mux.HandleFunc("/raw/broken.csv", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestSource(t *testing.T, srv *httptest.Server, token string) *GitHubSource {
	t.Helper()
	src, err := NewGitHubSource(GitHubConfig{
		Owner:   "o",
		Repo:    "r",
		Token:   token,
		BaseURL: srv.URL,
	})
	require.NoError(t, err)
	return src
}

func wrapBase64(s string) string {
	enc := base64.StdEncoding.EncodeToString([]byte(s))
	var b strings.Builder
	for len(enc) > 60 {
		b.WriteString(enc[:60])
		b.WriteString("\n")
		enc = enc[60:]
	}
	b.WriteString(enc)
	b.WriteString("\n")
	return b.String()
}

func TestGitHubSourceDownloadURL(t *testing.T) {
	var srv *httptest.Server
	responses := map[string]any{}
	srv = contentsServer(t, responses)
	responses["/repos/o/r/contents/csv/a.csv"] = map[string]any{
		"name":         "a.csv",
		"download_url": srv.URL + "/raw/a.csv",
	}

	src := newTestSource(t, srv, "")
	body, err := src.Fetch(context.Background(), catalog.Entry{Source: "../csv/a.csv", Row: 2})
	require.NoError(t, err)
	assert.Equal(t, "移住者向けの補助金", body)
}

func TestGitHubSourceInlineContent(t *testing.T) {
	srv := contentsServer(t, map[string]any{
		"/repos/o/r/contents/csv/inline.csv": map[string]any{
			"name":     "inline.csv",
			"encoding": "base64",
			"content":  wrapBase64(sampleCSV),
		},
	})

	src := newTestSource(t, srv, "")
	body, err := src.Fetch(context.Background(), catalog.Entry{Source: "../csv/inline.csv", Row: 1})
	require.NoError(t, err)
	assert.Equal(t, "空き家の相談窓口を開設します。\n詳しくはお問い合わせください。", body)
}

func TestGitHubSourceMissingRowIsEmpty(t *testing.T) {
	srv := contentsServer(t, map[string]any{
		"/repos/o/r/contents/csv/inline.csv": map[string]any{
			"content": wrapBase64(sampleCSV),
		},
	})

	src := newTestSource(t, srv, "")
	body, err := src.Fetch(context.Background(), catalog.Entry{Source: "../csv/inline.csv", Row: 40})
	require.NoError(t, err)
	assert.Equal(t, "", body)
}

func TestGitHubSourceResourceUnavailable(t *testing.T) {
	srv := contentsServer(t, map[string]any{
		"/repos/o/r/contents/csv/empty.csv": map[string]any{
			"name": "empty.csv",
		},
	})

	src := newTestSource(t, srv, "")
	_, err := src.Fetch(context.Background(), catalog.Entry{Source: "../csv/empty.csv", Row: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResourceUnavailable))
	assert.Contains(t, err.Error(), "../csv/empty.csv")
}

func TestGitHubSourceLookupFailure(t *testing.T) {
	srv := contentsServer(t, map[string]any{})

	src := newTestSource(t, srv, "")
	_, err := src.Fetch(context.Background(), catalog.Entry{Source: "../csv/missing.csv", Row: 1})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrResourceUnavailable))
}

func TestGitHubSourceDownloadFailure(t *testing.T) {
	var srv *httptest.Server
	responses := map[string]any{}
	srv = contentsServer(t, responses)
	responses["/repos/o/r/contents/csv/broken.csv"] = map[string]any{
		"download_url": srv.URL + "/raw/broken.csv",
	}

	src := newTestSource(t, srv, "")
	_, err := src.Fetch(context.Background(), catalog.Entry{Source: "../csv/broken.csv", Row: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestGitHubSourceSendsToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"content": wrapBase64("記事本文\nok\n")})
	}))
	defer srv.Close()

	src := newTestSource(t, srv, "secret-token")
	body, err := src.Fetch(context.Background(), catalog.Entry{Source: "x.csv", Row: 1})
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, "Bearer secret-token", auth)
}

func TestGitHubSourceDefaults(t *testing.T) {
	src, err := NewGitHubSource(GitHubConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultOwner, src.owner)
	assert.Equal(t, DefaultRepo, src.repo)
	assert.Equal(t, DefaultRef, src.ref)
	assert.Equal(t, "https://api.github.com/", src.client.BaseURL.String())
}
