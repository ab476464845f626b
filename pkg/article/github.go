package article

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v73/github"
	"github.com/rubiojr/koho/pkg/catalog"
	"github.com/rubiojr/koho/pkg/ghclient"
	"github.com/rubiojr/koho/pkg/log"
)

// Defaults for the repository holding the article CSV files.
const (
	DefaultOwner = "Mitsuo-Koikawa"
	DefaultRepo  = "Municipal-Bulletin"
	DefaultRef   = "main"
)

// GitHubConfig configures a GitHubSource.
type GitHubConfig struct {
	Owner string
	Repo  string
	Ref   string
	// Token is optional. Anonymous requests are rate limited by GitHub.
	Token string
	// BaseURL overrides the API endpoint (tests, GitHub Enterprise).
	BaseURL string
	// HTTPClient is the underlying transport. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// GitHubSource fetches article CSV files through the GitHub contents API.
type GitHubSource struct {
	client     *github.Client
	httpClient *http.Client
	owner      string
	repo       string
	ref        string
	logger     *log.Logger
}

// NewGitHubSource creates a source for cfg, filling in defaults.
func NewGitHubSource(cfg GitHubConfig) (*GitHubSource, error) {
	if cfg.Owner == "" {
		cfg.Owner = DefaultOwner
	}
	if cfg.Repo == "" {
		cfg.Repo = DefaultRepo
	}
	if cfg.Ref == "" {
		cfg.Ref = DefaultRef
	}

	httpClient := ghclient.HTTPClient(cfg.Token, cfg.HTTPClient)
	client, err := ghclient.New(cfg.Token, cfg.BaseURL, cfg.HTTPClient)
	if err != nil {
		return nil, err
	}

	return &GitHubSource{
		client:     client,
		httpClient: httpClient,
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		ref:        cfg.Ref,
		logger:     log.ForService("fetch"),
	}, nil
}

// ContentsPath returns the contents API path for a catalog source locator:
// one leading "../" is dropped and each path segment is escaped.
func ContentsPath(owner, repo, ref, source string) string {
	clean := strings.TrimPrefix(source, "../")
	segments := strings.Split(clean, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("repos/%s/%s/contents/%s?ref=%s",
		owner, repo, strings.Join(segments, "/"), url.QueryEscape(ref))
}

// Fetch resolves entry to its article body.
func (s *GitHubSource) Fetch(ctx context.Context, entry catalog.Entry) (string, error) {
	s.logger.Debugf("fetching article from %s row %d", entry.Source, entry.Row)

	text, err := s.fetchText(ctx, entry.Source)
	if err != nil {
		return "", err
	}

	body := ExtractField(text, entry.Row, BodyField)
	s.logger.Debugf("fetched article length %d", len(body))
	return body, nil
}

func (s *GitHubSource) fetchText(ctx context.Context, source string) (string, error) {
	req, err := s.client.NewRequest(http.MethodGet, ContentsPath(s.owner, s.repo, s.ref, source), nil)
	if err != nil {
		return "", fmt.Errorf("building contents request for %s: %w", source, err)
	}

	var content github.RepositoryContent
	if _, err := s.client.Do(ctx, req, &content); err != nil {
		return "", fmt.Errorf("looking up %s: %w", source, err)
	}

	var data []byte
	switch {
	case content.GetDownloadURL() != "":
		data, err = s.download(ctx, content.GetDownloadURL())
		if err != nil {
			return "", fmt.Errorf("downloading %s: %w", source, err)
		}
	case content.Content != nil && *content.Content != "":
		raw := strings.ReplaceAll(*content.Content, "\n", "")
		data, err = base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return "", fmt.Errorf("decoding inline content of %s: %w", source, err)
		}
	default:
		return "", fmt.Errorf("%s: %w", source, ErrResourceUnavailable)
	}

	return DecodeText(data)
}

func (s *GitHubSource) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
