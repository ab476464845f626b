// Package advsearch is a client for the login-gated advanced search endpoint
// served by koho serve.
package advsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rubiojr/koho/pkg/auth"
	"github.com/rubiojr/koho/pkg/log"
	"github.com/rubiojr/koho/pkg/version"
)

// ErrNotLoggedIn is returned when no access token is stored.
var ErrNotLoggedIn = errors.New("not logged in")

// ErrStateMismatch is returned by Exchange when the callback state does not
// match the one saved at login. No request is made in that case.
var ErrStateMismatch = errors.New("login state mismatch")

type Client struct {
	baseURL    string
	session    *auth.Session
	httpClient *http.Client
	logger     *log.Logger
}

// New creates a client for the server at baseURL. httpClient may be nil.
func New(baseURL string, session *auth.Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		session:    session,
		httpClient: httpClient,
		logger:     log.ForService("advsearch"),
	}
}

// Exchange trades an OAuth code for an access token through the server and
// stores it in the session.
func (c *Client) Exchange(ctx context.Context, code, state string) error {
	ok, err := c.session.VerifyState(state)
	if err != nil {
		return err
	}
	if !ok {
		c.logger.Warnf("ignoring callback with unexpected state")
		return ErrStateMismatch
	}

	endpoint := c.baseURL + "/api/exchange_token?code=" + url.QueryEscape(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating exchange request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("exchanging code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("exchanging code", resp)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding exchange response: %w", err)
	}
	if body.Token == "" {
		return errors.New("exchange response carried no token")
	}
	return c.session.SetToken(body.Token)
}

// CheckAccess reports whether the logged in user may use advanced search.
func (c *Client) CheckAccess(ctx context.Context) (bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/advsearch?check=1", nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("checking access: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Debugf("access check returned %d", resp.StatusCode)
	return resp.StatusCode == http.StatusNoContent, nil
}

// Search runs q on the server and returns the assembled Markdown document.
func (c *Client) Search(ctx context.Context, q string) (string, error) {
	payload, err := json.Marshal(map[string]string{"q": q})
	if err != nil {
		return "", fmt.Errorf("encoding query: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/advsearch?format=markdown", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("advanced search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", statusError("advanced search", resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading search response: %w", err)
	}
	return string(data), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	token, err := c.session.Token()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNotLoggedIn
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", version.UserAgent())
	return req, nil
}

// StatusError is returned when the server answers with an unexpected status.
type StatusError struct {
	Op      string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: server returned %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.Code, e.Message)
}

func statusError(op string, resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &body) != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
	}
	return &StatusError{Op: op, Code: resp.StatusCode, Message: body.Error}
}
