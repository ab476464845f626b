// Package catalog holds the static index of bulletin articles.
//
// The catalog is loaded once at startup and shared read-only by the search
// service, the CLI and the API server.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rubiojr/koho/pkg/log"
	"github.com/rubiojr/koho/pkg/version"
)

// Entry is one article record of the index.
type Entry struct {
	ID           string   `json:"id"`
	ArticleTitle string   `json:"article_title"`
	Municipality string   `json:"municipality"`
	Date         string   `json:"date"`
	IssueTitle   string   `json:"issue_title"`
	Category     string   `json:"category"`
	Summary      string   `json:"summary"`
	Tags         []string `json:"tags"`
	// Source is the path of the CSV file holding the article body,
	// relative to the published index (e.g. "../csv/town.csv").
	Source string `json:"source"`
	// Row is the 1-based position of the article among the CSV data rows.
	Row int `json:"row"`
}

// Catalog is an immutable, ordered list of entries.
type Catalog struct {
	entries []Entry
}

// New builds a catalog from entries. The slice is copied.
func New(entries []Entry) *Catalog {
	c := &Catalog{entries: make([]Entry, len(entries))}
	copy(c.entries, entries)
	return c
}

// Entries returns the entries in index order. Callers must not modify the
// returned slice.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	return c.entries
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Load reads the index from a local file or, when location is an http(s)
// URL, with a GET request.
func Load(ctx context.Context, location string) (*Catalog, error) {
	logger := log.ForService("catalog")
	logger.Debugf("loading index from %s", location)

	r, err := Open(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", location, err)
	}
	defer r.Close()

	c, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("loading index %s: %w", location, err)
	}

	logger.Infof("loaded %d entries", c.Len())
	return c, nil
}

// Decode reads a JSON array of entries.
func Decode(r io.Reader) (*Catalog, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}
	return &Catalog{entries: entries}, nil
}

// Open returns a reader for a local file or, when location is an http(s)
// URL, for the body of a GET request.
func Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if isURL(location) {
		return open(ctx, location)
	}
	return os.Open(location)
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}
