// Package websearch searches the crawl index: pages of municipal web sites
// with a title, a summary and keywords.
//
// Matching is simpler than the bulletin search. The query is lower-cased and
// split on whitespace, and a page matches when every word occurs in its
// lower-cased title, summary or keywords. There are no synonyms and no
// ordering directives; results keep index order.
package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rubiojr/koho/pkg/catalog"
	"github.com/rubiojr/koho/pkg/log"
)

// DefaultLimit caps the number of pages returned by Search.
const DefaultLimit = 20

// ErrMissingQuery is returned by ValidateQuery for blank queries.
var ErrMissingQuery = errors.New("invalid or missing query")

// Page is one crawled web page.
type Page struct {
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Summary   string   `json:"summary"`
	Keywords  []string `json:"keywords"`
	Timestamp string   `json:"timestamp,omitempty"`
}

func (p Page) text() string {
	return strings.ToLower(p.Title + " " + p.Summary + " " + strings.Join(p.Keywords, " "))
}

// Index is an immutable list of pages.
type Index struct {
	pages []Page
	// lower-cased search surfaces, same order as pages
	texts []string
}

// New builds an index from pages. The slice is copied.
func New(pages []Page) *Index {
	ix := &Index{
		pages: make([]Page, len(pages)),
		texts: make([]string, len(pages)),
	}
	copy(ix.pages, pages)
	for i, p := range ix.pages {
		ix.texts[i] = p.text()
	}
	return ix
}

// Len returns the number of pages. A nil index is empty.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.pages)
}

// Load reads a crawl index from a local file or an http(s) URL.
func Load(ctx context.Context, location string) (*Index, error) {
	logger := log.ForService("websearch")
	logger.Debugf("loading crawl index from %s", location)

	r, err := catalog.Open(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("opening crawl index %s: %w", location, err)
	}
	defer r.Close()

	ix, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("loading crawl index %s: %w", location, err)
	}
	logger.Infof("loaded %d pages", ix.Len())
	return ix, nil
}

// Decode reads a JSON array of pages.
func Decode(r io.Reader) (*Index, error) {
	var pages []Page
	if err := json.NewDecoder(r).Decode(&pages); err != nil {
		return nil, fmt.Errorf("decoding crawl index: %w", err)
	}
	return New(pages), nil
}

// ValidateQuery trims q and rejects blank queries.
func ValidateQuery(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", ErrMissingQuery
	}
	return q, nil
}

// Search returns up to limit pages matching every word of q, in index
// order. A limit of zero or less uses DefaultLimit. A query without words
// matches nothing.
func (ix *Index) Search(q string, limit int) []Page {
	if limit <= 0 {
		limit = DefaultLimit
	}
	words := strings.Fields(strings.ToLower(q))
	if len(words) == 0 || ix == nil {
		return []Page{}
	}

	results := []Page{}
	for i, text := range ix.texts {
		if containsAll(text, words) {
			results = append(results, ix.pages[i])
			if len(results) == limit {
				break
			}
		}
	}
	return results
}

func containsAll(text string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(text, w) {
			return false
		}
	}
	return true
}
