// Package document renders search results into a single Markdown document.
package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rubiojr/koho/pkg/article"
	"github.com/rubiojr/koho/pkg/catalog"
	"github.com/rubiojr/koho/pkg/log"
	"golang.org/x/sync/errgroup"
)

const (
	// FileName is the name of the exported document.
	FileName = "results.md"
	// MediaType is the content type of the exported document.
	MediaType = "text/markdown; charset=utf-8"
	// PlaceholderBody replaces bodies that failed to load under the
	// Placeholder policy.
	PlaceholderBody = "（本文を取得できませんでした）"
)

// FailurePolicy decides what happens when an article body cannot be fetched.
type FailurePolicy int

const (
	// Abort fails the whole document on the first fetch error.
	Abort FailurePolicy = iota
	// Placeholder renders the entry with PlaceholderBody and carries on.
	Placeholder
)

// Options tunes an Assembler.
type Options struct {
	// Concurrency is the number of bodies fetched at once. Values below 1
	// mean 1, i.e. one fetch after the other.
	Concurrency int
	OnError     FailurePolicy
}

// Assembler fetches article bodies and joins the rendered entries.
type Assembler struct {
	source      article.Source
	concurrency int
	onError     FailurePolicy
	logger      *log.Logger
}

// NewAssembler returns an assembler reading bodies from source.
func NewAssembler(source article.Source, opts Options) *Assembler {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Assembler{
		source:      source,
		concurrency: opts.Concurrency,
		onError:     opts.OnError,
		logger:      log.ForService("document"),
	}
}

// Render formats one entry and its body.
func Render(e catalog.Entry, body string) string {
	return fmt.Sprintf("# %s\n\n- 自治体: %s\n- 日付: %s\n- 号: %s\n- カテゴリ: %s\n\n%s",
		e.ArticleTitle, e.Municipality, e.Date, e.IssueTitle, e.Category, body)
}

// Assemble fetches the body of every entry and returns the rendered entries
// separated by blank lines, trimmed. The document follows the order of
// entries whatever the concurrency.
func (a *Assembler) Assemble(ctx context.Context, entries []catalog.Entry) (string, error) {
	a.logger.Debugf("building document for %d entries", len(entries))

	parts := make([]string, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a.logger.Debugf("processing entry %s", e.ID)

			body, err := a.source.Fetch(gctx, e)
			if err != nil {
				if a.onError == Abort || ctx.Err() != nil {
					return fmt.Errorf("fetching article %s: %w", e.ID, err)
				}
				a.logger.Warnf("fetching article %s: %v", e.ID, err)
				body = PlaceholderBody
			}
			parts[i] = Render(e, body)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p)
		b.WriteString("\n\n")
	}
	doc := strings.TrimSpace(b.String())
	a.logger.Debugf("document length %d", len(doc))
	return doc, nil
}

// WriteFile stores doc as FileName in dir and returns the path written.
func WriteFile(dir, doc string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
