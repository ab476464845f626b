// Package article resolves catalog entries to article body text.
//
// Bodies live in CSV files, one row per article, with the text in the
// 記事本文 column. GitHubSource reads those files through the GitHub contents
// API; LocalSource reads them from a checkout on disk.
package article

import (
	"context"
	"errors"

	"github.com/rubiojr/koho/pkg/catalog"
)

// BodyField is the CSV column holding the article text.
const BodyField = "記事本文"

// ErrResourceUnavailable is returned when the content lookup succeeds but
// carries neither a download URL nor inline content.
var ErrResourceUnavailable = errors.New("resource unavailable")

// Source fetches the body of an article. A missing row or column yields an
// empty body, not an error.
type Source interface {
	Fetch(ctx context.Context, entry catalog.Entry) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, entry catalog.Entry) (string, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, entry catalog.Entry) (string, error) {
	return f(ctx, entry)
}
