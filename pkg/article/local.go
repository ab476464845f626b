package article

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rubiojr/koho/pkg/catalog"
)

// LocalSource reads article CSV files from disk. Source locators are
// resolved against Dir, the directory the index was published from, so
// "../csv/a.csv" becomes <Dir>/../csv/a.csv.
type LocalSource struct {
	Dir string
}

// NewLocalSource returns a source rooted at dir.
func NewLocalSource(dir string) *LocalSource {
	return &LocalSource{Dir: dir}
}

// Fetch reads the CSV named by entry and extracts its body.
func (s *LocalSource) Fetch(ctx context.Context, entry catalog.Entry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.Dir, filepath.FromSlash(entry.Source))
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", entry.Source, err)
	}

	text, err := DecodeText(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", entry.Source, err)
	}
	return ExtractField(text, entry.Row, BodyField), nil
}
