package accesslog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/go-github/v73/github"
)

// GistFile is the gist file records are appended to.
const GistFile = "access.log"

// GistSink appends records as JSON lines to a file in a GitHub gist. The
// gist is read and rewritten on every append, so it suits low traffic only.
type GistSink struct {
	client *github.Client
	gistID string
	mu     sync.Mutex
}

// NewGistSink appends to gistID using client, which must be authenticated
// as the gist owner.
func NewGistSink(client *github.Client, gistID string) *GistSink {
	return &GistSink{client: client, gistID: gistID}
}

func (g *GistSink) Append(ctx context.Context, r Record) error {
	line, err := r.Line()
	if err != nil {
		return fmt.Errorf("encoding access record: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	gist, _, err := g.client.Gists.Get(ctx, g.gistID)
	if err != nil {
		return fmt.Errorf("reading gist %s: %w", g.gistID, err)
	}

	var current string
	if f, ok := gist.Files[GistFile]; ok {
		current = f.GetContent()
	}
	if current != "" && !strings.HasSuffix(current, "\n") {
		current += "\n"
	}
	content := current + line + "\n"

	update := &github.Gist{
		Files: map[github.GistFilename]github.GistFile{
			GistFile: {Content: github.Ptr(content)},
		},
	}
	if _, _, err := g.client.Gists.Edit(ctx, g.gistID, update); err != nil {
		return fmt.Errorf("updating gist %s: %w", g.gistID, err)
	}
	return nil
}
