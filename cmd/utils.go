package cmd

import (
	"context"
	"fmt"

	"github.com/rubiojr/koho/pkg/article"
	"github.com/rubiojr/koho/pkg/auth"
	"github.com/rubiojr/koho/pkg/catalog"
	"github.com/rubiojr/koho/pkg/config"
	"github.com/rubiojr/koho/pkg/document"
	"github.com/rubiojr/koho/pkg/log"
	"github.com/rubiojr/koho/pkg/search"
	"github.com/rubiojr/koho/pkg/websearch"
)

// newArticleSource returns the configured article source: a local CSV
// checkout when articles_dir is set, the GitHub contents API otherwise.
func newArticleSource(cfg *config.Config) (article.Source, error) {
	if cfg.ArticlesDir != "" {
		return article.NewLocalSource(cfg.ArticlesDir), nil
	}
	return article.NewGitHubSource(article.GitHubConfig{
		Owner: cfg.GitHub.Owner,
		Repo:  cfg.GitHub.Repo,
		Ref:   cfg.GitHub.Ref,
		Token: cfg.GitHub.Token,
	})
}

// newSearchService loads the catalog and wires the search service with an
// assembler built from cfg.
func newSearchService(ctx context.Context, cfg *config.Config, opts document.Options) (*search.Service, error) {
	cat, err := catalog.Load(ctx, cfg.Index)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	src, err := newArticleSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating article source: %w", err)
	}

	return search.NewService(cat, document.NewAssembler(src, opts), search.Options{
		Limit:  cfg.Limit,
		Parser: cfg.Parser(),
	}), nil
}

// callbackURL is where GitHub redirects the browser after login.
func callbackURL(cfg *config.Config) string {
	return fmt.Sprintf("http://localhost:%d/callback", cfg.Client.CallbackPort)
}

func newSession(cfg *config.Config) *auth.Session {
	return auth.NewSession(auth.NewFileStore(cfg.Client.TokenFile), cfg.Client.ClientID, callbackURL(cfg))
}

// loadWebIndex loads the crawl index for /api/websearch. A missing setting
// or a failing load yields an empty index so the rest of the API still
// serves.
func loadWebIndex(ctx context.Context, cfg *config.Config) *websearch.Index {
	if cfg.WebIndex == "" {
		return websearch.New(nil)
	}
	ix, err := websearch.Load(ctx, cfg.WebIndex)
	if err != nil {
		log.ForService("serve").Warnf("web search disabled: %v", err)
		return websearch.New(nil)
	}
	return ix
}
