package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rubiojr/koho/pkg/config"
	"github.com/rubiojr/koho/pkg/document"
	"github.com/rubiojr/koho/pkg/query"
	"github.com/rubiojr/koho/pkg/search"
	"github.com/urfave/cli/v3"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	entryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Margin(0, 0, 1, 2)

	entryTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)

	summaryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("32"))
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the bulletin catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "query",
				Aliases:  []string{"q"},
				Usage:    "Search query, e.g. \"空き家 新しい順\"",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "Fetch the article bodies and write results.md to this directory",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Article bodies fetched at the same time when exporting (0 uses the config value)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return searchCatalog(ctx, c.String("config"), c.String("query"), c.String("export"), c.Int("concurrency"))
		},
	}
}

func searchCatalog(ctx context.Context, configPath, q, exportDir string, concurrency int) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	opts := cfg.AssemblerOptions()
	if concurrency > 0 {
		opts.Concurrency = concurrency
	}

	svc, err := newSearchService(ctx, cfg, opts)
	if err != nil {
		return err
	}

	result := svc.Search(q)
	renderResults(os.Stdout, result)

	if exportDir == "" || len(result.Entries) == 0 {
		return nil
	}

	exportCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout.Duration)
	defer cancel()

	doc, err := svc.Export(exportCtx, result)
	if err != nil {
		return fmt.Errorf("exporting results: %w", err)
	}
	path, err := document.WriteFile(exportDir, doc)
	if err != nil {
		return err
	}
	fmt.Println(summaryStyle.Render(fmt.Sprintf("Exported %d articles to %s", len(result.Entries), path)))
	return nil
}

// renderResults prints the styled result list.
func renderResults(w io.Writer, r *search.Result) {
	fmt.Fprintln(w, titleStyle.Render("Search: "+r.Query))

	if len(r.Entries) == 0 {
		fmt.Fprintln(w, noDataStyle.Render("No results found"))
		return
	}

	for i, e := range r.Entries {
		var b strings.Builder
		b.WriteString(entryTitleStyle.Render(fmt.Sprintf("%d. %s", i+1, e.ArticleTitle)))
		b.WriteString("\n")
		b.WriteString(metaStyle.Render(strings.Join(nonEmpty(e.Municipality, e.Date, e.IssueTitle, e.Category), " · ")))
		if e.Summary != "" {
			b.WriteString("\n")
			b.WriteString(e.Summary)
		}
		if len(e.Tags) > 0 {
			b.WriteString("\n")
			b.WriteString(tagStyle.Render("#" + strings.Join(e.Tags, " #")))
		}
		fmt.Fprintln(w, entryStyle.Render(b.String()))
	}

	shown := fmt.Sprintf("%d results", len(r.Entries))
	if r.Total > len(r.Entries) {
		shown = fmt.Sprintf("%d of %d results", len(r.Entries), r.Total)
	}
	if r.Parsed.Order != query.OrderNone {
		shown += fmt.Sprintf(" (order: %s)", r.Parsed.Order)
	}
	fmt.Fprintln(w, summaryStyle.Render(shown))
}

func nonEmpty(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
