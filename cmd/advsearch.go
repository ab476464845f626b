package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rubiojr/koho/pkg/advsearch"
	"github.com/rubiojr/koho/pkg/config"
	"github.com/rubiojr/koho/pkg/document"
	"github.com/urfave/cli/v3"
)

// AdvsearchCommand creates the advsearch command
func AdvsearchCommand() *cli.Command {
	return &cli.Command{
		Name:  "advsearch",
		Usage: "Search through the server's advanced search (requires login)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "query",
				Aliases:  []string{"q"},
				Usage:    "Search query",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "Write results.md to this directory instead of printing it",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return advancedSearch(ctx, c.String("config"), c.String("query"), c.String("export"))
		},
	}
}

func advancedSearch(ctx context.Context, configPath, q, exportDir string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	client := advsearch.New(cfg.Client.ServerURL, newSession(cfg), nil)

	ok, err := client.CheckAccess(ctx)
	if errors.Is(err, advsearch.ErrNotLoggedIn) {
		return errors.New("not logged in, run koho login first")
	}
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("this account may not use advanced search")
	}

	md, err := client.Search(ctx, q)
	if err != nil {
		return err
	}

	if exportDir == "" {
		if md == "" {
			fmt.Println(noDataStyle.Render("No results found"))
			return nil
		}
		fmt.Println(md)
		return nil
	}

	path, err := document.WriteFile(exportDir, md)
	if err != nil {
		return err
	}
	fmt.Println(summaryStyle.Render("Exported results to " + path))
	return nil
}
