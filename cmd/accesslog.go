package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/rubiojr/koho/pkg/accesslog"
	"github.com/rubiojr/koho/pkg/config"
	"github.com/urfave/cli/v3"
)

var accessUserStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("214"))

// AccessLogCommand creates the accesslog command
func AccessLogCommand() *cli.Command {
	return &cli.Command{
		Name:  "accesslog",
		Usage: "Show the most recent advanced searches recorded by the server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of records to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print one JSON record per line",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return showAccessLog(ctx, os.Stdout, c.String("config"), c.Int("limit"), c.Bool("json"))
		},
	}
}

func showAccessLog(ctx context.Context, w io.Writer, configPath string, limit int, asJSON bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	switch cfg.Server.AccessLog.Sink {
	case config.AccessLogSQLite:
	case config.AccessLogGist:
		return fmt.Errorf("the access log is kept in gist %s, open it on GitHub", cfg.Server.AccessLog.GistID)
	default:
		return fmt.Errorf("the access log is disabled (server.access_log.sink = %q)", cfg.Server.AccessLog.Sink)
	}

	sink, err := accesslog.OpenSQLite(cfg.Server.AccessLog.Database)
	if err != nil {
		return fmt.Errorf("opening access log: %w", err)
	}
	defer sink.Close()

	records, err := sink.Recent(ctx, limit)
	if err != nil {
		return err
	}

	if asJSON {
		for _, r := range records {
			line, err := r.Line()
			if err != nil {
				return err
			}
			fmt.Fprintln(w, line)
		}
		return nil
	}

	fmt.Fprintln(w, titleStyle.Render("Advanced searches"))
	if len(records) == 0 {
		fmt.Fprintln(w, noDataStyle.Render("No searches recorded"))
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(w, "%s  %s  %s\n",
			metaStyle.Render(r.Time.Local().Format("2006-01-02 15:04:05")),
			accessUserStyle.Render(r.User),
			r.Query)
	}
	return nil
}
