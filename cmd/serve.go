package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rubiojr/koho/pkg/accesslog"
	"github.com/rubiojr/koho/pkg/api"
	"github.com/rubiojr/koho/pkg/config"
	"github.com/rubiojr/koho/pkg/ghclient"
	"github.com/rubiojr/koho/pkg/log"
	"github.com/urfave/cli/v3"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the search API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to (defaults to the config value)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on (defaults to the config value)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), c.String("host"), c.Int("port"))
		},
	}
}

func serve(ctx context.Context, configPath, host string, port int) error {
	logger := log.ForService("serve")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if host == "" {
		host = cfg.Server.Host
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	svc, err := newSearchService(ctx, cfg, cfg.AssemblerOptions())
	if err != nil {
		return err
	}
	logger.Infof("loaded %d catalog entries from %s", svc.CatalogSize(), cfg.Index)

	webIndex := loadWebIndex(ctx, cfg)

	sink, closeSink, err := openAccessLog(cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	server := api.NewServer(api.Options{
		Search:        svc,
		WebIndex:      webIndex,
		ClientID:      cfg.Server.ClientID,
		ClientSecret:  cfg.Server.ClientSecret,
		GitHubToken:   cfg.GitHub.Token,
		Policy:        accessPolicy(cfg),
		AccessLog:     sink,
		ExportTimeout: cfg.FetchTimeout.Duration,
	})

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.FetchTimeout.Duration + 15*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on http://%s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	// Only the access policy is reloaded. Changing anything else needs a
	// restart.
	var events <-chan fsnotify.Event
	var watchErrors <-chan error
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warnf("failed to create config file watcher: %v", err)
	} else {
		defer watcher.Close()
		if err := watcher.Add(configPath); err != nil {
			logger.Warnf("failed to watch config file %s: %v", configPath, err)
		} else {
			logger.Infof("watching config file for changes: %s", configPath)
			events = watcher.Events
			watchErrors = watcher.Errors
		}
	}

	for {
		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("serving: %w", err)
			}
			return nil
		case <-ctx.Done():
			return shutdown(httpServer)
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				logger.Infof("received SIGHUP, reloading access policy")
				reloadPolicy(configPath, server)
			default:
				logger.Infof("shutting down")
				return shutdown(httpServer)
			}
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			// editors often replace the file instead of writing it
			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				time.Sleep(200 * time.Millisecond)
				if _, err := os.Stat(configPath); os.IsNotExist(err) {
					logger.Warnf("config file was removed, keeping current access policy")
					continue
				}
				if err := watcher.Add(configPath); err != nil {
					logger.Warnf("failed to re-add config file to watcher: %v", err)
				}
			} else if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				time.Sleep(100 * time.Millisecond)
			} else {
				continue
			}
			logger.Infof("config file changed (%s), reloading access policy", event.Op)
			reloadPolicy(configPath, server)
		case err, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
				continue
			}
			logger.Warnf("config file watcher error: %v", err)
		}
	}
}

func shutdown(s *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// reloadPolicy re-reads the config file and swaps the access policy. A
// config that fails to load keeps the current policy.
func reloadPolicy(configPath string, server *api.Server) {
	logger := log.ForService("serve")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Errorf("failed to reload configuration: %v", err)
		return
	}
	policy := accessPolicy(cfg)
	server.SetPolicy(policy)
	logger.Infof("access policy reloaded: repository %s/%s, %d allowed users",
		policy.Owner, policy.Repo, len(policy.AllowedUsers))
}

func accessPolicy(cfg *config.Config) api.Policy {
	// Validate already rejected malformed repositories
	owner, repo, _ := cfg.Server.Access.OwnerRepo()
	return api.Policy{
		Owner:        owner,
		Repo:         repo,
		AllowedUsers: cfg.Server.Access.AllowedUsers,
	}
}

func openAccessLog(cfg *config.Config) (accesslog.Sink, func(), error) {
	switch cfg.Server.AccessLog.Sink {
	case config.AccessLogSQLite:
		sink, err := accesslog.OpenSQLite(cfg.Server.AccessLog.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("opening access log: %w", err)
		}
		return sink, func() {
			if err := sink.Close(); err != nil {
				log.ForService("serve").Warnf("failed to close access log: %v", err)
			}
		}, nil
	case config.AccessLogGist:
		token := cfg.Server.AccessLog.GistToken
		if token == "" {
			token = cfg.GitHub.Token
		}
		client, err := ghclient.New(token, "", nil)
		if err != nil {
			return nil, nil, err
		}
		return accesslog.NewGistSink(client, cfg.Server.AccessLog.GistID), func() {}, nil
	default:
		return accesslog.Nop{}, func() {}, nil
	}
}
