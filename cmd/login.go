package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rubiojr/koho/pkg/advsearch"
	"github.com/rubiojr/koho/pkg/config"
	"github.com/urfave/cli/v3"
)

const loginTimeout = 5 * time.Minute

// LoginCommand creates the login command
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in with GitHub to use advanced search",
		Action: func(ctx context.Context, c *cli.Command) error {
			return login(ctx, c.String("config"))
		},
	}
}

// LogoutCommand creates the logout command
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the stored GitHub token",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := newSession(cfg).Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func login(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Client.ClientID == "" {
		return errors.New("client.client_id is not set in the configuration")
	}

	session := newSession(cfg)
	authURL, err := session.BeginLogin()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", cfg.Client.CallbackPort))
	if err != nil {
		return fmt.Errorf("listening for the login callback: %w", err)
	}

	fmt.Printf("Open this URL in your browser to log in:\n\n  %s\n\n", authURL)
	fmt.Println("Waiting for GitHub to redirect back...")

	waitCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()
	code, state, err := waitForCallback(waitCtx, ln)
	if err != nil {
		return err
	}

	client := advsearch.New(cfg.Client.ServerURL, session, nil)
	if err := client.Exchange(ctx, code, state); err != nil {
		return fmt.Errorf("completing login: %w", err)
	}

	ok, err := client.CheckAccess(ctx)
	if err != nil {
		return fmt.Errorf("checking access: %w", err)
	}
	if !ok {
		fmt.Println("Logged in, but this account may not use advanced search")
		return nil
	}
	fmt.Println("Logged in. Advanced search is available.")
	return nil
}

// waitForCallback serves the OAuth redirect on ln until it receives a code,
// the provider reports an error or ctx ends. The listener is closed on
// return.
func waitForCallback(ctx context.Context, ln net.Listener) (string, string, error) {
	type callback struct {
		code, state string
		err         error
	}
	results := make(chan callback, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var cb callback
		switch {
		case q.Get("error") != "":
			cb.err = fmt.Errorf("login failed: %s", q.Get("error"))
			http.Error(w, "ログインに失敗しました", http.StatusBadRequest)
		case q.Get("code") == "":
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		default:
			cb.code, cb.state = q.Get("code"), q.Get("state")
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			fmt.Fprintln(w, "ログインしました。このウィンドウを閉じてください。")
		}
		select {
		case results <- cb:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go srv.Serve(ln)
	defer srv.Close()

	select {
	case cb := <-results:
		return cb.code, cb.state, cb.err
	case <-ctx.Done():
		return "", "", fmt.Errorf("waiting for login callback: %w", ctx.Err())
	}
}
