package api

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rubiojr/koho/pkg/accesslog"
	"github.com/rubiojr/koho/pkg/log"
	"github.com/rubiojr/koho/pkg/search"
	"github.com/rubiojr/koho/pkg/websearch"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// DefaultExportTimeout bounds the article fetching of a single markdown
// response.
const DefaultExportTimeout = 2 * time.Minute

// Options configures a Server.
type Options struct {
	Search *search.Service
	// WebIndex backs /api/websearch. Nil serves an empty crawl index.
	WebIndex *websearch.Index

	// OAuth app used by /api/exchange_token.
	ClientID     string
	ClientSecret string
	// TokenURL overrides the GitHub OAuth token endpoint.
	TokenURL string

	// GitHubToken authenticates the collaborator checks of the access
	// policy. Collaborator lists are only visible to users with push
	// access, so it is normally required.
	GitHubToken string
	// GitHubBaseURL overrides https://api.github.com/.
	GitHubBaseURL string
	HTTPClient    *http.Client

	Policy    Policy
	AccessLog accesslog.Sink

	ExportTimeout time.Duration
}

type Server struct {
	search        *search.Service
	webIndex      *websearch.Index
	oauth         *oauth2.Config
	githubToken   string
	githubBaseURL string
	httpClient    *http.Client
	policy        atomic.Pointer[Policy]
	accessLog     accesslog.Sink
	exportTimeout time.Duration
	logger        *log.Logger
}

func NewServer(opts Options) *Server {
	endpoint := github.Endpoint
	if opts.TokenURL != "" {
		endpoint.TokenURL = opts.TokenURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.AccessLog == nil {
		opts.AccessLog = accesslog.Nop{}
	}
	if opts.ExportTimeout <= 0 {
		opts.ExportTimeout = DefaultExportTimeout
	}

	s := &Server{
		search:   opts.Search,
		webIndex: opts.WebIndex,
		oauth: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint:     endpoint,
		},
		githubToken:   opts.GitHubToken,
		githubBaseURL: opts.GitHubBaseURL,
		httpClient:    opts.HTTPClient,
		accessLog:     opts.AccessLog,
		exportTimeout: opts.ExportTimeout,
		logger:        log.ForService("api"),
	}
	s.SetPolicy(opts.Policy)
	return s
}

// Handler returns the router with all routes and middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(CorsMiddleware)
	r.Use(func(next http.Handler) http.Handler {
		return gzhttp.GzipHandler(next)
	})

	s.RegisterRoutes(r)
	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
