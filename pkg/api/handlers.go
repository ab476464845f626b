package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rubiojr/koho/pkg/accesslog"
	"github.com/rubiojr/koho/pkg/catalog"
	"github.com/rubiojr/koho/pkg/document"
	"github.com/rubiojr/koho/pkg/search"
	"github.com/rubiojr/koho/pkg/version"
	"github.com/rubiojr/koho/pkg/websearch"
	"golang.org/x/oauth2"
)

const maxBodySize = 1 << 20

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	params := search.ParseSearchParams(r.URL.Query())
	if params.Query == "" {
		params.Query = bodyField(r, "q")
	}

	q, err := search.ValidateQuery(params.Query)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid query", "Query parameter 'q' is missing, too long or contains forbidden characters")
		return
	}

	s.writeResult(w, r, s.search.Search(q), params.Format)
}

func (s *Server) HandleWebSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		q = bodyField(r, "q")
	}

	q, err := websearch.ValidateQuery(q)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid query", "Query parameter 'q' is missing")
		return
	}

	results := s.webIndex.Search(q, websearch.DefaultLimit)
	s.writeJSON(w, http.StatusOK, WebSearchResponse{
		Query:   q,
		Results: results,
		Count:   len(results),
	})
}

func (s *Server) HandleAdvancedSearch(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		s.writeError(w, http.StatusUnauthorized, "Unauthorized", "A bearer token is required")
		return
	}

	login, err := s.tokenOwner(r.Context(), token)
	if err != nil || login == "" {
		s.logger.Debugf("rejecting token: %v", err)
		s.writeError(w, http.StatusUnauthorized, "Unauthorized", "The token is not valid")
		return
	}

	ok, err := s.authorized(r.Context(), login)
	if err != nil {
		s.logger.Warnf("checking access for %s: %v", login, err)
	}
	if !ok {
		s.writeError(w, http.StatusForbidden, "Forbidden", fmt.Sprintf("User '%s' may not use advanced search", login))
		return
	}

	params := search.ParseSearchParams(r.URL.Query())
	if params.Check {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if params.Query == "" {
		params.Query = bodyField(r, "q")
	}
	q := strings.TrimSpace(params.Query)
	if q == "" {
		s.writeError(w, http.StatusBadRequest, "Missing query", "Query parameter 'q' is required")
		return
	}

	result := s.search.Search(q)

	record := accesslog.Record{Time: time.Now().UTC(), User: login, Query: q}
	if err := s.accessLog.Append(r.Context(), record); err != nil {
		s.logger.Warnf("recording access for %s: %v", login, err)
	}

	s.writeResult(w, r, result, params.Format)
}

func (s *Server) HandleExchangeToken(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		code = bodyField(r, "code")
	}
	if code == "" {
		s.writeError(w, http.StatusBadRequest, "Missing code", "Query parameter 'code' is required")
		return
	}

	token, err := s.oauth.Exchange(s.oauthContext(r.Context()), code)
	if err != nil {
		s.logger.Errorf("exchanging oauth code: %v", err)
		s.writeError(w, http.StatusInternalServerError, "OAuth error", "Could not exchange the authorization code")
		return
	}

	s.writeJSON(w, http.StatusOK, TokenResponse{Token: token.AccessToken})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
		Articles:  s.search.CatalogSize(),
		WebPages:  s.webIndex.Len(),
	}

	s.writeJSON(w, http.StatusOK, health)
}

func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, result *search.Result, format search.Format) {
	if format == search.FormatMarkdown {
		ctx, cancel := context.WithTimeout(r.Context(), s.exportTimeout)
		defer cancel()

		doc, err := s.search.Export(ctx, result)
		if err != nil {
			s.logger.Errorf("exporting %q: %v", result.Query, err)
			status := http.StatusBadGateway
			if errors.Is(err, context.DeadlineExceeded) {
				status = http.StatusGatewayTimeout
			}
			s.writeError(w, status, "Article fetch failed", err.Error())
			return
		}

		w.Header().Set("Content-Type", document.MediaType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", document.FileName))
		w.WriteHeader(http.StatusOK)
		if _, err := io.WriteString(w, doc); err != nil {
			s.logger.Errorf("writing markdown response: %v", err)
		}
		return
	}

	entries := result.Entries
	if entries == nil {
		entries = []catalog.Entry{}
	}
	keywords := result.Parsed.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	s.writeJSON(w, http.StatusOK, SearchResponse{
		Query:    result.Query,
		Keywords: keywords,
		Order:    result.Parsed.Order.String(),
		Results:  entries,
		Count:    len(entries),
		Total:    result.Total,
	})
}

func (s *Server) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

// bodyField reads a string field from a JSON request body. Missing or
// malformed bodies yield "".
func bodyField(r *http.Request, field string) string {
	if r.Body == nil {
		return ""
	}
	var body map[string]any
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&body); err != nil {
		return ""
	}
	v, _ := body[field].(string)
	return v
}
