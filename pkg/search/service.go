package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rubiojr/koho/pkg/catalog"
	"github.com/rubiojr/koho/pkg/document"
	"github.com/rubiojr/koho/pkg/log"
	"github.com/rubiojr/koho/pkg/query"
)

// DefaultLimit is the maximum number of results returned and exported.
const DefaultLimit = 20

// MaxQueryLength is the longest query, in characters, accepted from HTTP
// clients.
const MaxQueryLength = 100

// ErrInvalidQuery is returned by ValidateQuery.
var ErrInvalidQuery = errors.New("invalid or missing query")

// Result is the outcome of a search.
type Result struct {
	// Query is the raw query string.
	Query string
	// Parsed is the structured query the search ran with.
	Parsed query.Parsed
	// Entries holds the matches, sorted when requested and capped at the
	// service limit.
	Entries []catalog.Entry
	// Total is the number of matches before the cap.
	Total int
}

// Options configures a Service.
type Options struct {
	// Limit caps the number of results. Defaults to DefaultLimit.
	Limit int
	// Parser overrides the query parser (and with it the synonym table).
	Parser *query.Parser
}

// Service runs searches over a catalog and exports their results.
type Service struct {
	catalog   *catalog.Catalog
	assembler *document.Assembler
	parser    *query.Parser
	limit     int
	logger    *log.Logger
}

// NewService creates a search service. The assembler is only needed for
// Export and may be nil otherwise.
func NewService(c *catalog.Catalog, assembler *document.Assembler, opts Options) *Service {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Parser == nil {
		opts.Parser = query.NewParser(nil)
	}
	return &Service{
		catalog:   c,
		assembler: assembler,
		parser:    opts.Parser,
		limit:     opts.Limit,
		logger:    log.ForService("search"),
	}
}

// Search parses raw, matches it against the whole catalog, sorts when the
// query asks for it and caps the result. A query without keywords returns
// an empty result.
func (s *Service) Search(raw string) *Result {
	parsed := s.parser.Parse(raw)
	result := &Result{Query: raw, Parsed: parsed}

	if parsed.Empty() {
		s.logger.Debugf("no keywords in %q", raw)
		return result
	}

	s.logger.Debugf("searching for %v order=%s", parsed.Keywords, parsed.Order)
	matched := Filter(s.catalog.Entries(), parsed.Groups)
	SortByDate(matched, parsed.Order)

	result.Total = len(matched)
	if len(matched) > s.limit {
		matched = matched[:s.limit]
	}
	result.Entries = matched

	s.logger.Debugf("entries matched %d, returning %d", result.Total, len(result.Entries))
	return result
}

// CatalogSize returns the number of entries searched.
func (s *Service) CatalogSize() int {
	return s.catalog.Len()
}

// Export fetches the article bodies of the result entries and assembles the
// Markdown document. It performs one or more network round trips per entry.
func (s *Service) Export(ctx context.Context, r *Result) (string, error) {
	if s.assembler == nil {
		return "", errors.New("search service has no document assembler")
	}
	if r == nil || len(r.Entries) == 0 {
		return "", nil
	}
	doc, err := s.assembler.Assemble(ctx, r.Entries)
	if err != nil {
		return "", fmt.Errorf("assembling document: %w", err)
	}
	return doc, nil
}

// ValidateQuery trims q and rejects empty queries, queries longer than
// MaxQueryLength characters and queries containing < > " ' or \.
func ValidateQuery(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" || utf8.RuneCountInString(q) > MaxQueryLength {
		return "", ErrInvalidQuery
	}
	if strings.ContainsAny(q, `<>"'\`) {
		return "", ErrInvalidQuery
	}
	return q, nil
}
