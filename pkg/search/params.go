package search

// Format selects how search results are returned over HTTP.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// SearchParams represents the parameters of an HTTP search request.
type SearchParams struct {
	// Query is the raw search text.
	Query string

	// Format is FormatMarkdown when the client wants the assembled
	// document instead of the entry list.
	Format Format

	// Check asks only whether the caller may use the endpoint.
	Check bool
}

// ParseSearchParams parses HTTP query parameters into SearchParams.
//
// Supported parameters:
//   - q: search query
//   - format: "markdown" for the assembled document, anything else for JSON
//   - check: any non-empty value turns the request into an access check
func ParseSearchParams(queryParams map[string][]string) SearchParams {
	params := SearchParams{Format: FormatJSON}

	if q := queryParams["q"]; len(q) > 0 {
		params.Query = q[0]
	}

	if f := queryParams["format"]; len(f) > 0 && Format(f[0]) == FormatMarkdown {
		params.Format = FormatMarkdown
	}

	if c := queryParams["check"]; len(c) > 0 && c[0] != "" {
		params.Check = true
	}

	return params
}
