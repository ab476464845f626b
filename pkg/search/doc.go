// Package search runs keyword searches over the bulletin catalog.
//
// # Overview
//
// A search goes through four steps:
//
//   - the raw text is parsed into keyword groups and an optional order
//     (package query)
//   - every catalog entry is matched against all groups (Matches)
//   - matches are sorted by date when the query asked for it (SortByDate)
//   - the result is capped, by default at 20 entries
//
// Matching is plain substring containment on the entry title, summary, tags
// and category. An entry matches when each keyword group has at least one
// surface form in that text. There is no relevance scoring.
//
// # Usage
//
//	svc := search.NewService(cat, document.NewAssembler(src, document.Options{}), search.Options{})
//	result := svc.Search("移住 新しい順")
//	for _, e := range result.Entries {
//		fmt.Println(e.Date, e.ArticleTitle)
//	}
//
// Exporting fetches every article body, so it is a separate call:
//
//	doc, err := svc.Export(ctx, result)
//
// # Dates
//
// Index dates look like "2023.04.01". Dates that cannot be parsed sort as
// the earliest date: first for oldest-first queries, last for newest-first.
//
// # HTTP parameters
//
// ParseSearchParams and ValidateQuery implement the request handling shared
// by the public and the advanced search endpoints of package api.
package search
