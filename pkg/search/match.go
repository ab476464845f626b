package search

import (
	"strings"

	"github.com/rubiojr/koho/pkg/catalog"
	"github.com/rubiojr/koho/pkg/query"
)

// SearchableText is the text an entry is matched against: title, summary,
// tags and category joined by single spaces.
func SearchableText(e catalog.Entry) string {
	return strings.Join([]string{
		e.ArticleTitle,
		e.Summary,
		strings.Join(e.Tags, " "),
		e.Category,
	}, " ")
}

// Matches reports whether every group has at least one surface form that is
// a substring of the entry's searchable text. Matching is case-sensitive and
// does not tokenize the entry text.
func Matches(e catalog.Entry, groups []query.Group) bool {
	text := SearchableText(e)
	for _, g := range groups {
		if !containsAny(text, g) {
			return false
		}
	}
	return true
}

func containsAny(text string, forms query.Group) bool {
	for _, f := range forms {
		if strings.Contains(text, f) {
			return true
		}
	}
	return false
}

// Filter returns the entries matching groups, in catalog order.
func Filter(entries []catalog.Entry, groups []query.Group) []catalog.Entry {
	var matched []catalog.Entry
	for _, e := range entries {
		if Matches(e, groups) {
			matched = append(matched, e)
		}
	}
	return matched
}
