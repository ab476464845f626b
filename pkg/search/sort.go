package search

import (
	"slices"
	"strings"
	"time"

	"github.com/rubiojr/koho/pkg/catalog"
	"github.com/rubiojr/koho/pkg/query"
)

var dateLayouts = []string{
	"2006-1-2",
	"2006-1",
	"2006",
	time.RFC3339,
	"2006年1月2日",
	"2006年1月",
}

// ParseDate parses an index date such as "2023.04.01". Dots and slashes
// are read as dashes. Dates that cannot be parsed return the zero time, so they sort as
// the earliest possible date.
func ParseDate(s string) time.Time {
	s = strings.NewReplacer(".", "-", "/", "-").Replace(strings.TrimSpace(s))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SortByDate sorts entries in place by date. Entries with equal dates keep
// their relative order. OrderNone leaves the slice untouched.
func SortByDate(entries []catalog.Entry, order query.Order) {
	if order == query.OrderNone || len(entries) < 2 {
		return
	}

	// parse each date once
	type keyed struct {
		entry catalog.Entry
		at    time.Time
	}
	sorted := make([]keyed, len(entries))
	for i := range entries {
		sorted[i] = keyed{entry: entries[i], at: ParseDate(entries[i].Date)}
	}

	slices.SortStableFunc(sorted, func(a, b keyed) int {
		if order == query.OrderDesc {
			return b.at.Compare(a.at)
		}
		return a.at.Compare(b.at)
	})

	for i := range sorted {
		entries[i] = sorted[i].entry
	}
}
