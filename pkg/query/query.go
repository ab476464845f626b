// Package query turns free-text Japanese search input into keyword groups
// and an optional date ordering.
//
// Parsing happens in three explicit steps:
//
//  1. Order directives are detected by substring: 新しい順 (newest first)
//     selects descending order, 古い順 (oldest first) ascending order. When
//     both appear, descending wins because it is checked first.
//  2. The text is cut at the earliest stop phrase: either order directive,
//     の記事 ("articles about ...") or the object particle を. Everything after
//     it is discarded, so "移住の記事を新しい順で" keeps only "移住".
//  3. What is left is split on whitespace, commas and the connector particles
//     と and や. Empty and punctuation-only tokens are dropped.
//
// Each keyword is then expanded to its synonym group (see Synonyms).
package query

import (
	"strings"
	"unicode"
)

// Order is the requested date ordering of the results.
type Order int

const (
	// OrderNone keeps catalog order.
	OrderNone Order = iota
	// OrderAsc sorts oldest first.
	OrderAsc
	// OrderDesc sorts newest first.
	OrderDesc
)

func (o Order) String() string {
	switch o {
	case OrderAsc:
		return "asc"
	case OrderDesc:
		return "desc"
	default:
		return "none"
	}
}

const (
	// MarkerNewest requests newest-first ordering.
	MarkerNewest = "新しい順"
	// MarkerOldest requests oldest-first ordering.
	MarkerOldest = "古い順"
)

// stopPhrases end the keyword part of a query.
var stopPhrases = []string{MarkerNewest, MarkerOldest, "の記事", "を"}

// connectors split keywords in addition to whitespace.
var connectors = map[rune]bool{
	',': true,
	'，': true,
	'、': true,
	'と': true,
	'や': true,
}

// Group is a keyword and its synonym surface forms, matched as an OR-set.
type Group []string

// Parsed is the structured form of a raw query.
type Parsed struct {
	Keywords []string
	Groups   []Group
	Order    Order
}

// Empty reports whether the query has no keywords. An empty query matches
// nothing.
func (p Parsed) Empty() bool {
	return len(p.Keywords) == 0
}

// Parser parses queries using a synonym table.
type Parser struct {
	synonyms *Synonyms
}

// NewParser returns a parser expanding keywords with s. A nil s uses
// DefaultSynonyms.
func NewParser(s *Synonyms) *Parser {
	if s == nil {
		s = DefaultSynonyms()
	}
	return &Parser{synonyms: s}
}

// Parse never fails: input without usable keywords yields an empty Parsed.
func (p *Parser) Parse(raw string) Parsed {
	q := strings.TrimSpace(raw)
	keywords := Tokenize(StripDirectives(q))
	return Parsed{
		Keywords: keywords,
		Groups:   p.synonyms.Expand(keywords),
		Order:    DetectOrder(q),
	}
}

// Parse parses raw with the default synonym table.
func Parse(raw string) Parsed {
	return NewParser(nil).Parse(raw)
}

// DetectOrder returns the ordering requested by q.
func DetectOrder(q string) Order {
	if strings.Contains(q, MarkerNewest) {
		return OrderDesc
	}
	if strings.Contains(q, MarkerOldest) {
		return OrderAsc
	}
	return OrderNone
}

// StripDirectives cuts q at the earliest stop phrase.
func StripDirectives(q string) string {
	cut := len(q)
	for _, phrase := range stopPhrases {
		if i := strings.Index(q, phrase); i >= 0 && i < cut {
			cut = i
		}
	}
	return q[:cut]
}

// Tokenize splits q into keywords. Tokens made only of punctuation or
// symbols carry nothing to search for and are dropped.
func Tokenize(q string) []string {
	fields := strings.FieldsFunc(q, func(r rune) bool {
		return unicode.IsSpace(r) || connectors[r]
	})
	keywords := fields[:0]
	for _, f := range fields {
		if hasWordRune(f) {
			keywords = append(keywords, f)
		}
	}
	return keywords
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}
