// Package dates parses the date strings found in course XML attributes and
// policy overlays. Course exports accumulate years of hand-edited dates in a
// handful of formats, so parsing is best-effort: a string that matches none of
// the known layouts is reported, never fatal.
package dates

import (
	"errors"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	// ErrEmpty indicates the input was empty or whitespace.
	ErrEmpty = errors.New("empty date string")

	// ErrUnparsable indicates no known layout matched the input.
	ErrUnparsable = errors.New("unparsable date string")
)

// layouts is tried in order; the first match wins. The natural-language
// permutations mirror the variants observed in real course exports, e.g.
// "February 25, 2013", "December 12, 22:00, 2012", "March 13 2014".
var layouts = []string{
	"2006-01-02T15:04:05.999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"January 2, 2006",
	"January 2, 15:04, 2006",
	"January 2, 2006, 15:04",
	"January 2 2006, 15:04",
	"January 2 2006",
	"January 2 15:04, 2006",
}

const cacheSize = 512

type cacheEntry struct {
	t   time.Time
	err error
}

// Parser converts date strings to instants, memoizing results. The same
// handful of strings is resolved repeatedly while settings are inherited down
// a course tree, so hits dominate after the first chapter.
type Parser struct {
	cache *lru.Cache[string, cacheEntry]
}

// NewParser creates a Parser with an internal LRU memo.
func NewParser() *Parser {
	cache, _ := lru.New[string, cacheEntry](cacheSize)
	return &Parser{cache: cache}
}

// Parse converts text to an instant. It returns ErrEmpty for blank input and
// ErrUnparsable when no layout matches; both are expected conditions, not
// failures. A single layer of surrounding quotes is stripped before matching.
func (p *Parser) Parse(text string) (time.Time, error) {
	if entry, ok := p.cache.Get(text); ok {
		return entry.t, entry.err
	}
	t, err := parse(text)
	p.cache.Add(text, cacheEntry{t: t, err: err})
	return t, err
}

func parse(text string) (time.Time, error) {
	s := strings.TrimSpace(text)
	s = stripQuotes(s)
	if s == "" {
		return time.Time{}, ErrEmpty
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrUnparsable
}

// stripQuotes removes one matched layer of single or double quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
