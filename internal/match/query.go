// Package match filters slash-separated paths with fzf-style terms.
//
// A query is a space-separated list of terms that must all match:
//
//	foo     substring
//	^foo    path starts with foo
//	foo$    path ends with foo
//	'foo    foo starts at a word boundary
//	'foo'   foo is a whole word
//
// Matching is case-insensitive.
package match

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// Query is a parsed filter. The zero Query matches everything.
type Query struct {
	terms []term
}

type term struct {
	raw       string
	text      string
	head      bool
	tail      bool
	wordStart bool
	wordEnd   bool
}

// Parse parses pattern into a Query.
func Parse(pattern string) (Query, error) {
	fields := strings.Fields(pattern)
	q := Query{terms: make([]term, 0, len(fields))}

	for _, f := range fields {
		t := term{raw: f}
		s := f

		if rest, ok := strings.CutPrefix(s, "'"); ok {
			t.wordStart = true
			s = rest
			if rest, ok := strings.CutSuffix(s, "'"); ok && s != "" {
				t.wordEnd = true
				s = rest
			}
		}
		if rest, ok := strings.CutPrefix(s, "^"); ok {
			t.head = true
			s = rest
		}
		if rest, ok := strings.CutSuffix(s, "$"); ok {
			t.tail = true
			s = rest
		}
		if s == "" {
			return Query{}, fmt.Errorf("empty term in %q", t.raw)
		}

		t.text = normalize(s)
		q.terms = append(q.terms, t)
	}
	return q, nil
}

// Empty reports whether q has no terms.
func (q Query) Empty() bool {
	return len(q.terms) == 0
}

// Match reports whether path satisfies every term.
func (q Query) Match(path string) bool {
	p := normalize(path)
	for _, t := range q.terms {
		if !t.match(p) {
			return false
		}
	}
	return true
}

func (t term) match(p string) bool {
	if t.head && !strings.HasPrefix(p, t.text) {
		return false
	}
	if t.tail && !strings.HasSuffix(p, t.text) {
		return false
	}

	// Candidate offsets: the anchored ones, or every occurrence.
	var offsets []int
	switch {
	case t.head:
		offsets = append(offsets, 0)
		if t.tail {
			offsets = offsets[:0]
			if len(p) == len(t.text) {
				offsets = append(offsets, 0)
			}
		}
	case t.tail:
		offsets = append(offsets, len(p)-len(t.text))
	default:
		for i := 0; i <= len(p)-len(t.text); {
			rel := strings.Index(p[i:], t.text)
			if rel < 0 {
				break
			}
			offsets = append(offsets, i+rel)
			i += rel + 1
		}
	}

	for _, off := range offsets {
		if t.wordStart && off > 0 && isWordChar(rune(p[off-1])) {
			continue
		}
		end := off + len(t.text)
		if t.wordEnd && end < len(p) && isWordChar(rune(p[end])) {
			continue
		}
		return true
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(filepath.ToSlash(s))
}

// isWordChar treats letters, digits and underscore as word characters.
func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
