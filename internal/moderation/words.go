package moderation

import (
	"strings"

	"golang.org/x/text/cases"
)

// WordFilter matches banned substrings, ignoring case
type WordFilter struct {
	words  []string
	folded []string
}

// NewWordFilter builds a filter from a list of banned words. Blank entries are skipped.
func NewWordFilter(words []string) *WordFilter {
	f := &WordFilter{}
	fold := cases.Fold()
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		f.words = append(f.words, w)
		f.folded = append(f.folded, fold.String(w))
	}
	return f
}

// Len returns the number of banned words
func (f *WordFilter) Len() int {
	return len(f.words)
}

// Match returns the first banned word contained in text, as configured
func (f *WordFilter) Match(text string) (string, bool) {
	if len(f.folded) == 0 || text == "" {
		return "", false
	}
	haystack := cases.Fold().String(text)
	for i, w := range f.folded {
		if strings.Contains(haystack, w) {
			return f.words[i], true
		}
	}
	return "", false
}
