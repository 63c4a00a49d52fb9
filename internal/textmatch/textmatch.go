// Package textmatch holds the case-insensitive matching rules used when
// comparing transaction descriptions against keywords.
package textmatch

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenRunes is the shortest leading word accepted as a personalization token.
const minTokenRunes = 3

// ContainsWholeWord reports whether keyword occurs in text as a whole word,
// ignoring case. Word characters are letters, digits and underscore; an
// occurrence counts only when the characters on each side of it sit on a
// word boundary, the same rule as a \b anchor in a regular expression.
func ContainsWholeWord(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	t := []rune(strings.ToLower(text))
	k := []rune(strings.ToLower(keyword))
	if len(k) > len(t) {
		return false
	}

	for start := 0; start+len(k) <= len(t); start++ {
		if !hasPrefixAt(t, k, start) {
			continue
		}
		end := start + len(k)
		if isBoundary(t, start) && isBoundary(t, end) {
			return true
		}
	}
	return false
}

// ContainsFold reports whether keyword occurs anywhere in text, ignoring case.
func ContainsFold(text, keyword string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(keyword))
}

// LeadingToken returns the first lower-cased word of description that has
// at least three characters. When no word is that long it returns the whole
// trimmed lower-cased description. An empty result means there is nothing
// to match.
func LeadingToken(description string) string {
	normalized := strings.ToLower(strings.TrimSpace(description))
	for _, word := range strings.Fields(normalized) {
		if utf8.RuneCountInString(word) >= minTokenRunes {
			return word
		}
	}
	return normalized
}

func hasPrefixAt(t, k []rune, start int) bool {
	for i, r := range k {
		if t[start+i] != r {
			return false
		}
	}
	return true
}

// isBoundary reports whether position pos in t (between t[pos-1] and t[pos])
// separates a word character from a non-word character or a string edge.
func isBoundary(t []rune, pos int) bool {
	before := pos > 0 && isWordRune(t[pos-1])
	after := pos < len(t) && isWordRune(t[pos])
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
