// Package textutil holds pure text helpers shared by the connectors, the
// extraction engine, and the rule analyzer. No I/O, no state.
package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanText collapses all whitespace runs to single spaces and trims.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// keyRe keeps only digits, ASCII letters, and Hangul syllables.
var keyRe = regexp.MustCompile(`[^0-9A-Za-z가-힣]`)

// NormalizeKey reduces text to a dedup key: alphanumerics and Hangul only,
// lowercased, capped at 140 runes. Lines that normalize to the same key are
// treated as duplicates.
func NormalizeKey(s string) string {
	compact := strings.ToLower(keyRe.ReplaceAllString(s, ""))
	runes := []rune(compact)
	if len(runes) > 140 {
		runes = runes[:140]
	}
	return string(runes)
}

// emptyMarkers are placeholder strings crawls and extractions emit when a
// field genuinely has no value.
var emptyMarkers = map[string]struct{}{
	"":           {},
	"정보 없음":      {},
	"정보없음":       {},
	"제목 없음":      {},
	"상세 페이지 참조":  {},
	"-":          {},
	" / ":        {},
	"/":          {},
}

// IsEmptyValue reports whether s carries no real information: blank, a known
// placeholder, or containing the "no information" marker.
func IsEmptyValue(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return true
	}
	if _, ok := emptyMarkers[t]; ok {
		return true
	}
	return strings.Contains(t, "정보 없음") || strings.Contains(t, "정보없음")
}

// ScoreKeywords counts how many of the keywords occur in line.
func ScoreKeywords(line string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(line, kw) {
			n++
		}
	}
	return n
}

// ContainsAny reports whether any keyword occurs in the text.
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
