package analysis

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// ParseKeywords turns a comma-separated keyword response into a set of
// lower-cased words. Multi-word phrases are split into their words and
// words of one character or less are dropped. The result is sorted.
func ParseKeywords(raw string) []string {
	seen := make(map[string]struct{})
	for _, phrase := range strings.Split(raw, ",") {
		for _, word := range strings.Fields(phrase) {
			if utf8.RuneCountInString(word) <= 1 {
				continue
			}
			seen[strings.ToLower(word)] = struct{}{}
		}
	}

	words := make([]string, 0, len(seen))
	for w := range seen {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}
