// Package taskkey extracts tracker task keys from free-form pull-request
// text. Keys come only from the text handed in; labels, comments and branch
// names are never consulted.
package taskkey

import "regexp"

// pattern matches task keys such as AW-1234: two uppercase letters, a
// hyphen, one or more digits. Matching is case-sensitive.
var pattern = regexp.MustCompile(`\b[A-Z]{2}-\d+\b`)

// Extract returns the distinct task keys found in text, in first-seen order.
// Empty input yields an empty slice.
func Extract(text string) []string {
	matches := pattern.FindAllString(text, -1)

	seen := make(map[string]struct{}, len(matches))
	keys := make([]string, 0, len(matches))
	for _, match := range matches {
		if _, ok := seen[match]; ok {
			continue
		}
		seen[match] = struct{}{}
		keys = append(keys, match)
	}
	return keys
}
