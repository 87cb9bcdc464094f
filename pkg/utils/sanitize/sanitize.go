// Package sanitize removes marked private spans from note content before it
// leaves the local environment.
package sanitize

import "strings"

// Placeholder replaces each removed private section, markers included.
const Placeholder = "[Private Content Removed]"

// RemovePrivateSections removes every span delimited by a pair of literal
// occurrences of marker, replacing each pair (inclusive) with Placeholder.
// Pairs are matched non-greedily left to right and may span multiple lines.
// An unpaired trailing marker is left untouched since there is no closing
// delimiter.
func RemovePrivateSections(content, marker string) string {
	if marker == "" {
		return content
	}

	var b strings.Builder
	rest := content
	for {
		open := strings.Index(rest, marker)
		if open < 0 {
			b.WriteString(rest)
			break
		}
		close := strings.Index(rest[open+len(marker):], marker)
		if close < 0 {
			// Unpaired marker: keep everything as-is
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:open])
		b.WriteString(Placeholder)
		rest = rest[open+len(marker)+close+len(marker):]
	}
	return b.String()
}
