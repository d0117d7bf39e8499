// Package todos extracts TODO-like comments from unified diff text.
package todos

import (
	"regexp"
	"strings"
)

// markerRe matches a TODO-style marker in an added line and captures its
// trailing text. The marker must start a word so identifiers like
// "mastodon" don't match.
var markerRe = regexp.MustCompile(`(?i)\b(?:@?todo|fixme)\b[:\s]\s*(.*)`)

// trailerRe strips comment closers left at the end of a captured title.
var trailerRe = regexp.MustCompile(`\s*(?:\*/|-->|#>|"""|''')\s*$`)

// Match is one TODO-like comment found in a patch.
type Match struct {
	Title string
	Body  string
}

// Scan returns all TODO-like comments introduced by the patch, in order of
// appearance. Only added lines are considered: a signal counts as new in
// this commit, not merely moved or already present.
func Scan(patch string) []Match {
	var matches []Match
	for _, line := range strings.Split(patch, "\n") {
		if !strings.HasPrefix(line, "+") || strings.HasPrefix(line, "+++") {
			continue
		}
		m := markerRe.FindStringSubmatch(line[1:])
		if m == nil {
			continue
		}
		title := strings.TrimSpace(trailerRe.ReplaceAllString(m[1], ""))
		if title == "" {
			continue
		}
		matches = append(matches, Match{Title: title})
	}
	return matches
}
