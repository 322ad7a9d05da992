// Package slug derives canonical URL identifiers from display names and
// maintains the redirect table that keeps historical URLs alive.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// accentStripper decomposes accented letters and drops the combining marks,
// so "dà" slugs the same as "da".
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Make derives the canonical URL identifier from a display name: lowercase,
// accents stripped, runs of non-alphanumerics collapsed to single hyphens,
// hyphens trimmed from both ends. Deterministic and idempotent; empty in,
// empty out.
func Make(name string) string {
	if name == "" {
		return ""
	}

	lowered := strings.ToLower(name)
	stripped, _, err := transform.String(accentStripper, lowered)
	if err != nil {
		// Malformed input falls back to the lowercased form; the
		// non-alphanumeric pass still yields a usable slug.
		stripped = lowered
	}

	return strings.Trim(nonAlnum.ReplaceAllString(stripped, "-"), "-")
}
