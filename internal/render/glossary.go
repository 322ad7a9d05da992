package render

import (
	_ "embed"
	"fmt"
	"html"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed glossary.yaml
var glossaryData []byte

type termPattern struct {
	anchor string
	re     *regexp.Regexp
}

// Glossary wraps recognized dictionary terms in anchor tags pointing at the
// dizionario page. Matching is case-insensitive on word boundaries; longer
// terms win over shorter ones and matches never overlap.
type Glossary struct {
	patterns []termPattern
}

// LoadGlossary parses the embedded term table.
func LoadGlossary() (*Glossary, error) {
	var terms map[string]string
	if err := yaml.Unmarshal(glossaryData, &terms); err != nil {
		return nil, fmt.Errorf("parse glossary: %w", err)
	}

	// Longest first so "carta di soggiorno" beats "soggiorno".
	names := make([]string, 0, len(terms))
	for term := range terms {
		names = append(names, term)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	g := &Glossary{patterns: make([]termPattern, 0, len(names))}
	for _, term := range names {
		re, err := regexp.Compile(`(?i)\b(` + regexp.QuoteMeta(term) + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("glossary term %q: %w", term, err)
		}
		g.patterns = append(g.patterns, termPattern{anchor: terms[term], re: re})
	}
	return g, nil
}

type termMatch struct {
	start, end int
	anchor     string
}

// LinkTerms escapes text and wraps recognized terms in links to base
// (e.g. "dizionario.html"). Escaping happens here for the whole string, so
// callers must not escape the input beforehand.
func (g *Glossary) LinkTerms(text, base string) string {
	if text == "" {
		return ""
	}

	var matches []termMatch
	for _, p := range g.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			if overlaps(matches, loc[0], loc[1]) {
				continue
			}
			matches = append(matches, termMatch{start: loc[0], end: loc[1], anchor: p.anchor})
		}
	}

	if len(matches) == 0 {
		return html.EscapeString(text)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	var out []byte
	pos := 0
	for _, m := range matches {
		out = append(out, html.EscapeString(text[pos:m.start])...)
		out = append(out, fmt.Sprintf(`<a href="%s#%s" class="doc-link">%s</a>`,
			base, m.anchor, html.EscapeString(text[m.start:m.end]))...)
		pos = m.end
	}
	out = append(out, html.EscapeString(text[pos:])...)
	return string(out)
}

func overlaps(matches []termMatch, start, end int) bool {
	for _, m := range matches {
		if start < m.end && end > m.start {
			return true
		}
	}
	return false
}
