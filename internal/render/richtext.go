// Package render turns the externally-sourced block tree into HTML: span
// styling, block markup, list grouping and Q&A section segmentation. All of
// it is pure string building; escaping and annotation nesting have exactly
// one enforcement point here.
package render

import (
	"html"
	"log/slog"
	"strings"

	"permessi/internal/notion"
)

// stripGlyphs removes checkmark characters that appear as cosmetic bullets
// in the source authoring tool.
var stripGlyphs = strings.NewReplacer("✓", "", "✔", "", "☑", "")

// PlainText flattens spans to plain text: glyphs stripped per span, joined,
// then trimmed as a whole (internal spacing is significant).
func PlainText(spans []notion.RichText) string {
	var b strings.Builder
	for _, span := range spans {
		b.WriteString(stripGlyphs.Replace(span.PlainText))
	}
	return strings.TrimSpace(b.String())
}

// Renderer converts blocks and spans to HTML. With a glossary it links
// recognized dictionary terms in plain spans; without one every span is
// plainly escaped (the secondary-locale path).
type Renderer struct {
	glossary     *Glossary
	glossaryBase string
	logger       *slog.Logger
}

// NewRenderer builds a renderer. glossary may be nil to disable term
// linking; base is the dizionario page path for the locale.
func NewRenderer(glossary *Glossary, base string, logger *slog.Logger) *Renderer {
	return &Renderer{glossary: glossary, glossaryBase: base, logger: logger}
}

// Spans renders an ordered span list to one HTML string. Annotations nest
// in fixed order (code innermost, then bold, italic, underline,
// strikethrough) with the hyperlink wrapper outermost, so output is
// deterministic. Unknown annotations are ignored.
func (r *Renderer) Spans(spans []notion.RichText) string {
	var b strings.Builder
	for _, span := range spans {
		b.WriteString(r.span(span))
	}
	return b.String()
}

func (r *Renderer) span(span notion.RichText) string {
	// Do not trim here - whitespace between styled runs is significant.
	plain := stripGlyphs.Replace(span.PlainText)

	ann := span.Annotations
	if ann == nil {
		ann = &notion.Annotations{}
	}

	// Spans carrying a link or code formatting always take the plain
	// escape path; the glossary linker produces its own safe markup and
	// must not run inside them.
	var text string
	if span.Href != "" || ann.Code || r.glossary == nil {
		text = html.EscapeString(plain)
	} else {
		text = r.glossary.LinkTerms(plain, r.glossaryBase)
	}

	if ann.Code {
		text = "<code>" + text + "</code>"
	}
	if ann.Bold {
		text = "<strong>" + text + "</strong>"
	}
	if ann.Italic {
		text = "<em>" + text + "</em>"
	}
	if ann.Underline {
		text = "<u>" + text + "</u>"
	}
	if ann.Strikethrough {
		text = "<s>" + text + "</s>"
	}

	if span.Href != "" {
		text = `<a href="` + html.EscapeString(span.Href) + `">` + text + `</a>`
	}

	return text
}
