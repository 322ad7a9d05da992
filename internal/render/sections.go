package render

import (
	"strings"

	"permessi/internal/domain/models"
	"permessi/internal/notion"
)

// Question returns the question text when the block opens a Q&A section.
// Two authoring styles qualify: a sub-level heading with non-empty text
// (heading text becomes the question verbatim), and a paragraph whose first
// span is bold and, trimmed, ends in "?".
func Question(b *notion.Block) (string, bool) {
	switch b.Type {
	case notion.BlockHeading3:
		if q := PlainText(b.Spans()); q != "" {
			return strings.TrimSpace(q), true
		}

	case notion.BlockParagraph:
		spans := b.Spans()
		if len(spans) > 0 && spans[0].IsBold() {
			text := strings.TrimSpace(spans[0].PlainText)
			if strings.HasSuffix(text, "?") {
				return text, true
			}
		}
	}

	return "", false
}

// Section is one segmented question+content run in render form. Blocks
// excludes the question block itself, except when the question paragraph
// carries answer content after the bold span: then that paragraph leads the
// content and SkipLead suppresses its question span at render time. The
// suppression flag lives here, not on the block tree, so blocks stay
// immutable.
type Section struct {
	Question string
	Blocks   []notion.Block
	SkipLead bool
}

// RawSection is the translation-side form: Blocks includes the question
// block first, so section hashes cover the question's own spans.
type RawSection struct {
	Question string
	Blocks   []notion.Block
}

// Segment walks a flat block sequence and groups it into ordered sections.
// Content before the first question block has no home section and is
// dropped; a sequence without questions yields nil (the record becomes a
// placeholder).
func Segment(blocks []notion.Block) []Section {
	var sections []Section
	var current *Section

	for i := range blocks {
		b := blocks[i]

		question, ok := Question(&b)
		if !ok {
			if current != nil {
				current.Blocks = append(current.Blocks, b)
			}
			continue
		}

		if current != nil {
			sections = append(sections, *current)
		}
		current = &Section{Question: question}

		// A bold-paragraph question may carry the start of its answer in
		// the same block; keep the block as leading content and flag its
		// question span for suppression.
		if b.Type == notion.BlockParagraph {
			spans := b.Spans()
			if len(spans) > 1 || (len(spans) == 1 && !spans[0].IsBold()) {
				current.Blocks = append(current.Blocks, b)
				current.SkipLead = true
			}
		}
	}

	if current != nil {
		sections = append(sections, *current)
	}
	return sections
}

// SegmentRaw groups blocks into sections for hashing and translation,
// keeping the question block inside each section's block run.
func SegmentRaw(blocks []notion.Block) []RawSection {
	var sections []RawSection
	var current *RawSection

	for i := range blocks {
		b := blocks[i]

		question, ok := Question(&b)
		if !ok {
			if current != nil {
				current.Blocks = append(current.Blocks, b)
			}
			continue
		}

		if current != nil {
			sections = append(sections, *current)
		}
		current = &RawSection{Question: question, Blocks: []notion.Block{b}}
	}

	if current != nil {
		sections = append(sections, *current)
	}
	return sections
}

// Sections segments and renders a block sequence into the template-data
// section list, indexes assigned in source order.
func (r *Renderer) Sections(blocks []notion.Block) []models.Section {
	segmented := Segment(blocks)
	sections := make([]models.Section, 0, len(segmented))

	for i, s := range segmented {
		var skip map[int]bool
		if s.SkipLead {
			skip = map[int]bool{0: true}
		}
		sections = append(sections, models.Section{
			Question: s.Question,
			Content:  r.Blocks(s.Blocks, skip),
			Index:    i,
		})
	}
	return sections
}
