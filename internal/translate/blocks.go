package translate

import (
	"strings"

	"permessi/internal/notion"
)

// CollectSegments gathers the distinct translatable span texts of a block
// run, one level of nesting deep, in document order. Whitespace-only spans
// are skipped; the returned segments are trimmed, matching how
// TranslateBlocks looks them up.
func CollectSegments(blocks []notion.Block) []string {
	var segments []string
	seen := map[string]bool{}

	add := func(spans []notion.RichText) {
		for _, span := range spans {
			text := strings.TrimSpace(span.PlainText)
			if text == "" || seen[text] {
				continue
			}
			seen[text] = true
			segments = append(segments, text)
		}
	}

	for i := range blocks {
		add(blocks[i].Spans())
		for j := range blocks[i].Children {
			add(blocks[i].Children[j].Spans())
		}
	}
	return segments
}

// TranslateBlocks rebuilds a block run in create format with every span's
// text swapped for its translation. Annotations and links survive; spans
// whose text has no translation keep the source text. Unknown block types
// become empty paragraphs so block counts stay aligned with the source.
func TranslateBlocks(blocks []notion.Block, translations map[string]string) []notion.Block {
	out := make([]notion.Block, 0, len(blocks))
	for i := range blocks {
		out = append(out, translateBlock(&blocks[i], translations))
	}
	return out
}

func translateBlock(b *notion.Block, translations map[string]string) notion.Block {
	content := &notion.BlockContent{
		RichText: translateSpans(b.Spans(), translations),
	}

	if c := b.Content(); c != nil && c.Icon != nil {
		content.Icon = &notion.Icon{Type: c.Icon.Type, Emoji: c.Icon.Emoji}
	}

	for i := range b.Children {
		child := translateBlock(&b.Children[i], translations)
		content.Children = append(content.Children, child)
	}

	nb := notion.Block{Type: b.Type}
	switch b.Type {
	case notion.BlockParagraph:
		nb.Paragraph = content
	case notion.BlockHeading2:
		nb.Heading2 = content
	case notion.BlockHeading3:
		nb.Heading3 = content
	case notion.BlockBulletedListItem:
		nb.BulletedListItem = content
	case notion.BlockNumberedListItem:
		nb.NumberedListItem = content
	case notion.BlockDivider:
		nb.Divider = &notion.DividerContent{}
	case notion.BlockQuote:
		nb.Quote = content
	case notion.BlockCallout:
		nb.Callout = content
	default:
		nb.Type = notion.BlockParagraph
		nb.Paragraph = &notion.BlockContent{RichText: []notion.RichText{}}
	}
	return nb
}

func translateSpans(spans []notion.RichText, translations map[string]string) []notion.RichText {
	out := make([]notion.RichText, 0, len(spans))
	for _, span := range spans {
		text := span.PlainText
		if translated, ok := translations[strings.TrimSpace(text)]; ok {
			text = replacePreservingWhitespace(text, translated)
		}

		nt := notion.RichText{
			Type: "text",
			Text: &notion.TextContent{Content: text},
		}
		if span.Href != "" {
			nt.Text.Link = &notion.Link{URL: span.Href}
		}
		if a := span.Annotations; a != nil && (a.Bold || a.Italic || a.Underline || a.Strikethrough || a.Code) {
			copied := *a
			copied.Color = ""
			nt.Annotations = &copied
		}
		out = append(out, nt)
	}
	return out
}

// replacePreservingWhitespace swaps the trimmed core of original for
// translated while keeping original's leading and trailing whitespace,
// which carries inter-span spacing.
func replacePreservingWhitespace(original, translated string) string {
	trimmed := strings.TrimSpace(original)
	if trimmed == "" {
		return original
	}
	start := strings.Index(original, trimmed)
	return original[:start] + translated + original[start+len(trimmed):]
}
