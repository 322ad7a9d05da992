package render

import (
	"strings"

	"permessi/internal/notion"
)

// Block renders a single block to an HTML fragment, or "" when the block
// has no renderable text. skipQuestion suppresses a leading embedded bold
// question span in a paragraph (see Segment). Unknown block types log a
// warning and render nothing.
func (r *Renderer) Block(b *notion.Block, skipQuestion bool) string {
	switch b.Type {
	case notion.BlockParagraph:
		spans := b.Spans()
		if skipQuestion {
			spans = dropLeadQuestion(spans)
		}
		html := r.Spans(spans)
		if html == "" {
			return ""
		}
		return "<p>" + html + "</p>"

	case notion.BlockHeading2:
		html := r.Spans(b.Spans())
		if html == "" {
			return ""
		}
		return "<h2>" + html + "</h2>"

	case notion.BlockHeading3:
		// Non-question h3 (rare, but handle it)
		html := r.Spans(b.Spans())
		if html == "" {
			return ""
		}
		return "<h3>" + html + "</h3>"

	case notion.BlockBulletedListItem, notion.BlockNumberedListItem:
		html := r.Spans(b.Spans())
		childrenHTML := ""
		if len(b.Children) > 0 {
			childrenHTML = r.Blocks(b.Children, nil)
		}
		return "<li>" + html + childrenHTML + "</li>"

	case notion.BlockDivider:
		return "<hr>"

	case notion.BlockQuote:
		html := r.Spans(b.Spans())
		if html == "" {
			return ""
		}
		return "<blockquote>" + html + "</blockquote>"

	case notion.BlockCallout:
		html := r.Spans(b.Spans())
		if html == "" {
			return ""
		}
		icon := ""
		if c := b.Content(); c != nil && c.Icon != nil {
			icon = c.Icon.Emoji
		}
		return `<div class="alert alert-info"><span class="alert-icon">` + icon + `</span><div>` + html + `</div></div>`

	default:
		r.logger.Warn("unknown block type, skipping", "type", b.Type, "block_id", b.ID)
		return ""
	}
}

// dropLeadQuestion removes a leading bold span ending in "?" and trims the
// leading whitespace left on the following span. The block itself is not
// mutated; the adjusted span is a copy.
func dropLeadQuestion(spans []notion.RichText) []notion.RichText {
	if len(spans) == 0 || !spans[0].IsBold() {
		return spans
	}
	if !strings.HasSuffix(strings.TrimSpace(spans[0].PlainText), "?") {
		return spans
	}

	rest := spans[1:]
	if len(rest) > 0 && rest[0].PlainText != "" {
		adjusted := make([]notion.RichText, len(rest))
		copy(adjusted, rest)
		adjusted[0].PlainText = strings.TrimLeft(adjusted[0].PlainText, " \t\n")
		return adjusted
	}
	return rest
}

// Blocks renders a block sequence, grouping consecutive sibling list items
// of the same kind into one <ul>/<ol> wrapper. A change of list kind or a
// non-list block flushes the pending wrapper. skip marks block indices
// whose leading question span must be suppressed.
func (r *Renderer) Blocks(blocks []notion.Block, skip map[int]bool) string {
	var result []string
	var pending []string
	pendingTag := ""

	flush := func() {
		if len(pending) > 0 {
			result = append(result, "<"+pendingTag+">"+strings.Join(pending, "")+"</"+pendingTag+">")
			pending = nil
		}
	}

	for i := range blocks {
		b := &blocks[i]

		if b.IsListItem() {
			tag := "ul"
			if b.Type == notion.BlockNumberedListItem {
				tag = "ol"
			}
			if pendingTag != tag {
				flush()
				pendingTag = tag
			}
			pending = append(pending, r.Block(b, false))
			continue
		}

		flush()
		pendingTag = ""
		if html := r.Block(b, skip[i]); html != "" {
			result = append(result, html)
		}
	}

	flush()
	return strings.Join(result, "\n")
}
