package notion

import "encoding/json"

// Block type identifiers used by the content source. Anything else is
// dropped with a warning at render time.
const (
	BlockParagraph        = "paragraph"
	BlockHeading2         = "heading_2"
	BlockHeading3         = "heading_3"
	BlockBulletedListItem = "bulleted_list_item"
	BlockNumberedListItem = "numbered_list_item"
	BlockDivider          = "divider"
	BlockQuote            = "quote"
	BlockCallout          = "callout"
)

// Annotations is the style set of one rich-text span. The fields combine
// independently.
type Annotations struct {
	Bold          bool   `json:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Underline     bool   `json:"underline,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
	Code          bool   `json:"code,omitempty"`
	Color         string `json:"color,omitempty"`
}

// Link is a hyperlink target on a span (create format).
type Link struct {
	URL string `json:"url"`
}

// TextContent is the create-format payload of a span.
type TextContent struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

// RichText is one styled run of text. Responses carry PlainText and Href;
// create payloads carry Text.
type RichText struct {
	Type        string       `json:"type,omitempty"`
	Text        *TextContent `json:"text,omitempty"`
	PlainText   string       `json:"plain_text,omitempty"`
	Href        string       `json:"href,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

// IsBold reports whether the span carries the bold annotation.
func (rt *RichText) IsBold() bool {
	return rt.Annotations != nil && rt.Annotations.Bold
}

// Icon is a callout's leading glyph.
type Icon struct {
	Type  string `json:"type,omitempty"`
	Emoji string `json:"emoji,omitempty"`
}

// BlockContent is the payload stored under a block's type key. Children is
// only populated on create payloads; fetched children live on Block.Children.
type BlockContent struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
	Children []Block    `json:"children,omitempty"`
}

// DividerContent must marshal as an empty object; the create API rejects a
// divider body carrying any keys, rich_text included.
type DividerContent struct{}

// Block is one node of the content tree.
type Block struct {
	ID          string `json:"id,omitempty"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children,omitempty"`
	// Children holds recursively fetched child blocks (nested list items).
	Children []Block `json:"children,omitempty"`

	Paragraph        *BlockContent   `json:"paragraph,omitempty"`
	Heading2         *BlockContent   `json:"heading_2,omitempty"`
	Heading3         *BlockContent   `json:"heading_3,omitempty"`
	BulletedListItem *BlockContent   `json:"bulleted_list_item,omitempty"`
	NumberedListItem *BlockContent   `json:"numbered_list_item,omitempty"`
	Divider          *DividerContent `json:"divider,omitempty"`
	Quote            *BlockContent   `json:"quote,omitempty"`
	Callout          *BlockContent   `json:"callout,omitempty"`
}

// Content returns the payload for the block's declared type, or nil for
// types without one (divider, unknown).
func (b *Block) Content() *BlockContent {
	switch b.Type {
	case BlockParagraph:
		return b.Paragraph
	case BlockHeading2:
		return b.Heading2
	case BlockHeading3:
		return b.Heading3
	case BlockBulletedListItem:
		return b.BulletedListItem
	case BlockNumberedListItem:
		return b.NumberedListItem
	case BlockQuote:
		return b.Quote
	case BlockCallout:
		return b.Callout
	default:
		return nil
	}
}

// Spans returns the block's rich-text spans regardless of type, or nil.
func (b *Block) Spans() []RichText {
	c := b.Content()
	if c == nil {
		return nil
	}
	return c.RichText
}

// IsListItem reports whether the block is a bulleted or numbered list item.
func (b *Block) IsListItem() bool {
	return b.Type == BlockBulletedListItem || b.Type == BlockNumberedListItem
}

// Parent identifies the container a page belongs to.
type Parent struct {
	Type         string `json:"type,omitempty"`
	DatabaseID   string `json:"database_id,omitempty"`
	DataSourceID string `json:"data_source_id,omitempty"`
	PageID       string `json:"page_id,omitempty"`
}

// Page is one record of the remote content database. Properties stays raw;
// the typed accessor in properties.go is the only reader.
type Page struct {
	ID             string          `json:"id"`
	Parent         Parent          `json:"parent"`
	Archived       bool            `json:"archived,omitempty"`
	LastEditedTime string          `json:"last_edited_time,omitempty"`
	Properties     json.RawMessage `json:"properties,omitempty"`
}

// BelongsTo reports whether the page lives in the given database, matching
// either the database or data-source parent reference.
func (p *Page) BelongsTo(databaseID string) bool {
	id := NormalizeID(databaseID)
	return NormalizeID(p.Parent.DatabaseID) == id || NormalizeID(p.Parent.DataSourceID) == id
}

// Props returns the typed property accessor for the page.
func (p *Page) Props() Properties {
	return Properties(p.Properties)
}

// Database is the remote container for a locale's records.
type Database struct {
	ID string `json:"id"`
}

// SearchResponse is one page of the paginated listing.
type SearchResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// BlockListResponse is one page of a block's immediate children.
type BlockListResponse struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}
