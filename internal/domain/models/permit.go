package models

// Section is one question+answer unit derived from a contiguous block run.
// Content is the rendered HTML of every non-question block until the next
// question. Index mirrors source ordering.
type Section struct {
	Question string `json:"question"`
	Content  string `json:"content"`
	Index    int    `json:"index"`
}

// VariantRef is the navigation summary a variant parent keeps for each child.
type VariantRef struct {
	Slug        string `json:"slug"`
	Tipo        string `json:"tipo"`
	Emoji       string `json:"emoji"`
	VariantName string `json:"variantName"`
}

// Permit is the per-record template-data object for content-detail pages.
// Synthetic variant parents carry no ID and no sections.
type Permit struct {
	ID            string    `json:"id,omitempty"`
	Slug          string    `json:"slug"`
	Tipo          string    `json:"tipo"`
	Emoji         string    `json:"emoji"`
	Sections      []Section `json:"sections"`
	IsPlaceholder bool      `json:"isPlaceholder"`

	// Variant grouping (navigation)
	IsVariantParent bool         `json:"isVariantParent,omitempty"`
	IsVariantChild  bool         `json:"isVariantChild,omitempty"`
	BaseName        string       `json:"baseName,omitempty"`
	VariantName     string       `json:"variantName,omitempty"`
	ParentSlug      string       `json:"parentSlug,omitempty"` // critical for breadcrumbs
	Variants        []VariantRef `json:"variants,omitempty"`
}

// PermitRecord is the fixed internal shape a remote record is mapped into at
// the ingestion boundary. Property access happens once, here; everything
// downstream works with this struct.
type PermitRecord struct {
	ID               string
	Tipo             string
	Slug             string
	PrimoDocuments   []string
	RinnovoDocuments []string
	PrimoMethod      string
	RinnovoMethod    string
	DocNotes         string
	LastEdited       string
}

// DocumentChecklist is the template-data object for one procedural variant
// (first issuance or renewal) of a permit's document requirements.
type DocumentChecklist struct {
	Tipo      string   `json:"tipo"`
	Slug      string   `json:"slug"`
	Documents []string `json:"documents"`
	Method    string   `json:"method,omitempty"`
	DocNotes  string   `json:"docNotes,omitempty"`
}

// DocumentSet groups the checklists for pagination: one page per permit per
// procedural variant.
type DocumentSet struct {
	Primo   []DocumentChecklist `json:"primo"`
	Rinnovo []DocumentChecklist `json:"rinnovo"`
}
