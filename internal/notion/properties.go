package notion

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Properties is the typed accessor over a page's raw property JSON. The
// remote schema is dynamic (named fields, per-field type envelopes), so
// every lookup fails soft: missing field, wrong type or empty value all
// come back as zero values. This is the single place the external schema
// shape is known.
type Properties []byte

// escapeKey escapes gjson path metacharacters in a property label.
func escapeKey(name string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)
	return r.Replace(name)
}

func (p Properties) get(path string) gjson.Result {
	return gjson.GetBytes(p, path)
}

// Title returns the first plain-text run of a title property.
func (p Properties) Title(name string) string {
	return p.get(escapeKey(name) + ".title.0.plain_text").String()
}

// RichTextJoined concatenates every plain-text run of a rich-text property.
func (p Properties) RichTextJoined(name string) string {
	var b strings.Builder
	for _, seg := range p.get(escapeKey(name) + ".rich_text.#.plain_text").Array() {
		b.WriteString(seg.String())
	}
	return b.String()
}

// MultiSelect returns the option names of a multi-select property.
func (p Properties) MultiSelect(name string) []string {
	results := p.get(escapeKey(name) + ".multi_select.#.name").Array()
	if len(results) == 0 {
		return nil
	}
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.String())
	}
	return names
}

// FirstMultiSelect returns the first option name of a multi-select property.
func (p Properties) FirstMultiSelect(name string) string {
	return p.get(escapeKey(name) + ".multi_select.0.name").String()
}

// Checkbox returns the value of a checkbox property.
func (p Properties) Checkbox(name string) bool {
	return p.get(escapeKey(name) + ".checkbox").Bool()
}

// Number returns the value of a number property.
func (p Properties) Number(name string) float64 {
	return p.get(escapeKey(name) + ".number").Float()
}
