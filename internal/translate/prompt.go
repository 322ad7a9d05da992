package translate

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed glossary.yaml
var glossaryYAML []byte

// PromptGlossary carries the fixed term renderings and the tokens the
// provider must leave untouched.
type PromptGlossary struct {
	Terms          map[string]string `yaml:"terms"`
	DoNotTranslate []string          `yaml:"do_not_translate"`
}

// LoadGlossary parses the embedded translation glossary.
func LoadGlossary() (*PromptGlossary, error) {
	var g PromptGlossary
	if err := yaml.Unmarshal(glossaryYAML, &g); err != nil {
		return nil, fmt.Errorf("parse translation glossary: %w", err)
	}
	return &g, nil
}

var languageNames = map[string]string{
	"it": "Italian",
	"en": "English",
	"fr": "French",
}

// BuildSystemPrompt assembles the system prompt for one language pair:
// role, fixed glossary (source language only), invariants the translation
// must preserve, and the numbered-line batch protocol.
func BuildSystemPrompt(g *PromptGlossary, sourceLang, targetLang string) string {
	src := languageNames[sourceLang]
	if src == "" {
		src = sourceLang
	}
	dst := languageNames[targetLang]
	if dst == "" {
		dst = targetLang
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a professional translator specializing in %s immigration and residence-permit terminology. Translate from %s to %s.\n\n", src, src, dst)

	if g != nil && len(g.Terms) > 0 && sourceLang == "it" && targetLang == "en" {
		b.WriteString("Use these fixed renderings for domain terms:\n")
		keys := make([]string, 0, len(g.Terms))
		for k := range g.Terms {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %q -> %q\n", k, g.Terms[k])
		}
		b.WriteString("\n")
	}

	if g != nil && len(g.DoNotTranslate) > 0 {
		b.WriteString("Never translate these tokens; copy them verbatim: ")
		b.WriteString(strings.Join(g.DoNotTranslate, ", "))
		b.WriteString("\n\n")
	}

	b.WriteString("Rules:\n")
	b.WriteString("- Preserve all numbers, euro amounts and placeholders like __COST0__ exactly as written.\n")
	b.WriteString("- Preserve URLs, email addresses and legal references (D.Lgs., D.P.R., article numbers) verbatim.\n")
	b.WriteString("- Keep the tone informative and neutral; these are official guidance texts.\n")
	b.WriteString("- Input lines are numbered \"N: text\". Reply with exactly one line per input line, in the same \"N: translation\" format, same numbering, no extra commentary.\n")

	return b.String()
}
