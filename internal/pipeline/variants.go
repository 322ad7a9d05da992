package pipeline

import (
	"log/slog"
	"regexp"
	"strings"

	"permessi/internal/domain/models"
	"permessi/internal/slug"
)

// variantPattern splits names like "Permesso per lavoro a seguito di
// licenziamento" into a base name and a variant qualifier.
var variantPattern = regexp.MustCompile(`(?i)^(.+?)\s+a\s+seguito\s+di\s+(.+)$`)

// SplitVariant returns the base name and variant qualifier of a permit
// name, or ok=false when the name carries no variant marker.
func SplitVariant(tipo string) (base, variant string, ok bool) {
	m := variantPattern.FindStringSubmatch(tipo)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

// GroupVariants reshapes a flat permit list for navigation: names sharing
// a variant base become children under one synthetic parent. A base with a
// single variant stays a standalone permit. Output order is every
// standalone permit in fetch order, then each group (parent first, then
// its children) in first-seen order. Slug collisions keep the first permit
// and drop later ones with a warning.
func GroupVariants(permits []models.Permit, logger *slog.Logger) []models.Permit {
	type member struct {
		permit  models.Permit
		variant string
	}
	groups := map[string][]member{}
	baseName := map[string]string{}
	var groupOrder []string

	var result []models.Permit
	for _, p := range permits {
		base, variant, ok := SplitVariant(p.Tipo)
		if !ok {
			result = append(result, p)
			continue
		}
		key := strings.ToLower(base)
		if _, seen := baseName[key]; !seen {
			baseName[key] = base
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], member{permit: p, variant: variant})
	}

	for _, key := range groupOrder {
		members := groups[key]
		if len(members) < 2 {
			// Single variant: keep it standalone, marker and all.
			result = append(result, members[0].permit)
			continue
		}

		name := baseName[key]
		parentSlug := slug.Make(name)
		parent := models.Permit{
			Slug:            parentSlug,
			Tipo:            name,
			Emoji:           EmojiFor(name),
			IsVariantParent: true,
			BaseName:        name,
		}

		children := make([]models.Permit, 0, len(members))
		for _, m := range members {
			child := m.permit
			child.IsVariantChild = true
			child.ParentSlug = parentSlug
			child.BaseName = name
			child.VariantName = m.variant
			parent.Variants = append(parent.Variants, models.VariantRef{
				Slug:        child.Slug,
				Tipo:        child.Tipo,
				Emoji:       child.Emoji,
				VariantName: child.VariantName,
			})
			children = append(children, child)
		}

		result = append(result, parent)
		result = append(result, children...)
	}

	return dedupeSlugs(result, logger)
}

// dedupeSlugs enforces slug uniqueness with first-wins semantics.
func dedupeSlugs(permits []models.Permit, logger *slog.Logger) []models.Permit {
	seen := map[string]string{}
	out := make([]models.Permit, 0, len(permits))

	for _, p := range permits {
		if prior, dup := seen[p.Slug]; dup {
			logger.Warn("duplicate slug, dropping later permit", "slug", p.Slug, "kept", prior, "dropped", p.Tipo)
			continue
		}
		seen[p.Slug] = p.Tipo
		out = append(out, p)
	}
	return out
}
