package pipeline

import (
	"context"
	"log/slog"

	"permessi/internal/notion"
	"permessi/internal/slug"
)

// BuildSlugMap lists the primary-locale database and maps each record's
// normalized ID to the slug of its name. Secondary locales resolve their
// back-references through this map so every locale shares one URL space.
func BuildSlugMap(ctx context.Context, client *notion.Client, primaryDatabaseID string) (map[string]string, error) {
	pages, err := client.SearchDatabasePages(ctx, primaryDatabaseID)
	if err != nil {
		return nil, err
	}

	slugs := make(map[string]string, len(pages))
	for i := range pages {
		tipo := pages[i].Props().Title("Nome permesso")
		if tipo == "" {
			continue
		}
		slugs[notion.NormalizeID(pages[i].ID)] = slug.Make(tipo)
	}
	return slugs, nil
}

// localeRecord is a secondary-locale page resolved against the primary
// slug map.
type localeRecord struct {
	page       notion.Page
	tipo       string
	slug       string
	lastEdited string
}

// resolveLocalePages maps secondary-locale pages to primary slugs via
// their back-reference column. Pages whose reference resolves to nothing
// are dropped with a warning; slug collisions keep the first page.
func resolveLocalePages(pages []notion.Page, slugs map[string]string, logger *slog.Logger) []localeRecord {
	var records []localeRecord
	taken := map[string]string{}

	for i := range pages {
		page := &pages[i]
		props := page.Props()

		tipo := props.Title("Nome permesso")
		if tipo == "" {
			logger.Warn("locale page without a title, skipping", "page_id", page.ID)
			continue
		}

		sourceID := notion.NormalizeID(props.RichTextJoined("IT Page ID"))
		resolved, ok := slugs[sourceID]
		if !ok || resolved == "" {
			logger.Warn("locale page does not resolve to a primary record, skipping",
				"tipo", tipo, "source_ref", sourceID)
			continue
		}

		if prior, dup := taken[resolved]; dup {
			logger.Warn("duplicate slug in locale database, dropping later page",
				"slug", resolved, "kept", prior, "dropped", tipo)
			continue
		}
		taken[resolved] = tipo

		records = append(records, localeRecord{
			page:       *page,
			tipo:       tipo,
			slug:       resolved,
			lastEdited: page.LastEditedTime,
		})
	}
	return records
}
