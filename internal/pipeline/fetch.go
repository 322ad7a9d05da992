// Package pipeline assembles the site build: record ingestion, cache-aware
// block fetching, variant grouping, secondary-locale resolution and the
// JSON artifacts the templates consume.
package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"permessi/internal/cache"
	"permessi/internal/domain/models"
	"permessi/internal/notion"
	"permessi/internal/slug"
)

// FetchRecords lists the source database and maps each page into a
// PermitRecord at this one boundary. Pages without a title are skipped
// with a warning; titles prefixed "[DUPLICATE]" are working copies and are
// skipped too.
func FetchRecords(ctx context.Context, client *notion.Client, databaseID string, logger *slog.Logger) ([]models.PermitRecord, error) {
	pages, err := client.SearchDatabasePages(ctx, databaseID)
	if err != nil {
		return nil, err
	}

	records := make([]models.PermitRecord, 0, len(pages))
	for i := range pages {
		page := &pages[i]
		props := page.Props()

		tipo := strings.TrimSpace(props.Title("Nome permesso"))
		if tipo == "" {
			logger.Warn("page without a permit name, skipping", "page_id", page.ID)
			continue
		}
		if strings.HasPrefix(tipo, "[DUPLICATE]") {
			logger.Info("skipping working copy", "tipo", tipo)
			continue
		}

		records = append(records, models.PermitRecord{
			ID:               page.ID,
			Tipo:             tipo,
			Slug:             slug.Make(tipo),
			PrimoDocuments:   props.MultiSelect("Doc primo rilascio"),
			RinnovoDocuments: props.MultiSelect("Doc rinnovo"),
			PrimoMethod:      props.FirstMultiSelect("Mod primo rilascio"),
			RinnovoMethod:    props.FirstMultiSelect("Mod rinnovo"),
			DocNotes:         strings.TrimSpace(props.RichTextJoined("Info extra su doc rilascio")),
			LastEdited:       page.LastEditedTime,
		})
	}

	logger.Info("fetched source records", "count", len(records), "pages_seen", len(pages))
	return records, nil
}

// PageBlocks returns a page's full block tree, served from the snapshot
// cache when the page's last-edited time still matches and fetched (then
// cached) otherwise.
func PageBlocks(ctx context.Context, client *notion.Client, store *cache.PageCache, pageID, lastEdited string) ([]notion.Block, error) {
	if blocks, ok := store.Get(pageID, lastEdited); ok {
		return blocks, nil
	}

	blocks, err := client.FetchBlockTree(ctx, pageID)
	if err != nil {
		return nil, err
	}
	// A failed snapshot write costs a refetch next run, nothing else.
	_ = store.Put(pageID, blocks, lastEdited)
	return blocks, nil
}
