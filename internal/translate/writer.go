package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"permessi/internal/domain"
	"permessi/internal/domain/models"
	"permessi/internal/notion"
)

const appendBatchSize = 100

// Writer maintains the translated counterpart database: schema, page
// lifecycle and content replacement.
type Writer struct {
	client     *notion.Client
	databaseID string
	logger     *slog.Logger
}

// NewWriter creates a writer bound to an already-resolved target database.
func NewWriter(client *notion.Client, databaseID string, logger *slog.Logger) *Writer {
	return &Writer{client: client, databaseID: databaseID, logger: logger}
}

// DatabaseID returns the resolved target database ID.
func (w *Writer) DatabaseID() string {
	return w.databaseID
}

// targetSchema is the property schema of a translated counterpart
// database. It mirrors the source database plus a back-reference column
// linking each translated page to its source record.
func targetSchema() map[string]any {
	return map[string]any{
		"Nome permesso":              map[string]any{"title": map[string]any{}},
		"Doc primo rilascio":         map[string]any{"multi_select": map[string]any{}},
		"Doc rinnovo":                map[string]any{"multi_select": map[string]any{}},
		"Mod primo rilascio":         map[string]any{"multi_select": map[string]any{}},
		"Mod rinnovo":                map[string]any{"multi_select": map[string]any{}},
		"Info extra su doc rilascio": map[string]any{"rich_text": map[string]any{}},
		"IT Page ID":                 map[string]any{"rich_text": map[string]any{}},
	}
}

// EnsureDatabase resolves the target database: an explicitly configured ID
// is verified; otherwise a new database is created under the configured
// parent page. Without either there is nowhere to write.
func EnsureDatabase(ctx context.Context, client *notion.Client, configuredID, parentPageID, title string, logger *slog.Logger) (*Writer, error) {
	if configuredID != "" {
		db, err := client.RetrieveDatabase(ctx, configuredID)
		if err != nil {
			return nil, fmt.Errorf("retrieve target database %s: %w", configuredID, err)
		}
		return NewWriter(client, db.ID, logger), nil
	}

	if parentPageID == "" {
		return nil, fmt.Errorf("target database: %w", domain.ErrNotConfigured)
	}

	logger.Info("creating target database", "title", title, "parent_page", parentPageID)
	db, err := client.CreateDatabase(ctx, parentPageID, title, targetSchema())
	if err != nil {
		return nil, fmt.Errorf("create target database: %w", err)
	}
	logger.Info("target database created; set its ID in the environment to reuse it", "database_id", db.ID)
	return NewWriter(client, db.ID, logger), nil
}

// FindTargetPage locates the translated counterpart of a source record by
// its back-reference column. Used when the index has no entry (first run
// against a pre-populated database).
func (w *Writer) FindTargetPage(ctx context.Context, sourceID string) (*notion.Page, error) {
	pages, err := w.client.SearchDatabasePages(ctx, w.databaseID)
	if err != nil {
		return nil, err
	}
	want := notion.NormalizeID(sourceID)
	for i := range pages {
		ref := notion.NormalizeID(pages[i].Props().RichTextJoined("IT Page ID"))
		if ref != "" && ref == want {
			return &pages[i], nil
		}
	}
	return nil, nil
}

// BuildProperties assembles the create/update property payload for a
// translated record. tr maps source text to target text (identity when a
// translation is missing). Multi-select option names cannot contain
// commas, so translated document names swap them for semicolons.
func BuildProperties(rec *models.PermitRecord, tr func(string) string) map[string]any {
	multiSelect := func(names []string) map[string]any {
		options := make([]map[string]any, 0, len(names))
		for _, name := range names {
			translated := strings.ReplaceAll(tr(name), ",", ";")
			options = append(options, map[string]any{"name": translated})
		}
		return map[string]any{"multi_select": options}
	}

	props := map[string]any{
		"Nome permesso": map[string]any{
			"title": []map[string]any{
				{"text": map[string]any{"content": tr(rec.Tipo)}},
			},
		},
		"Doc primo rilascio": multiSelect(rec.PrimoDocuments),
		"Doc rinnovo":        multiSelect(rec.RinnovoDocuments),
		"IT Page ID": map[string]any{
			"rich_text": []map[string]any{
				{"text": map[string]any{"content": rec.ID}},
			},
		},
	}

	if rec.PrimoMethod != "" {
		props["Mod primo rilascio"] = multiSelect([]string{rec.PrimoMethod})
	}
	if rec.RinnovoMethod != "" {
		props["Mod rinnovo"] = multiSelect([]string{rec.RinnovoMethod})
	}
	if rec.DocNotes != "" {
		props["Info extra su doc rilascio"] = map[string]any{
			"rich_text": []map[string]any{
				{"text": map[string]any{"content": tr(rec.DocNotes)}},
			},
		}
	}

	return props
}

// WritePage creates or updates the translated counterpart of one record:
// properties replaced, existing content blocks deleted one by one, new
// blocks appended in API-sized batches. Returns the target page ID.
func (w *Writer) WritePage(ctx context.Context, rec *models.PermitRecord, knownTargetID string, properties map[string]any, blocks []notion.Block) (string, error) {
	target, err := w.resolveTarget(ctx, rec.ID, knownTargetID)
	if err != nil {
		return "", err
	}

	if target == nil {
		page, err := w.client.CreatePage(ctx, w.databaseID, properties)
		if err != nil {
			return "", fmt.Errorf("create translated page for %q: %w", rec.Tipo, err)
		}
		target = page
		w.logger.Info("created translated page", "tipo", rec.Tipo, "page_id", page.ID)
	} else {
		if err := w.client.UpdatePageProperties(ctx, target.ID, properties); err != nil {
			return "", fmt.Errorf("update translated properties for %q: %w", rec.Tipo, err)
		}
		if err := w.clearBlocks(ctx, target.ID); err != nil {
			return "", fmt.Errorf("clear translated content for %q: %w", rec.Tipo, err)
		}
	}

	for start := 0; start < len(blocks); start += appendBatchSize {
		end := min(start+appendBatchSize, len(blocks))
		if err := w.client.AppendBlockChildren(ctx, target.ID, blocks[start:end]); err != nil {
			return "", fmt.Errorf("append translated blocks for %q: %w", rec.Tipo, err)
		}
	}

	return target.ID, nil
}

// resolveTarget finds the existing counterpart page, preferring the index's
// known ID and falling back to the back-reference search. An archived
// counterpart counts as missing so it gets recreated.
func (w *Writer) resolveTarget(ctx context.Context, sourceID, knownTargetID string) (*notion.Page, error) {
	if knownTargetID != "" {
		page, err := w.client.RetrievePage(ctx, knownTargetID)
		if err != nil {
			w.logger.Warn("indexed target page not retrievable, searching instead", "page_id", knownTargetID, "error", err)
		} else if !page.Archived {
			return page, nil
		}
	}

	page, err := w.FindTargetPage(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("find target page: %w", err)
	}
	if page != nil && page.Archived {
		return nil, nil
	}
	return page, nil
}

func (w *Writer) clearBlocks(ctx context.Context, pageID string) error {
	existing, err := w.client.FetchBlockTree(ctx, pageID)
	if err != nil {
		return err
	}
	for i := range existing {
		if err := w.client.DeleteBlock(ctx, existing[i].ID); err != nil {
			return fmt.Errorf("delete block %s: %w", existing[i].ID, err)
		}
	}
	return nil
}

// ArchiveDeleted archives counterpart pages whose source record no longer
// exists, pruning their index entries. Returns the number archived.
func (w *Writer) ArchiveDeleted(ctx context.Context, ix *Index, currentIDs map[string]bool) int {
	archived := 0
	for sourceID, entry := range ix.Pages {
		if currentIDs[sourceID] {
			continue
		}
		w.logger.Info("source record gone, archiving translated counterpart", "source_id", sourceID, "target_id", entry.TargetPageID)
		if entry.TargetPageID != "" {
			if err := w.client.ArchivePage(ctx, entry.TargetPageID); err != nil {
				w.logger.Warn("failed to archive translated page", "page_id", entry.TargetPageID, "error", err)
				continue
			}
		}
		delete(ix.Pages, sourceID)
		archived++
	}
	return archived
}

// Verify re-reads a written counterpart and reports discrepancies: missing
// title, or a block count far from what was written (the API may split or
// merge a few blocks, so a small delta passes).
func (w *Writer) Verify(ctx context.Context, targetPageID string, expectedBlocks int) []string {
	var problems []string

	page, err := w.client.RetrievePage(ctx, targetPageID)
	if err != nil {
		return []string{fmt.Sprintf("retrieve page %s: %v", targetPageID, err)}
	}
	if page.Props().Title("Nome permesso") == "" {
		problems = append(problems, fmt.Sprintf("page %s has an empty title", targetPageID))
	}

	blocks, err := w.client.FetchBlockTree(ctx, targetPageID)
	if err != nil {
		return append(problems, fmt.Sprintf("fetch blocks of %s: %v", targetPageID, err))
	}
	delta := len(blocks) - expectedBlocks
	if delta < -5 || delta > 5 {
		problems = append(problems, fmt.Sprintf("page %s has %d blocks, expected about %d", targetPageID, len(blocks), expectedBlocks))
	}

	return problems
}
