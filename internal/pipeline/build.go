package pipeline

import (
	"context"
	"log/slog"

	"permessi/internal/cache"
	"permessi/internal/domain/models"
	"permessi/internal/notion"
	"permessi/internal/render"
)

// Builder produces the template-data permit lists for one locale.
type Builder struct {
	Client   *notion.Client
	Cache    *cache.PageCache
	Renderer *render.Renderer
	Logger   *slog.Logger
}

// BuildPermits assembles the primary-locale permit list: fetch records,
// render each record's sections, classify placeholders, group variants.
// A record whose content cannot be fetched degrades to a placeholder so
// one bad page never sinks the build.
func (b *Builder) BuildPermits(ctx context.Context, databaseID string) ([]models.Permit, []models.PermitRecord, error) {
	records, err := FetchRecords(ctx, b.Client, databaseID, b.Logger)
	if err != nil {
		return nil, nil, err
	}

	permits := make([]models.Permit, 0, len(records))
	for i := range records {
		rec := &records[i]

		var sections []models.Section
		blocks, err := PageBlocks(ctx, b.Client, b.Cache, rec.ID, rec.LastEdited)
		if err != nil {
			b.Logger.Warn("content fetch failed, emitting placeholder", "tipo", rec.Tipo, "error", err)
		} else {
			sections = b.Renderer.Sections(blocks)
		}

		permits = append(permits, models.Permit{
			ID:            rec.ID,
			Slug:          rec.Slug,
			Tipo:          rec.Tipo,
			Emoji:         EmojiFor(rec.Tipo),
			Sections:      sections,
			IsPlaceholder: len(sections) == 0,
		})
	}

	return GroupVariants(permits, b.Logger), records, nil
}

// BuildLocalePermits assembles a secondary locale's permit list. Slugs come
// from the primary locale via each page's back-reference, so a permit keeps
// one URL across languages. Unresolvable pages are dropped, and the list
// gets the same variant grouping as the primary.
func (b *Builder) BuildLocalePermits(ctx context.Context, localeDatabaseID string, slugs map[string]string) ([]models.Permit, error) {
	pages, err := b.Client.SearchDatabasePages(ctx, localeDatabaseID)
	if err != nil {
		return nil, err
	}

	resolved := resolveLocalePages(pages, slugs, b.Logger)

	permits := make([]models.Permit, 0, len(resolved))
	for i := range resolved {
		lr := &resolved[i]

		var sections []models.Section
		blocks, err := PageBlocks(ctx, b.Client, b.Cache, lr.page.ID, lr.lastEdited)
		if err != nil {
			b.Logger.Warn("locale content fetch failed, emitting placeholder", "tipo", lr.tipo, "error", err)
		} else {
			sections = b.Renderer.Sections(blocks)
		}

		permits = append(permits, models.Permit{
			ID:            lr.page.ID,
			Slug:          lr.slug,
			Tipo:          lr.tipo,
			Emoji:         EmojiFor(lr.tipo),
			Sections:      sections,
			IsPlaceholder: len(sections) == 0,
		})
	}

	return GroupVariants(permits, b.Logger), nil
}

// BuildDocuments derives the per-procedure document checklists from the
// already-fetched records. Records without documents for a procedure do not
// get a page for it.
func BuildDocuments(records []models.PermitRecord) models.DocumentSet {
	var set models.DocumentSet

	for _, rec := range records {
		if len(rec.PrimoDocuments) > 0 {
			set.Primo = append(set.Primo, models.DocumentChecklist{
				Tipo:      rec.Tipo,
				Slug:      rec.Slug,
				Documents: rec.PrimoDocuments,
				Method:    rec.PrimoMethod,
				DocNotes:  rec.DocNotes,
			})
		}
		if len(rec.RinnovoDocuments) > 0 {
			set.Rinnovo = append(set.Rinnovo, models.DocumentChecklist{
				Tipo:      rec.Tipo,
				Slug:      rec.Slug,
				Documents: rec.RinnovoDocuments,
				Method:    rec.RinnovoMethod,
				DocNotes:  rec.DocNotes,
			})
		}
	}
	return set
}
