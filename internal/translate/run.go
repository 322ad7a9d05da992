package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"permessi/internal/cache"
	"permessi/internal/domain"
	"permessi/internal/domain/models"
	"permessi/internal/notion"
	"permessi/internal/pipeline"
	"permessi/internal/render"
)

// RunOptions are the CLI-facing knobs of one translation run.
type RunOptions struct {
	DryRun     bool
	Force      bool
	Verify     bool
	Permit     string
	TargetLang string
}

// Validate checks option consistency before any network call.
func (o RunOptions) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.TargetLang, validation.Required, validation.In("en", "fr")),
	)
}

// RunStats summarizes one translation run for the final report.
type RunStats struct {
	Total        int
	Translated   int
	Skipped      int
	Placeholder  int
	Errors       int
	Archived     int
	APICalls     int
	MemoryHits   int
	MemoryMisses int
	VerifyErrors int
}

// Runner orchestrates one incremental translation run: fetch source
// records, detect changes against the index, translate what changed, write
// counterparts, archive the gone, persist state.
type Runner struct {
	Client     *notion.Client
	Writer     *Writer
	Translator *Translator
	Cache      *cache.PageCache
	Index      *Index
	DatabaseID string
	Logger     *slog.Logger

	// SaveState persists index and memory. Called after every successful
	// record so an interrupted run keeps the work already paid for.
	SaveState func() error
}

// Run executes the translation pass and returns its stats. State (index,
// memory) is mutated in place; SaveState checkpoints it mid-run and the
// caller persists it at the end.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*RunStats, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run options: %w", err)
	}

	records, err := pipeline.FetchRecords(ctx, r.Client, r.DatabaseID, r.Logger)
	if err != nil {
		return nil, fmt.Errorf("fetch source records: %w", err)
	}

	if opts.Permit != "" {
		records = filterRecords(records, opts.Permit)
		if len(records) == 0 {
			return nil, fmt.Errorf("permit filter %q: %w", opts.Permit, domain.ErrNotFound)
		}
	}

	stats := &RunStats{Total: len(records)}

	if opts.DryRun {
		r.dryRun(records, opts, stats)
		return stats, nil
	}

	currentIDs := make(map[string]bool, len(records))
	for i := range records {
		rec := &records[i]
		currentIDs[rec.ID] = true

		if err := r.processRecord(ctx, rec, opts, stats); err != nil {
			r.Logger.Error("record failed, continuing", "tipo", rec.Tipo, "error", err)
			stats.Errors++
		}
	}

	// A filtered run sees only a slice of the source set; archiving on
	// partial knowledge would wipe valid counterparts.
	if opts.Permit == "" {
		stats.Archived = r.Writer.ArchiveDeleted(ctx, r.Index, currentIDs)
	}

	stats.APICalls = r.Translator.APICalls()
	stats.MemoryHits = r.Translator.MemoryHits()
	stats.MemoryMisses = r.Translator.MemoryMisses()
	return stats, nil
}

func filterRecords(records []models.PermitRecord, permit string) []models.PermitRecord {
	needle := strings.ToLower(permit)
	var out []models.PermitRecord
	for _, rec := range records {
		if rec.Slug == needle || strings.Contains(strings.ToLower(rec.Tipo), needle) {
			out = append(out, rec)
		}
	}
	return out
}

// dryRun reports what a real run would do from the listing and the stored
// index alone: no block fetches, no provider calls, no writes. A record's
// edited content shows up through its moved edit timestamp, so section
// hashing is not needed here.
func (r *Runner) dryRun(records []models.PermitRecord, opts RunOptions, stats *RunStats) {
	for i := range records {
		rec := &records[i]
		entry, indexed := r.Index.Pages[rec.ID]

		switch {
		case opts.Force || !indexed:
			r.Logger.Info("dry run: would translate", "tipo", rec.Tipo, "slug", rec.Slug, "new", !indexed)
			stats.Translated++
		case entry.LastEditedTime != rec.LastEdited || entry.PropertyHash != HashProperties(rec):
			r.Logger.Info("dry run: would translate", "tipo", rec.Tipo, "slug", rec.Slug, "new", false)
			stats.Translated++
		default:
			r.Logger.Info("dry run: unchanged", "tipo", rec.Tipo, "slug", rec.Slug)
			stats.Skipped++
		}
	}
	r.Logger.Info("dry run complete, no block or provider calls made", "records", len(records))
}

func (r *Runner) processRecord(ctx context.Context, rec *models.PermitRecord, opts RunOptions, stats *RunStats) error {
	blocks, err := pipeline.PageBlocks(ctx, r.Client, r.Cache, rec.ID, rec.LastEdited)
	if err != nil {
		return fmt.Errorf("fetch blocks: %w", err)
	}

	sections := render.SegmentRaw(blocks)
	if len(sections) == 0 {
		r.Logger.Info("no sections, skipping placeholder record", "tipo", rec.Tipo)
		stats.Placeholder++
		return nil
	}

	propHash := HashProperties(rec)
	changes := r.Index.DetectChanges(rec.ID, sections, propHash, opts.Force)
	if changes.Unchanged() {
		r.Logger.Debug("unchanged, skipping", "tipo", rec.Tipo)
		stats.Skipped++
		return nil
	}

	r.Logger.Info("translating record", "tipo", rec.Tipo,
		"new", changes.IsNew, "properties", changes.PropertiesChanged, "changed_sections", len(changes.ChangedSections))

	// One batch covers both property strings and section content, so the
	// memory dedupes across them.
	texts := []string{rec.Tipo}
	texts = append(texts, rec.PrimoDocuments...)
	texts = append(texts, rec.RinnovoDocuments...)
	if rec.PrimoMethod != "" {
		texts = append(texts, rec.PrimoMethod)
	}
	if rec.RinnovoMethod != "" {
		texts = append(texts, rec.RinnovoMethod)
	}
	if rec.DocNotes != "" {
		texts = append(texts, rec.DocNotes)
	}
	texts = append(texts, CollectSegments(blocks)...)

	translations, err := r.Translator.TranslateBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("translate: %w", err)
	}

	tr := func(source string) string {
		if target, ok := translations[strings.TrimSpace(source)]; ok {
			return target
		}
		return source
	}

	properties := BuildProperties(rec, tr)
	translated := TranslateBlocks(blocks, translations)

	knownTarget := r.Index.Pages[rec.ID].TargetPageID
	targetID, err := r.Writer.WritePage(ctx, rec, knownTarget, properties, translated)
	if err != nil {
		return fmt.Errorf("write translated page: %w", err)
	}

	r.Index.Record(rec.ID, targetID, rec.LastEdited, propHash, sections)
	stats.Translated++

	if r.SaveState != nil {
		if err := r.SaveState(); err != nil {
			r.Logger.Warn("failed to persist translation state", "error", err)
		}
	}

	if opts.Verify {
		problems := r.Writer.Verify(ctx, targetID, len(translated))
		for _, p := range problems {
			r.Logger.Warn("verification problem", "tipo", rec.Tipo, "problem", p)
		}
		stats.VerifyErrors += len(problems)
	}

	return nil
}
