// Command build produces the site's template-data artifacts: per-locale
// permit lists, document checklists and the redirect table, all as JSON
// under the output directory. Without a content API key it writes empty
// artifacts and exits cleanly so templates always have data to render.
package main

import (
	"context"
	"log"
	"path/filepath"

	"github.com/joho/godotenv"

	"permessi/internal/cache"
	"permessi/internal/config"
	"permessi/internal/domain/models"
	"permessi/internal/notion"
	"permessi/internal/pipeline"
	"permessi/internal/render"
	"permessi/internal/slug"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := config.NewLogger(cfg)
	ctx := context.Background()

	out := func(name string) string { return filepath.Join(cfg.OutputDir, name) }

	redirects, err := slug.Redirects()
	if err != nil {
		log.Fatalf("redirect table: %v", err)
	}

	if cfg.NotionAPIKey == "" {
		logger.Warn("NOTION_API_KEY not set, writing empty artifacts")
		writeArtifacts(out, []models.Permit{}, []models.Permit{}, []models.Permit{}, models.DocumentSet{}, redirects)
		return
	}

	glossary, err := render.LoadGlossary()
	if err != nil {
		log.Fatalf("glossary: %v", err)
	}

	client := notion.NewClient(cfg.NotionAPIKey, logger)
	store := cache.New(cfg.CacheDir, logger)

	builder := &pipeline.Builder{
		Client:   client,
		Cache:    store,
		Renderer: render.NewRenderer(glossary, "dizionario.html", logger),
		Logger:   logger,
	}

	permits, records, err := builder.BuildPermits(ctx, cfg.DatabaseID)
	if err != nil {
		log.Fatalf("build permits: %v", err)
	}
	documents := pipeline.BuildDocuments(records)

	// Secondary locales degrade independently: a broken locale database
	// yields an empty list for that locale, never a failed build.
	slugs, err := pipeline.BuildSlugMap(ctx, client, cfg.DatabaseID)
	if err != nil {
		logger.Error("slug map failed, secondary locales will be empty", "error", err)
		slugs = map[string]string{}
	}

	localeBuilder := &pipeline.Builder{
		Client:   client,
		Cache:    store,
		Renderer: render.NewRenderer(nil, "", logger),
		Logger:   logger,
	}

	buildLocale := func(lang, databaseID string) []models.Permit {
		if databaseID == "" {
			logger.Warn("locale database not configured, writing empty list", "lang", lang)
			return []models.Permit{}
		}
		list, err := localeBuilder.BuildLocalePermits(ctx, databaseID, slugs)
		if err != nil {
			logger.Error("locale build failed, writing empty list", "lang", lang, "error", err)
			return []models.Permit{}
		}
		return list
	}

	permitsEN := buildLocale("en", cfg.DatabaseENID)
	permitsFR := buildLocale("fr", cfg.DatabaseFRID)

	writeArtifacts(out, permits, permitsEN, permitsFR, documents, redirects)

	logger.Info("build complete",
		"permits", len(permits), "permits_en", len(permitsEN), "permits_fr", len(permitsFR),
		"documents_primo", len(documents.Primo), "documents_rinnovo", len(documents.Rinnovo),
		"redirects", len(redirects), "cached_pages", store.Len())
}

func writeArtifacts(out func(string) string, it, en, fr []models.Permit, documents models.DocumentSet, redirects []slug.Redirect) {
	artifacts := []struct {
		name string
		data any
	}{
		{"permits.json", it},
		{"permits-en.json", en},
		{"permits-fr.json", fr},
		{"documents.json", documents},
		{"permit-redirects.json", redirects},
	}
	for _, a := range artifacts {
		if err := pipeline.WriteJSON(out(a.name), a.data); err != nil {
			log.Fatalf("write %s: %v", a.name, err)
		}
	}
}
