// Command translate keeps a target-locale copy of the permits database in
// sync with the Italian source: it detects changed records and sections via
// content hashes, translates only the changed text through the provider
// (memory first), and writes the results back as counterpart pages.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"permessi/internal/cache"
	"permessi/internal/config"
	"permessi/internal/notion"
	"permessi/internal/translate"
)

const maxLogFiles = 10

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would be translated without calling the provider or writing")
	force := flag.Bool("force", false, "retranslate everything, ignoring stored hashes")
	verify := flag.Bool("verify", false, "re-read written pages and report discrepancies")
	permit := flag.String("permit", "", "only process records whose slug or name matches")
	lang := flag.String("lang", "en", "target language (en or fr)")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	logger := config.NewLogger(cfg)

	opts := translate.RunOptions{
		DryRun:     *dryRun,
		Force:      *force,
		Verify:     *verify,
		Permit:     *permit,
		TargetLang: *lang,
	}
	if err := opts.Validate(); err != nil {
		log.Fatalf("invalid options: %v", err)
	}

	if cfg.NotionAPIKey == "" || cfg.AnthropicAPIKey == "" {
		logger.Warn("NOTION_API_KEY or ANTHROPIC_API_KEY not set, nothing to do")
		return
	}

	// Mirror the run to a timestamped log file; translation runs are rare
	// and their decisions are worth keeping.
	logFile, err := config.SetupLogFile("logs", maxLogFiles)
	if err != nil {
		logger.Warn("cannot create run log, continuing on stdout only", "error", err)
	} else {
		defer func() { _ = logFile.Close() }()
		logger = slog.New(slog.NewTextHandler(io.MultiWriter(os.Stdout, logFile), nil))
	}

	ctx := context.Background()
	client := notion.NewClient(cfg.NotionAPIKey, logger)
	store := cache.New(cfg.CacheDir, logger)

	memory := translate.LoadMemory(cfg.CacheDir, "it", opts.TargetLang)
	indexPath := translate.IndexPath(cfg.CacheDir, opts.TargetLang)
	index := translate.LoadIndex(indexPath)
	logger.Info("state loaded", "memory_entries", memory.Len(), "indexed_pages", len(index.Pages), "lang", opts.TargetLang)

	glossary, err := translate.LoadGlossary()
	if err != nil {
		log.Fatalf("translation glossary: %v", err)
	}
	system := translate.BuildSystemPrompt(glossary, "it", opts.TargetLang)

	translator, err := translate.NewTranslator(cfg.AnthropicAPIKey, cfg.TranslationModel, system, memory, logger)
	if err != nil {
		log.Fatalf("translator: %v", err)
	}

	var writer *translate.Writer
	if opts.DryRun {
		writer = translate.NewWriter(client, cfg.TargetDatabaseID(opts.TargetLang), logger)
	} else {
		title := fmt.Sprintf("Permessi (%s)", opts.TargetLang)
		writer, err = translate.EnsureDatabase(ctx, client, cfg.TargetDatabaseID(opts.TargetLang), cfg.ParentPageID, title, logger)
		if err != nil {
			log.Fatalf("target database: %v", err)
		}
	}

	saveState := func() error {
		if err := index.Save(indexPath); err != nil {
			return err
		}
		return memory.Save(cfg.CacheDir, "it", opts.TargetLang)
	}

	runner := &translate.Runner{
		Client:     client,
		Writer:     writer,
		Translator: translator,
		Cache:      store,
		Index:      index,
		DatabaseID: cfg.DatabaseID,
		Logger:     logger,
		SaveState:  saveState,
	}

	stats, err := runner.Run(ctx, opts)
	if err != nil {
		log.Fatalf("translation run: %v", err)
	}

	if !opts.DryRun {
		if err := saveState(); err != nil {
			logger.Error("failed to save translation state", "error", err)
		}
	}

	printReport(opts, stats)
}

func printReport(opts translate.RunOptions, stats *translate.RunStats) {
	mode := "run"
	if opts.DryRun {
		mode = "dry run"
	}
	fmt.Println()
	fmt.Printf("=== Translation %s (it -> %s) ===\n", mode, opts.TargetLang)
	fmt.Printf("  records:        %d\n", stats.Total)
	fmt.Printf("  translated:     %d\n", stats.Translated)
	fmt.Printf("  unchanged:      %d\n", stats.Skipped)
	fmt.Printf("  placeholders:   %d\n", stats.Placeholder)
	fmt.Printf("  errors:         %d\n", stats.Errors)
	fmt.Printf("  archived:       %d\n", stats.Archived)
	fmt.Printf("  provider calls: %d\n", stats.APICalls)
	fmt.Printf("  memory hits:    %d\n", stats.MemoryHits)
	fmt.Printf("  memory misses:  %d\n", stats.MemoryMisses)
	if opts.Verify {
		fmt.Printf("  verify issues:  %d\n", stats.VerifyErrors)
	}
}
