package config

import (
	"os"
)

// Default database IDs for the hosted content source. Overridable via env
// so staging copies of the databases can be targeted without code changes.
const (
	defaultDatabaseID = "1ad7355e-7f7f-8088-a065-e814c92e2cfd"
)

type Config struct {
	Environment string
	// Content source
	NotionAPIKey string
	DatabaseID   string // primary locale (IT) permits database
	DatabaseENID string // EN translations database (created on first run)
	DatabaseFRID string // FR translations database (created on first run)
	ParentPageID string // page hosting created locale databases
	// Translation provider
	AnthropicAPIKey  string
	TranslationModel string
	// Local state and artifacts
	CacheDir  string
	OutputDir string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Environment:      env,
		NotionAPIKey:     getEnv("NOTION_API_KEY", ""),
		DatabaseID:       getEnv("NOTION_DATABASE_ID", defaultDatabaseID),
		DatabaseENID:     getEnv("NOTION_DATABASE_EN_ID", ""),
		DatabaseFRID:     getEnv("NOTION_DATABASE_FR_ID", ""),
		ParentPageID:     getEnv("NOTION_PARENT_PAGE_ID", ""),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		TranslationModel: getEnv("TRANSLATION_MODEL", "claude-sonnet-4-20250514"),
		CacheDir:         getEnv("CACHE_DIR", ".notion-cache"),
		OutputDir:        getEnv("OUTPUT_DIR", "_data"),
		Debug:            getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// TargetDatabaseID returns the configured translations database for a locale.
func (c *Config) TargetDatabaseID(lang string) string {
	switch lang {
	case "fr":
		return c.DatabaseFRID
	default:
		return c.DatabaseENID
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
