// Package translate maintains the incremental translation state (memory,
// section-hash index, change detection) and drives the external translation
// provider for the content that actually changed.
package translate

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Hash returns the md5 hex digest used to content-address source text.
func Hash(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// MemoryEntry is one stored translation, keyed by the hash of its source
// text. Identical source text (whitespace included) always maps here no
// matter which record it came from.
type MemoryEntry struct {
	Source       string    `json:"source"`
	Target       string    `json:"target"`
	SourceHash   string    `json:"sourceHash"`
	TranslatedAt time.Time `json:"translatedAt"`
}

// Memory is the content-hash-keyed translation store for one language
// pair, loaded at run start and persisted at run end.
type Memory struct {
	entries map[string]MemoryEntry
}

func memoryPath(dir, sourceLang, targetLang string) string {
	return filepath.Join(dir, "translation-memory", fmt.Sprintf("%s-%s.json", sourceLang, targetLang))
}

// LoadMemory reads the memory for a language pair. Missing or corrupt
// files start an empty memory.
func LoadMemory(dir, sourceLang, targetLang string) *Memory {
	m := &Memory{entries: map[string]MemoryEntry{}}

	data, err := os.ReadFile(memoryPath(dir, sourceLang, targetLang))
	if err != nil {
		return m
	}
	if err := json.Unmarshal(data, &m.entries); err != nil {
		m.entries = map[string]MemoryEntry{}
	}
	return m
}

// Save persists the memory for a language pair as one whole-file write.
func (m *Memory) Save(dir, sourceLang, targetLang string) error {
	path := memoryPath(dir, sourceLang, targetLang)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create memory directory: %w", err)
	}
	data, err := json.MarshalIndent(m.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal memory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write memory: %w", err)
	}
	return nil
}

// Get returns the stored translation for source text, if any.
func (m *Memory) Get(source string) (string, bool) {
	entry, ok := m.entries[Hash(source)]
	if !ok {
		return "", false
	}
	return entry.Target, true
}

// Store records a translation, overwriting any prior entry for the same
// source text.
func (m *Memory) Store(source, target string) {
	hash := Hash(source)
	m.entries[hash] = MemoryEntry{
		Source:       source,
		Target:       target,
		SourceHash:   hash,
		TranslatedAt: time.Now().UTC(),
	}
}

// Len returns the number of stored translations.
func (m *Memory) Len() int {
	return len(m.entries)
}
