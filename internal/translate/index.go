package translate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"permessi/internal/domain/models"
	"permessi/internal/notion"
	"permessi/internal/render"
)

// IndexEntry tracks the translated counterpart of one source record and the
// content hashes its translation was produced from.
type IndexEntry struct {
	TargetPageID   string            `json:"targetPageId"`
	LastEditedTime string            `json:"lastEditedTime"`
	PropertyHash   string            `json:"propertyHash"`
	SectionHashes  map[string]string `json:"sectionHashes"`
}

// Index is the per-record translation state, keyed by source record ID.
type Index struct {
	Pages map[string]IndexEntry `json:"pages"`
}

// IndexPath returns the on-disk location of the index for a target locale.
func IndexPath(cacheDir, targetLang string) string {
	return filepath.Join(cacheDir, fmt.Sprintf("translation-index-%s.json", targetLang))
}

// LoadIndex reads the translation index; missing or corrupt files start an
// empty index.
func LoadIndex(path string) *Index {
	ix := &Index{Pages: map[string]IndexEntry{}}

	data, err := os.ReadFile(path)
	if err != nil {
		return ix
	}
	if err := json.Unmarshal(data, ix); err != nil || ix.Pages == nil {
		ix.Pages = map[string]IndexEntry{}
	}
	return ix
}

// Save persists the index as one whole-file write.
func (ix *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	data, err := json.MarshalIndent(ix, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal translation index: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write translation index: %w", err)
	}
	return nil
}

// HashSection hashes a section's question plus the plain text of every
// span across its blocks and their nested children, in order. Any change
// to visible section text changes the hash.
func HashSection(question string, blocks []notion.Block) string {
	texts := []string{question}
	for i := range blocks {
		if spans := blocks[i].Spans(); spans != nil {
			texts = append(texts, render.PlainText(spans))
		}
		for j := range blocks[i].Children {
			if spans := blocks[i].Children[j].Spans(); spans != nil {
				texts = append(texts, render.PlainText(spans))
			}
		}
	}
	return Hash(strings.Join(texts, "|"))
}

// HashProperties hashes the translatable record properties: title, sorted
// document lists, method tags and notes.
func HashProperties(rec *models.PermitRecord) string {
	primo := append([]string(nil), rec.PrimoDocuments...)
	rinnovo := append([]string(nil), rec.RinnovoDocuments...)
	sort.Strings(primo)
	sort.Strings(rinnovo)

	parts := []string{
		rec.Tipo,
		strings.Join(primo, ","),
		strings.Join(rinnovo, ","),
		rec.PrimoMethod,
		rec.RinnovoMethod,
		rec.DocNotes,
	}
	return Hash(strings.Join(parts, "||"))
}

// ChangeSet describes what needs re-translation for one record.
type ChangeSet struct {
	IsNew             bool
	PropertiesChanged bool
	ChangedSections   []int
}

// Unchanged reports whether the record can be skipped entirely.
func (c ChangeSet) Unchanged() bool {
	return !c.IsNew && !c.PropertiesChanged && len(c.ChangedSections) == 0
}

// DetectChanges compares current content against the stored index entry.
// A record with no entry, or any run with force set, is fully new: every
// section and all properties must be (re)translated. Otherwise sections
// are compared hash-by-hash keyed on their question text.
func (ix *Index) DetectChanges(pageID string, sections []render.RawSection, propHash string, force bool) ChangeSet {
	all := func() []int {
		indices := make([]int, len(sections))
		for i := range sections {
			indices[i] = i
		}
		return indices
	}

	if force {
		return ChangeSet{IsNew: true, PropertiesChanged: true, ChangedSections: all()}
	}

	stored, ok := ix.Pages[pageID]
	if !ok {
		return ChangeSet{IsNew: true, PropertiesChanged: true, ChangedSections: all()}
	}

	changes := ChangeSet{PropertiesChanged: stored.PropertyHash != propHash}
	for i, section := range sections {
		hash := HashSection(section.Question, section.Blocks)
		if stored.SectionHashes[section.Question] != hash {
			changes.ChangedSections = append(changes.ChangedSections, i)
		}
	}
	return changes
}

// Record updates the index entry for a source record after a successful
// write of its translated counterpart.
func (ix *Index) Record(pageID, targetPageID, lastEdited, propHash string, sections []render.RawSection) {
	hashes := make(map[string]string, len(sections))
	for _, section := range sections {
		hashes[section.Question] = HashSection(section.Question, section.Blocks)
	}
	ix.Pages[pageID] = IndexEntry{
		TargetPageID:   targetPageID,
		LastEditedTime: lastEdited,
		PropertyHash:   propHash,
		SectionHashes:  hashes,
	}
}
