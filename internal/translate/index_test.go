package translate

import (
	"os"
	"path/filepath"
	"testing"

	"permessi/internal/domain/models"
	"permessi/internal/notion"
	"permessi/internal/render"
)

func rawSection(question string, answers ...string) render.RawSection {
	blocks := []notion.Block{
		{
			Type:     notion.BlockHeading3,
			Heading3: &notion.BlockContent{RichText: []notion.RichText{{PlainText: question}}},
		},
	}
	for _, answer := range answers {
		blocks = append(blocks, notion.Block{
			Type:      notion.BlockParagraph,
			Paragraph: &notion.BlockContent{RichText: []notion.RichText{{PlainText: answer}}},
		})
	}
	return render.RawSection{Question: question, Blocks: blocks}
}

func TestIndexRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "translation-index-en.json")

	ix := LoadIndex(path)
	if len(ix.Pages) != 0 {
		t.Fatalf("fresh index has %d pages", len(ix.Pages))
	}

	sections := []render.RawSection{rawSection("Che cos'è?", "Un permesso.")}
	ix.Record("page-1", "target-1", "2026-01-01T00:00:00.000Z", "prophash", sections)
	if err := ix.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := LoadIndex(path)
	entry, ok := reloaded.Pages["page-1"]
	if !ok {
		t.Fatal("entry lost on reload")
	}
	if entry.TargetPageID != "target-1" || entry.PropertyHash != "prophash" {
		t.Errorf("entry = %+v", entry)
	}
	if len(entry.SectionHashes) != 1 {
		t.Errorf("section hashes = %d, want 1", len(entry.SectionHashes))
	}
}

func TestLoadIndexCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "translation-index-en.json")
	if err := os.WriteFile(path, []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	ix := LoadIndex(path)
	if len(ix.Pages) != 0 {
		t.Errorf("corrupt index should start empty, got %d pages", len(ix.Pages))
	}
}

func TestDetectChangesNewRecord(t *testing.T) {
	ix := LoadIndex(filepath.Join(t.TempDir(), "ix.json"))
	sections := []render.RawSection{rawSection("Q1?", "A1"), rawSection("Q2?", "A2")}

	changes := ix.DetectChanges("page-1", sections, "hash", false)
	if !changes.IsNew || !changes.PropertiesChanged {
		t.Errorf("new record changes = %+v", changes)
	}
	if len(changes.ChangedSections) != 2 {
		t.Errorf("changed sections = %v, want all", changes.ChangedSections)
	}
	if changes.Unchanged() {
		t.Error("new record cannot be unchanged")
	}
}

func TestDetectChangesUnchanged(t *testing.T) {
	ix := LoadIndex(filepath.Join(t.TempDir(), "ix.json"))
	sections := []render.RawSection{rawSection("Q1?", "A1"), rawSection("Q2?", "A2")}

	ix.Record("page-1", "target-1", "t0", "hash", sections)

	changes := ix.DetectChanges("page-1", sections, "hash", false)
	if !changes.Unchanged() {
		t.Errorf("expected unchanged, got %+v", changes)
	}
}

func TestDetectChangesSingleSection(t *testing.T) {
	ix := LoadIndex(filepath.Join(t.TempDir(), "ix.json"))
	original := []render.RawSection{rawSection("Q1?", "A1"), rawSection("Q2?", "A2"), rawSection("Q3?", "A3")}
	ix.Record("page-1", "target-1", "t0", "hash", original)

	// Only the middle section's answer changes.
	edited := []render.RawSection{rawSection("Q1?", "A1"), rawSection("Q2?", "A2 riscritta"), rawSection("Q3?", "A3")}

	changes := ix.DetectChanges("page-1", edited, "hash", false)
	if changes.IsNew || changes.PropertiesChanged {
		t.Errorf("unexpected flags: %+v", changes)
	}
	if len(changes.ChangedSections) != 1 || changes.ChangedSections[0] != 1 {
		t.Errorf("changed sections = %v, want [1]", changes.ChangedSections)
	}
}

func TestDetectChangesProperties(t *testing.T) {
	ix := LoadIndex(filepath.Join(t.TempDir(), "ix.json"))
	sections := []render.RawSection{rawSection("Q1?", "A1")}
	ix.Record("page-1", "target-1", "t0", "oldhash", sections)

	changes := ix.DetectChanges("page-1", sections, "newhash", false)
	if !changes.PropertiesChanged {
		t.Error("property hash change not detected")
	}
	if len(changes.ChangedSections) != 0 {
		t.Errorf("sections should be unchanged, got %v", changes.ChangedSections)
	}
	if changes.Unchanged() {
		t.Error("property change means not unchanged")
	}
}

func TestDetectChangesForce(t *testing.T) {
	ix := LoadIndex(filepath.Join(t.TempDir(), "ix.json"))
	sections := []render.RawSection{rawSection("Q1?", "A1")}
	ix.Record("page-1", "target-1", "t0", "hash", sections)

	changes := ix.DetectChanges("page-1", sections, "hash", true)
	if changes.Unchanged() {
		t.Error("force must mark everything changed")
	}
	if len(changes.ChangedSections) != 1 {
		t.Errorf("force changed sections = %v", changes.ChangedSections)
	}
}

func TestHashSectionCoversChildren(t *testing.T) {
	base := rawSection("Q?", "Lista:")
	withChild := rawSection("Q?", "Lista:")
	withChild.Blocks[1].Children = []notion.Block{
		{
			Type:             notion.BlockBulletedListItem,
			BulletedListItem: &notion.BlockContent{RichText: []notion.RichText{{PlainText: "voce"}}},
		},
	}

	if HashSection(base.Question, base.Blocks) == HashSection(withChild.Question, withChild.Blocks) {
		t.Error("child text must affect the section hash")
	}
}

func TestHashPropertiesOrderInsensitiveDocs(t *testing.T) {
	a := &models.PermitRecord{
		Tipo:           "Lavoro subordinato",
		PrimoDocuments: []string{"Passaporto", "Foto"},
	}
	b := &models.PermitRecord{
		Tipo:           "Lavoro subordinato",
		PrimoDocuments: []string{"Foto", "Passaporto"},
	}
	if HashProperties(a) != HashProperties(b) {
		t.Error("document order must not affect the property hash")
	}

	c := &models.PermitRecord{
		Tipo:           "Lavoro subordinato",
		PrimoDocuments: []string{"Foto", "Passaporto", "Marca"},
	}
	if HashProperties(a) == HashProperties(c) {
		t.Error("added document must change the property hash")
	}

	d := &models.PermitRecord{
		Tipo:           "Lavoro subordinato",
		PrimoDocuments: []string{"Passaporto", "Foto"},
		DocNotes:       "portare originali",
	}
	if HashProperties(a) == HashProperties(d) {
		t.Error("notes must change the property hash")
	}
}
