package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"permessi/internal/cache"
	"permessi/internal/domain/models"
	"permessi/internal/notion"
	"permessi/internal/render"
)

const testDatabaseID = "1ad7355e-7f7f-8088-a065-e814c92e2cfd"

// fakeNotion serves the handful of endpoints the pipeline touches.
type fakeNotion struct {
	pages       []map[string]any
	blocks      map[string][]map[string]any
	blockCalls  int
	searchCalls int
}

func (f *fakeNotion) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", func(w http.ResponseWriter, r *http.Request) {
		f.searchCalls++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results":  f.pages,
			"has_more": false,
		})
	})
	mux.HandleFunc("GET /blocks/{id}/children", func(w http.ResponseWriter, r *http.Request) {
		f.blockCalls++
		id := r.PathValue("id")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results":  f.blocks[id],
			"has_more": false,
		})
	})
	return mux
}

func fakePage(id, tipo string, docs ...string) map[string]any {
	options := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		options = append(options, map[string]any{"name": d})
	}
	return map[string]any{
		"id":               id,
		"last_edited_time": "2026-01-01T00:00:00.000Z",
		"parent":           map[string]any{"type": "database_id", "database_id": testDatabaseID},
		"properties": map[string]any{
			"Nome permesso":      map[string]any{"title": []map[string]any{{"plain_text": tipo}}},
			"Doc primo rilascio": map[string]any{"multi_select": options},
			"Mod primo rilascio": map[string]any{"multi_select": []map[string]any{{"name": "Kit postale"}}},
		},
	}
}

func fakeHeading(text string) map[string]any {
	return map[string]any{
		"id":   "h-" + text,
		"type": "heading_3",
		"heading_3": map[string]any{
			"rich_text": []map[string]any{{"plain_text": text}},
		},
	}
}

func fakeParagraph(text string) map[string]any {
	return map[string]any{
		"id":   "p-" + text,
		"type": "paragraph",
		"paragraph": map[string]any{
			"rich_text": []map[string]any{{"plain_text": text}},
		},
	}
}

func newTestClient(t *testing.T, f *fakeNotion) *notion.Client {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return notion.NewClientWithConfig("test-token", srv.URL, 0, testLogger())
}

func TestFetchRecords(t *testing.T) {
	f := &fakeNotion{
		pages: []map[string]any{
			fakePage("a1", "Lavoro subordinato", "Passaporto", "Foto"),
			fakePage("a2", "[DUPLICATE] Lavoro subordinato"),
			fakePage("a3", ""),
			fakePage("a4", "Studio"),
		},
	}
	client := newTestClient(t, f)

	records, err := FetchRecords(context.Background(), client, testDatabaseID, testLogger())
	if err != nil {
		t.Fatalf("FetchRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 (duplicate and untitled skipped)", len(records))
	}

	rec := records[0]
	if rec.Tipo != "Lavoro subordinato" || rec.Slug != "lavoro-subordinato" {
		t.Errorf("record = %q / %q", rec.Tipo, rec.Slug)
	}
	if len(rec.PrimoDocuments) != 2 || rec.PrimoDocuments[0] != "Passaporto" {
		t.Errorf("documents = %v", rec.PrimoDocuments)
	}
	if rec.PrimoMethod != "Kit postale" {
		t.Errorf("method = %q", rec.PrimoMethod)
	}
	if rec.LastEdited == "" {
		t.Error("last edited time not mapped")
	}
}

func TestPageBlocksUsesCache(t *testing.T) {
	f := &fakeNotion{
		blocks: map[string][]map[string]any{
			"a1": {fakeHeading("Che cos'è?"), fakeParagraph("Un permesso.")},
		},
	}
	client := newTestClient(t, f)
	store := cache.New(t.TempDir(), testLogger())

	edited := "2026-01-01T00:00:00.000Z"
	first, err := PageBlocks(context.Background(), client, store, "a1", edited)
	if err != nil {
		t.Fatalf("PageBlocks: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("blocks = %d, want 2", len(first))
	}
	if f.blockCalls != 1 {
		t.Fatalf("block calls = %d, want 1", f.blockCalls)
	}

	// Unchanged timestamp: served from cache, no second fetch.
	if _, err := PageBlocks(context.Background(), client, store, "a1", edited); err != nil {
		t.Fatalf("cached PageBlocks: %v", err)
	}
	if f.blockCalls != 1 {
		t.Errorf("block calls after cache hit = %d, want 1", f.blockCalls)
	}

	// Edited page: refetched.
	if _, err := PageBlocks(context.Background(), client, store, "a1", "2026-02-01T00:00:00.000Z"); err != nil {
		t.Fatalf("refetched PageBlocks: %v", err)
	}
	if f.blockCalls != 2 {
		t.Errorf("block calls after edit = %d, want 2", f.blockCalls)
	}
}

func TestPageBlocksCachesEmptyTree(t *testing.T) {
	f := &fakeNotion{
		blocks: map[string][]map[string]any{},
	}
	client := newTestClient(t, f)
	store := cache.New(t.TempDir(), testLogger())

	edited := "2026-01-01T00:00:00.000Z"
	blocks, err := PageBlocks(context.Background(), client, store, "a1", edited)
	if err != nil {
		t.Fatalf("PageBlocks: %v", err)
	}
	if len(blocks) != 0 {
		t.Fatalf("blocks = %d, want 0", len(blocks))
	}

	// A page with no blocks still counts as cached; the second run must
	// not refetch it.
	if _, err := PageBlocks(context.Background(), client, store, "a1", edited); err != nil {
		t.Fatalf("cached PageBlocks: %v", err)
	}
	if f.blockCalls != 1 {
		t.Errorf("block calls = %d, want 1", f.blockCalls)
	}
}

func TestBuildPermits(t *testing.T) {
	f := &fakeNotion{
		pages: []map[string]any{
			fakePage("a1", "Lavoro subordinato", "Passaporto"),
			fakePage("a2", "Permesso vuoto"),
		},
		blocks: map[string][]map[string]any{
			"a1": {fakeHeading("Che cos'è?"), fakeParagraph("Un permesso di lavoro.")},
			"a2": {fakeParagraph("Testo senza domande.")},
		},
	}
	client := newTestClient(t, f)

	builder := &Builder{
		Client:   client,
		Cache:    cache.New(t.TempDir(), testLogger()),
		Renderer: render.NewRenderer(nil, "", testLogger()),
		Logger:   testLogger(),
	}

	permits, records, err := builder.BuildPermits(context.Background(), testDatabaseID)
	if err != nil {
		t.Fatalf("BuildPermits: %v", err)
	}
	if len(permits) != 2 || len(records) != 2 {
		t.Fatalf("permits = %d, records = %d", len(permits), len(records))
	}

	full := permits[0]
	if full.IsPlaceholder {
		t.Error("record with sections marked as placeholder")
	}
	if len(full.Sections) != 1 || full.Sections[0].Question != "Che cos'è?" {
		t.Errorf("sections = %+v", full.Sections)
	}
	if !strings.Contains(full.Sections[0].Content, "Un permesso di lavoro.") {
		t.Errorf("content = %q", full.Sections[0].Content)
	}

	empty := permits[1]
	if !empty.IsPlaceholder {
		t.Error("record without questions must be a placeholder")
	}
	if len(empty.Sections) != 0 {
		t.Errorf("placeholder sections = %d", len(empty.Sections))
	}
}

func TestBuildDocuments(t *testing.T) {
	records := []models.PermitRecord{
		{Tipo: "Lavoro", Slug: "lavoro", PrimoDocuments: []string{"Passaporto"}, RinnovoDocuments: []string{"Permesso scaduto"}},
		{Tipo: "Studio", Slug: "studio", PrimoDocuments: []string{"Iscrizione"}},
		{Tipo: "Vuoto", Slug: "vuoto"},
	}
	set := BuildDocuments(records)

	if len(set.Primo) != 2 {
		t.Errorf("primo checklists = %d, want 2", len(set.Primo))
	}
	if len(set.Rinnovo) != 1 {
		t.Errorf("rinnovo checklists = %d, want 1", len(set.Rinnovo))
	}
	if set.Rinnovo[0].Slug != "lavoro" {
		t.Errorf("rinnovo slug = %q", set.Rinnovo[0].Slug)
	}
}
