package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"permessi/internal/domain/models"
	"permessi/internal/notion"
)

const runTestDatabaseID = "1ad7355e-7f7f-8088-a065-e814c92e2cfd"

func sourcePage(id, tipo, edited string) map[string]any {
	return map[string]any{
		"id":               id,
		"last_edited_time": edited,
		"parent":           map[string]any{"type": "database_id", "database_id": runTestDatabaseID},
		"properties": map[string]any{
			"Nome permesso": map[string]any{"title": []map[string]any{{"plain_text": tipo}}},
		},
	}
}

func TestDryRunMakesNoBlockOrWriteCalls(t *testing.T) {
	edited := "2026-01-01T00:00:00.000Z"

	blockCalls := 0
	writeCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				sourcePage("a1", "Lavoro subordinato", edited),
				sourcePage("a2", "Studio", edited),
			},
			"has_more": false,
		})
	})
	mux.HandleFunc("GET /blocks/{id}/children", func(w http.ResponseWriter, r *http.Request) {
		blockCalls++
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []map[string]any{}, "has_more": false})
	})
	mux.HandleFunc("POST /pages", func(w http.ResponseWriter, r *http.Request) {
		writeCalls++
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "created"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := notion.NewClientWithConfig("test-token", srv.URL, 0, testLogger())

	// a2 is already indexed and unmoved; a1 is new.
	index := &Index{Pages: map[string]IndexEntry{
		"a2": {
			TargetPageID:   "t2",
			LastEditedTime: edited,
			PropertyHash:   HashProperties(&models.PermitRecord{Tipo: "Studio"}),
		},
	}}

	runner := &Runner{
		Client:     client,
		Index:      index,
		DatabaseID: runTestDatabaseID,
		Logger:     testLogger(),
	}

	stats, err := runner.Run(context.Background(), RunOptions{DryRun: true, TargetLang: "en"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.Total != 2 || stats.Translated != 1 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want total 2, translated 1, skipped 1", stats)
	}
	if blockCalls != 0 {
		t.Errorf("dry run fetched %d block trees, want 0", blockCalls)
	}
	if writeCalls != 0 {
		t.Errorf("dry run wrote %d pages, want 0", writeCalls)
	}
}

func TestDryRunForceRetranslatesIndexed(t *testing.T) {
	edited := "2026-01-01T00:00:00.000Z"
	index := &Index{Pages: map[string]IndexEntry{
		"a1": {
			TargetPageID:   "t1",
			LastEditedTime: edited,
			PropertyHash:   HashProperties(&models.PermitRecord{Tipo: "Studio"}),
		},
	}}
	runner := &Runner{Index: index, Logger: testLogger()}

	stats := &RunStats{}
	records := []models.PermitRecord{{ID: "a1", Tipo: "Studio", Slug: "studio", LastEdited: edited}}
	runner.dryRun(records, RunOptions{DryRun: true, Force: true, TargetLang: "en"}, stats)

	if stats.Translated != 1 || stats.Skipped != 0 {
		t.Errorf("stats = %+v, want the indexed record retranslated under force", stats)
	}
}

func TestDryRunDetectsMovedTimestamp(t *testing.T) {
	index := &Index{Pages: map[string]IndexEntry{
		"a1": {
			TargetPageID:   "t1",
			LastEditedTime: "2026-01-01T00:00:00.000Z",
			PropertyHash:   HashProperties(&models.PermitRecord{Tipo: "Studio"}),
		},
	}}
	runner := &Runner{Index: index, Logger: testLogger()}

	stats := &RunStats{}
	records := []models.PermitRecord{{ID: "a1", Tipo: "Studio", Slug: "studio", LastEdited: "2026-02-01T00:00:00.000Z"}}
	runner.dryRun(records, RunOptions{DryRun: true, TargetLang: "en"}, stats)

	if stats.Translated != 1 {
		t.Errorf("stats = %+v, want the edited record reported for translation", stats)
	}
}
