package translate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"permessi/internal/domain/models"
	"permessi/internal/notion"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestBuildProperties(t *testing.T) {
	rec := &models.PermitRecord{
		ID:             "page-1",
		Tipo:           "Lavoro subordinato",
		PrimoDocuments: []string{"Passaporto", "Marca da bollo"},
		PrimoMethod:    "Kit postale",
		DocNotes:       "Portare gli originali",
	}
	translations := map[string]string{
		"Lavoro subordinato":    "Salaried employment",
		"Passaporto":            "Passport",
		"Marca da bollo":        "Revenue stamp, 16€",
		"Kit postale":           "Postal kit",
		"Portare gli originali": "Bring the originals",
	}
	tr := func(s string) string {
		if out, ok := translations[s]; ok {
			return out
		}
		return s
	}

	props := BuildProperties(rec, tr)

	title := props["Nome permesso"].(map[string]any)["title"].([]map[string]any)
	if got := title[0]["text"].(map[string]any)["content"]; got != "Salaried employment" {
		t.Errorf("title = %v", got)
	}

	primo := props["Doc primo rilascio"].(map[string]any)["multi_select"].([]map[string]any)
	if len(primo) != 2 {
		t.Fatalf("primo options = %d", len(primo))
	}
	// Multi-select option names cannot contain commas.
	if got := primo[1]["name"]; got != "Revenue stamp; 16€" {
		t.Errorf("comma not sanitized: %v", got)
	}

	backref := props["IT Page ID"].(map[string]any)["rich_text"].([]map[string]any)
	if got := backref[0]["text"].(map[string]any)["content"]; got != "page-1" {
		t.Errorf("back-reference = %v", got)
	}

	if _, ok := props["Mod rinnovo"]; ok {
		t.Error("empty method must not emit a property")
	}
	notes := props["Info extra su doc rilascio"].(map[string]any)["rich_text"].([]map[string]any)
	if got := notes[0]["text"].(map[string]any)["content"]; got != "Bring the originals" {
		t.Errorf("notes = %v", got)
	}
}

func TestEnsureDatabaseRequiresParent(t *testing.T) {
	client := notion.NewClientWithConfig("tok", "http://unused.invalid", 0, testLogger())
	_, err := EnsureDatabase(context.Background(), client, "", "", "Permessi (en)", testLogger())
	if err == nil {
		t.Fatal("expected error without database ID and parent page")
	}
}

func TestArchiveDeleted(t *testing.T) {
	archived := map[string]bool{}
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /pages/{id}", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload["archived"] == true {
			archived[r.PathValue("id")] = true
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": r.PathValue("id")})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := notion.NewClientWithConfig("tok", srv.URL, 0, testLogger())
	w := NewWriter(client, "db-1", testLogger())

	ix := &Index{Pages: map[string]IndexEntry{
		"alive":   {TargetPageID: "t-alive"},
		"deleted": {TargetPageID: "t-deleted"},
	}}

	count := w.ArchiveDeleted(context.Background(), ix, map[string]bool{"alive": true})
	if count != 1 {
		t.Errorf("archived count = %d, want 1", count)
	}
	if !archived["t-deleted"] {
		t.Error("deleted record's counterpart not archived")
	}
	if archived["t-alive"] {
		t.Error("live record's counterpart must not be archived")
	}
	if _, ok := ix.Pages["deleted"]; ok {
		t.Error("archived entry must leave the index")
	}
	if _, ok := ix.Pages["alive"]; !ok {
		t.Error("live entry must stay in the index")
	}
}
