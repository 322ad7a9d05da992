package notion

import "testing"

const samplePropertiesJSON = `{
	"Nome permesso": {
		"type": "title",
		"title": [{"plain_text": "Protezione speciale"}]
	},
	"Doc primo rilascio": {
		"type": "multi_select",
		"multi_select": [
			{"name": "Passaporto"},
			{"name": "4 foto tessera"},
			{"name": "Marca da bollo da 16€"}
		]
	},
	"Doc rinnovo": {
		"type": "multi_select",
		"multi_select": []
	},
	"Mod primo rilascio": {
		"type": "multi_select",
		"multi_select": [{"name": "Kit postale"}]
	},
	"Info extra su doc rilascio": {
		"type": "rich_text",
		"rich_text": [
			{"plain_text": "Portare anche "},
			{"plain_text": "il cedolino."}
		]
	},
	"Pubblicato": {"type": "checkbox", "checkbox": true},
	"Ordine": {"type": "number", "number": 3}
}`

func TestPropertiesAccessors(t *testing.T) {
	props := Properties(samplePropertiesJSON)

	if got := props.Title("Nome permesso"); got != "Protezione speciale" {
		t.Errorf("Title = %q", got)
	}

	docs := props.MultiSelect("Doc primo rilascio")
	want := []string{"Passaporto", "4 foto tessera", "Marca da bollo da 16€"}
	if len(docs) != len(want) {
		t.Fatalf("MultiSelect returned %d options, want %d", len(docs), len(want))
	}
	for i := range want {
		if docs[i] != want[i] {
			t.Errorf("MultiSelect[%d] = %q, want %q", i, docs[i], want[i])
		}
	}

	if got := props.FirstMultiSelect("Mod primo rilascio"); got != "Kit postale" {
		t.Errorf("FirstMultiSelect = %q", got)
	}
	if got := props.RichTextJoined("Info extra su doc rilascio"); got != "Portare anche il cedolino." {
		t.Errorf("RichTextJoined = %q", got)
	}
	if !props.Checkbox("Pubblicato") {
		t.Error("Checkbox = false, want true")
	}
	if got := props.Number("Ordine"); got != 3 {
		t.Errorf("Number = %v, want 3", got)
	}
}

func TestPropertiesFailSoft(t *testing.T) {
	props := Properties(samplePropertiesJSON)

	if got := props.Title("Nonexistent"); got != "" {
		t.Errorf("missing title = %q, want empty", got)
	}
	if got := props.MultiSelect("Doc rinnovo"); got != nil {
		t.Errorf("empty multi-select = %v, want nil", got)
	}
	if got := props.FirstMultiSelect("Doc rinnovo"); got != "" {
		t.Errorf("empty FirstMultiSelect = %q, want empty", got)
	}
	if got := props.MultiSelect("Nome permesso"); got != nil {
		t.Errorf("wrong-typed multi-select = %v, want nil", got)
	}

	var empty Properties
	if got := empty.Title("Nome permesso"); got != "" {
		t.Errorf("nil properties title = %q, want empty", got)
	}
}

func TestPropertiesKeyEscaping(t *testing.T) {
	props := Properties(`{"Doc. primo": {"title": [{"plain_text": "x"}]}}`)
	if got := props.Title("Doc. primo"); got != "x" {
		t.Errorf("dotted key title = %q, want %q", got, "x")
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare hex to dashed",
			input: "1ad7355e7f7f8088a065e814c92e2cfd",
			want:  "1ad7355e-7f7f-8088-a065-e814c92e2cfd",
		},
		{
			name:  "already dashed",
			input: "1ad7355e-7f7f-8088-a065-e814c92e2cfd",
			want:  "1ad7355e-7f7f-8088-a065-e814c92e2cfd",
		},
		{
			name:  "uppercase normalized",
			input: "1AD7355E-7F7F-8088-A065-E814C92E2CFD",
			want:  "1ad7355e-7f7f-8088-a065-e814c92e2cfd",
		},
		{
			name:  "not a uuid passes through trimmed",
			input: "  not-a-uuid  ",
			want:  "not-a-uuid",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeID(tt.input); got != tt.want {
				t.Errorf("NormalizeID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBelongsTo(t *testing.T) {
	page := Page{
		ID:     "abc",
		Parent: Parent{Type: "database_id", DatabaseID: "1ad7355e7f7f8088a065e814c92e2cfd"},
	}
	if !page.BelongsTo("1ad7355e-7f7f-8088-a065-e814c92e2cfd") {
		t.Error("dashed vs bare database ID should match")
	}
	if page.BelongsTo("00000000-0000-0000-0000-000000000000") {
		t.Error("different database should not match")
	}

	dataSource := Page{Parent: Parent{Type: "data_source_id", DataSourceID: "1ad7355e-7f7f-8088-a065-e814c92e2cfd"}}
	if !dataSource.BelongsTo("1ad7355e7f7f8088a065e814c92e2cfd") {
		t.Error("data-source parent should match database ID")
	}
}
