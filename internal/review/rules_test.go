package review

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMappingPack_Empty(t *testing.T) {
	pack, err := LoadMappingPack("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pack != nil {
		t.Error("expected nil pack for empty path")
	}
}

func TestLoadMappingPack_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mappings.yaml")
	content := `mappings:
  - keyword: Reentrancy
    rules: [REENTRANT_SEND]
  - keyword: spawn
    rules: [SPAWN_NO_AUTH, NO_AUTH_CHECK]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	pack, err := LoadMappingPack(path)
	if err != nil {
		t.Fatalf("LoadMappingPack error: %v", err)
	}
	if len(pack.Mappings) != 2 {
		t.Fatalf("Mappings = %d, want 2", len(pack.Mappings))
	}
	if pack.Mappings[1].Rules[0] != "SPAWN_NO_AUTH" {
		t.Errorf("Mappings[1].Rules[0] = %q, want %q", pack.Mappings[1].Rules[0], "SPAWN_NO_AUTH")
	}

	ix := pack.Apply(DefaultIndex())
	if ix.Len() != DefaultIndex().Len()+2 {
		t.Errorf("Len() = %d, want %d", ix.Len(), DefaultIndex().Len()+2)
	}
	got := ix.Lookup("Possible reentrancy in handler")
	if len(got) != 1 || got[0] != "REENTRANT_SEND" {
		t.Errorf("Lookup = %v, want [REENTRANT_SEND]", got)
	}
}

func TestLoadMappingPack_JSONReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mappings.json")
	content := `{"replace": true, "mappings": [{"keyword": "frozen", "rules": ["CUSTOM_FROZEN"]}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	ix, err := LoadIndex(path)
	if err != nil {
		t.Fatalf("LoadIndex error: %v", err)
	}
	if ix.Len() != 1 {
		t.Errorf("Len() = %d, want 1", ix.Len())
	}
	got := ix.Lookup("Frozen check missing")
	if len(got) != 1 || got[0] != "CUSTOM_FROZEN" {
		t.Errorf("Lookup = %v, want [CUSTOM_FROZEN]", got)
	}
}

func TestLoadMappingPack_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"invalid json", "bad.json", "{not json}"},
		{"invalid yaml", "bad.yaml", "mappings: [unterminated"},
		{"empty keyword", "kw.json", `{"mappings": [{"keyword": " ", "rules": ["X"]}]}`},
		{"no rules", "rules.json", `{"mappings": [{"keyword": "x"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadMappingPack(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadMappingPack(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadIndex_NoPath(t *testing.T) {
	ix, err := LoadIndex("")
	if err != nil {
		t.Fatalf("LoadIndex error: %v", err)
	}
	if ix.Len() != DefaultIndex().Len() {
		t.Errorf("Len() = %d, want %d", ix.Len(), DefaultIndex().Len())
	}
}
