package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

// writeTestDict writes a minimal manifest + CSV in a temp directory and returns the dir.
func writeTestDict(t *testing.T, id, kind, normalize string, csvContent string) string {
	t.Helper()
	dir := t.TempDir()
	dictDir := filepath.Join(dir, id)
	if err := os.MkdirAll(dictDir, 0o755); err != nil {
		t.Fatal(err)
	}

	manifest := `id: ` + id + `
version: "1.0"
language: ru
kind: ` + kind + `
source: unit test
data_file: data.csv
format:
  delimiter: ";"
  encoding: utf-8
  has_header: true
  key_column: "name"
  normalize: ` + normalize + `
metadata_columns:
  - name: gender
    column: "gender"
`
	mustWrite(t, filepath.Join(dictDir, "manifest.yaml"), manifest)
	mustWrite(t, filepath.Join(dictDir, "data.csv"), csvContent)
	return dir
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDictionary(t *testing.T) {
	dir := writeTestDict(t, "test-dict", KindGivenName, "cyrillic",
		"name;gender\nИВАН;m\nАлёна;f\nПётр;m\n")

	d, err := LoadDictionary(filepath.Join(dir, "test-dict"))
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}

	if d.Manifest.ID != "test-dict" {
		t.Errorf("ID = %q, want test-dict", d.Manifest.ID)
	}
	if len(d.Entries) != 3 {
		t.Errorf("entries = %d, want 3", len(d.Entries))
	}
	for _, key := range []string{"иван", "алена", "петр"} {
		if _, ok := d.Entries[key]; !ok {
			t.Errorf("expected key %q after normalization", key)
		}
	}
}

func TestLoadDictionary_Metadata(t *testing.T) {
	dir := writeTestDict(t, "meta-dict", KindGivenName, "cyrillic",
		"name;gender\nОльга;f\n")

	d, err := LoadDictionary(filepath.Join(dir, "meta-dict"))
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}

	entry, ok := d.Entries["ольга"]
	if !ok {
		t.Fatal("expected key ольга")
	}
	if got := entry.Meta("gender"); got != "f" {
		t.Errorf("gender = %q, want f", got)
	}
	if got := entry.Meta("missing"); got != "" {
		t.Errorf("missing meta = %q, want empty", got)
	}
}

func TestLoadDictionary_EmptyKeysAndComments(t *testing.T) {
	dir := writeTestDict(t, "empty-key", KindSurname, "none",
		"name;gender\n;m\n# comment;x\nvalid;m\n;f\n")

	d, err := LoadDictionary(filepath.Join(dir, "empty-key"))
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	if len(d.Entries) != 1 {
		t.Errorf("entries = %d, want 1 (empty keys and comments skipped)", len(d.Entries))
	}
}

func TestLoadDictionary_MissingKeyColumn(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "manifest.yaml"), `id: bad
version: "1.0"
language: ru
kind: surname
source: test
format:
  delimiter: ";"
  has_header: true
  key_column: "nonexistent"
`)
	mustWrite(t, filepath.Join(dir, "data.csv"), "name;freq\na;1\n")

	if _, err := LoadDictionary(dir); err == nil {
		t.Error("expected error for missing key column")
	}
}

func TestLoadDictionary_BadManifest(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{"missing id", "version: \"1\"\nlanguage: ru\nkind: surname\n"},
		{"missing language", "id: x\nkind: surname\n"},
		{"unknown kind", "id: x\nlanguage: ru\nkind: company\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			mustWrite(t, filepath.Join(dir, "manifest.yaml"), tt.manifest)
			mustWrite(t, filepath.Join(dir, "data.csv"), "name\nx\n")
			if _, err := LoadDictionary(dir); err == nil {
				t.Error("expected manifest error")
			}
		})
	}
}

func TestLoadDictionary_Windows1251(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "manifest.yaml"), `id: cp1251
version: "1.0"
language: ru
kind: surname
source: legacy export
format:
  delimiter: ";"
  encoding: windows-1251
  has_header: true
  key_column: name
  normalize: cyrillic
`)
	encoded, err := charmap.Windows1251.NewEncoder().String("name\nПетров\nСидоров\n")
	if err != nil {
		t.Fatal(err)
	}
	mustWrite(t, filepath.Join(dir, "data.csv"), encoded)

	d, err := LoadDictionary(dir)
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	if _, ok := d.Lookup("ПЕТРОВ"); !ok {
		t.Error("expected петров after transcoding")
	}
}

func TestLoadDictionary_Rules(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "manifest.yaml"), `id: declension-test
version: "1.0"
language: ru
kind: declension
source: test
`)
	mustWrite(t, filepath.Join(dir, "rules.yaml"), testRulesYAML)

	d, err := LoadDictionary(dir)
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	if d.Manifest.Method != MethodRules {
		t.Errorf("Method = %q, want %q", d.Manifest.Method, MethodRules)
	}
	if d.Rules == nil {
		t.Fatal("expected parsed rules")
	}
	if d.Size() != 3 {
		t.Errorf("Size = %d, want 3 paradigms", d.Size())
	}
}

func TestLoadDictionary_RulesLanguageMismatch(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "manifest.yaml"), `id: declension-test
version: "1.0"
language: uk
kind: declension
source: test
`)
	mustWrite(t, filepath.Join(dir, "rules.yaml"), testRulesYAML)

	if _, err := LoadDictionary(dir); err == nil {
		t.Error("expected language mismatch error")
	}
}

func TestLookup(t *testing.T) {
	dir := writeTestDict(t, "lookup-dict", KindSurname, "cyrillic",
		"name;gender\nСоловьёв;\nКовальский;\n")

	d, err := LoadDictionary(filepath.Join(dir, "lookup-dict"))
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}

	tests := []struct {
		term  string
		found bool
	}{
		{"Соловьёв", true},
		{"соловьев", true},
		{"СОЛОВЬЁВ", true},
		{"ковальский", true},
		{"Ковальська", false},
	}
	for _, tt := range tests {
		_, ok := d.Lookup(tt.term)
		if ok != tt.found {
			t.Errorf("Lookup(%q) = %v, want %v", tt.term, ok, tt.found)
		}
	}
}

func TestBuiltinDictionariesLoad(t *testing.T) {
	reg := NewRegistry("")
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, info := range reg.ListDicts() {
		if info.Entries == 0 {
			t.Errorf("built-in lexicon %s is empty", info.ID)
		}
		if info.License == "" {
			t.Errorf("built-in lexicon %s has no license", info.ID)
		}
	}
}
