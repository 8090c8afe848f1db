package lexicon

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

// Entry is a single term in a dictionary, with optional metadata
// (display form, gender, canonical name, explicit case forms).
type Entry struct {
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Meta returns a metadata value or "".
func (e *Entry) Meta(name string) string {
	if e == nil || e.Metadata == nil {
		return ""
	}
	return e.Metadata[name]
}

// Dictionary is one loaded lexicon with its manifest and in-memory hashmap.
// Declension dictionaries carry a paradigm table instead of entries.
type Dictionary struct {
	Manifest  *Manifest         `json:"manifest"`
	Entries   map[string]*Entry `json:"-"`
	Rules     *RuleFile         `json:"-"`
	normalize Normalizer
}

// LoadDictionary reads dir/manifest.yaml and loads data from gob, csv or a rules file.
func LoadDictionary(dir string) (*Dictionary, error) {
	return loadDictionary(os.DirFS(dir), dir)
}

// LoadDictionaryFS loads a dictionary rooted at fsys (e.g. an embedded directory).
// Gob snapshots are only read from the OS filesystem.
func LoadDictionaryFS(fsys fs.FS) (*Dictionary, error) {
	return loadDictionary(fsys, "")
}

func loadDictionary(fsys fs.FS, osDir string) (*Dictionary, error) {
	data, err := fs.ReadFile(fsys, "manifest.yaml")
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	manifest, err := parseManifest(data, filepath.Join(osDir, "manifest.yaml"))
	if err != nil {
		return nil, err
	}

	d := &Dictionary{
		Manifest:  manifest,
		Entries:   make(map[string]*Entry),
		normalize: GetNormalizer(manifest.Format.Normalize),
	}

	if manifest.Method == MethodRules {
		raw, err := fs.ReadFile(fsys, manifest.DataFile)
		if err != nil {
			return nil, fmt.Errorf("lexicon %s: read rules: %w", manifest.ID, err)
		}
		rf, err := ParseRules(raw)
		if err != nil {
			return nil, fmt.Errorf("lexicon %s: %w", manifest.ID, err)
		}
		if rf.Language != manifest.Language {
			return nil, fmt.Errorf("lexicon %s: rules language %q does not match manifest %q", manifest.ID, rf.Language, manifest.Language)
		}
		d.Rules = rf
		return d, nil
	}

	// Gob takes priority over CSV.
	if osDir != "" {
		gobPath := filepath.Join(osDir, "data.gob")
		if _, err := os.Stat(gobPath); err == nil {
			if err := d.loadGob(gobPath); err != nil {
				return nil, fmt.Errorf("lexicon %s: %w", manifest.ID, err)
			}
			return d, nil
		}
	}

	f, err := fsys.Open(manifest.DataFile)
	if err != nil {
		return nil, fmt.Errorf("lexicon %s: open data file: %w", manifest.ID, err)
	}
	defer f.Close()
	if err := d.loadCSV(f); err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", manifest.ID, err)
	}
	return d, nil
}

func (d *Dictionary) loadCSV(src io.Reader) error {
	// Transcode non-UTF-8 encodings declared in the manifest (windows-1251 exports are common).
	reader := src
	if enc := d.Manifest.Format.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(src, e.NewDecoder())
	}

	r := csv.NewReader(reader)
	if delim := d.Manifest.Format.Delimiter; delim != "" {
		r.Comma = []rune(delim)[0]
	}
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	r.Comment = '#'

	var header []string
	if d.Manifest.Format.HasHeader {
		var err error
		header, err = r.Read()
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
	}

	keyIdx := 0
	if col := d.Manifest.Format.KeyColumn; col != "" && header != nil {
		keyIdx = indexOf(header, col)
		if keyIdx < 0 {
			return fmt.Errorf("key column %q not found in header %v", col, header)
		}
	}

	metaIdx := make(map[string]int)
	for _, mc := range d.Manifest.MetadataCols {
		if header == nil {
			continue
		}
		if i := indexOf(header, mc.Column); i >= 0 {
			metaIdx[mc.Name] = i
		}
	}

	var collisions int
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		if keyIdx >= len(record) {
			continue
		}

		key := d.normalize(strings.TrimSpace(record[keyIdx]))
		if key == "" {
			continue
		}

		entry := &Entry{}
		if len(metaIdx) > 0 {
			entry.Metadata = make(map[string]string, len(metaIdx))
			for name, idx := range metaIdx {
				if idx < len(record) {
					entry.Metadata[name] = strings.TrimSpace(record[idx])
				}
			}
		}
		if _, exists := d.Entries[key]; exists {
			collisions++
		}
		d.Entries[key] = entry
	}

	if collisions > 0 {
		slog.Warn("key collisions after normalization", "lexicon", d.Manifest.ID, "collisions", collisions)
	}
	return nil
}

// writeContent writes the entries with their metadata, in key order, and the
// paradigm table to w.
func (d *Dictionary) writeContent(w io.Writer) {
	for _, k := range sortedKeys(d.Entries) {
		io.WriteString(w, k)
		if md := d.Entries[k].Metadata; len(md) > 0 {
			names := make([]string, 0, len(md))
			for name := range md {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(w, "\t%s=%s", name, md[name])
			}
		}
		io.WriteString(w, "\n")
	}
	if d.Rules != nil {
		// yaml.v3 emits map keys sorted, so the encoding is stable.
		if data, err := yaml.Marshal(d.Rules); err == nil {
			w.Write(data)
		}
	}
}

// Lookup searches for a term in this dictionary after normalization.
func (d *Dictionary) Lookup(term string) (*Entry, bool) {
	e, ok := d.Entries[d.normalize(term)]
	return e, ok
}

// NormalizeTerm applies this dictionary's normalizer to a term.
func (d *Dictionary) NormalizeTerm(term string) string {
	return d.normalize(term)
}

// Size is the entry count, or the paradigm count for declension tables.
func (d *Dictionary) Size() int {
	if d.Rules != nil {
		return len(d.Rules.Surnames) + len(d.Rules.Patronymics)
	}
	return len(d.Entries)
}

func indexOf(header []string, col string) int {
	for i, h := range header {
		if h == col {
			return i
		}
	}
	return -1
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
