package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazyhaar/namecanon/pkg/lexicon"
)

// MirrorBase is the default location of the published lexicon CSV files.
// Operators override individual URLs in the source database.
const MirrorBase = "https://raw.githubusercontent.com/hazyhaar/namecanon-lexicons/main"

// layout is the CSV shape expected for a lexicon kind. It matches the
// built-in data files so a mirror can publish them unchanged.
type layout struct {
	keyColumn string
	columns   []lexicon.MetadataColumn
}

var layouts = map[string]layout{
	lexicon.KindGivenName: {
		keyColumn: "name",
		columns: []lexicon.MetadataColumn{
			{Name: "display", Column: "name"},
			{Name: "gender", Column: "gender"},
			{Name: "forms", Column: "forms"},
		},
	},
	lexicon.KindSurname: {keyColumn: "name"},
	lexicon.KindDiminutive: {
		keyColumn: "diminutive",
		columns: []lexicon.MetadataColumn{
			{Name: "canonical", Column: "canonical"},
			{Name: "forms", Column: "forms"},
		},
	},
	lexicon.KindStopword: {keyColumn: "word"},
}

var kindSlugs = map[string]string{
	lexicon.KindGivenName:  "given-names",
	lexicon.KindSurname:    "surnames",
	lexicon.KindDiminutive: "diminutives",
	lexicon.KindStopword:   "stopwords",
}

var languageNames = map[string]string{
	"ru": "Russian",
	"uk": "Ukrainian",
	"en": "English",
}

func init() {
	for _, lang := range []string{"en", "ru", "uk"} {
		for _, kind := range []string{lexicon.KindGivenName, lexicon.KindSurname, lexicon.KindDiminutive, lexicon.KindStopword} {
			Register(newLexiconAdapter(lang, kind))
		}
	}
}

// lexiconAdapter imports a delimited lexicon file for one (language, kind).
type lexiconAdapter struct {
	lang     string
	kind     string
	dictID   string
	url      string
	encoding string
}

func newLexiconAdapter(lang, kind string) *lexiconAdapter {
	dictID := kindSlugs[kind] + "-" + lang
	return &lexiconAdapter{
		lang:     lang,
		kind:     kind,
		dictID:   dictID,
		url:      MirrorBase + "/" + dictID + ".csv",
		encoding: "utf-8",
	}
}

func (a *lexiconAdapter) ID() string       { return "mirror-" + a.dictID }
func (a *lexiconAdapter) DictID() string   { return a.dictID }
func (a *lexiconAdapter) Language() string { return a.lang }
func (a *lexiconAdapter) Kind() string     { return a.kind }
func (a *lexiconAdapter) DefaultURL() string {
	return a.url
}
func (a *lexiconAdapter) License() string { return "CC0-1.0" }

func (a *lexiconAdapter) Description() string {
	return fmt.Sprintf("%s %s lexicon", languageNames[a.lang], strings.ReplaceAll(kindSlugs[a.kind], "-", " "))
}

func (a *lexiconAdapter) manifest(sourceURL, dataFile string) *lexicon.Manifest {
	l := layouts[a.kind]
	norm := "cyrillic"
	if a.lang == "en" {
		norm = "lowercase_ascii"
	}
	return &lexicon.Manifest{
		ID:        a.dictID,
		Version:   time.Now().UTC().Format("2006.01"),
		Language:  a.lang,
		Kind:      a.kind,
		Source:    "imported " + a.Description(),
		SourceURL: sourceURL,
		License:   a.License(),
		DataFile:  dataFile,
		Format: lexicon.FormatSpec{
			Delimiter: ";",
			Encoding:  a.encoding,
			HasHeader: true,
			KeyColumn: l.keyColumn,
			Normalize: norm,
		},
		MetadataCols: l.columns,
	}
}

func (a *lexiconAdapter) Import(ctx context.Context, sourceURL, outputDir string) (int, error) {
	dlDir := filepath.Join(outputDir, "_download", a.dictID)
	if err := ensureDir(dlDir); err != nil {
		return 0, err
	}
	defer os.RemoveAll(filepath.Join(outputDir, "_download"))

	csvPath := filepath.Join(dlDir, "data.csv")
	if strings.HasSuffix(strings.ToLower(sourceURL), ".zip") {
		zipPath := filepath.Join(dlDir, "source.zip")
		if err := downloadFile(ctx, sourceURL, zipPath); err != nil {
			return 0, fmt.Errorf("download: %w", err)
		}
		files, err := unzipFile(zipPath, dlDir)
		if err != nil {
			return 0, fmt.Errorf("unzip: %w", err)
		}
		found := ""
		for _, f := range files {
			if strings.HasSuffix(strings.ToLower(f), ".csv") {
				found = f
				break
			}
		}
		if found == "" {
			return 0, fmt.Errorf("no CSV found in %s", sourceURL)
		}
		csvPath = found
	} else if err := downloadFile(ctx, sourceURL, csvPath); err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}

	if err := writeManifest(dlDir, a.manifest(sourceURL, filepath.Base(csvPath))); err != nil {
		return 0, err
	}
	d, err := lexicon.LoadDictionary(dlDir)
	if err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}
	if d.Size() == 0 {
		return 0, fmt.Errorf("%s: source has no entries", a.dictID)
	}
	if a.kind == lexicon.KindGivenName {
		expandForms(a.lang, d.Entries)
	}

	dictDir := filepath.Join(outputDir, a.dictID)
	if err := ensureDir(dictDir); err != nil {
		return 0, err
	}
	if err := lexicon.SaveGob(d.Entries, filepath.Join(dictDir, "data.gob")); err != nil {
		return 0, fmt.Errorf("save gob: %w", err)
	}
	if err := writeManifest(dictDir, a.manifest(sourceURL, "data.gob")); err != nil {
		return 0, err
	}
	slog.Debug("lexicon imported", "dict", a.dictID, "entries", d.Size())
	return d.Size(), nil
}

// expandForms precomputes the oblique case forms of given names whose gender
// is known and that carry no explicit forms, so the snapshot does not depend
// on the generator version that later loads it.
func expandForms(lang string, entries map[string]*lexicon.Entry) {
	for key, e := range entries {
		if e.Metadata == nil || e.Metadata["forms"] != "" {
			continue
		}
		g := lexicon.ParseGender(e.Metadata["gender"])
		if g == lexicon.GenderUnknown {
			continue
		}
		if forms := lexicon.CaseForms(lang, key, g); len(forms) > 0 {
			e.Metadata["forms"] = strings.Join(forms, "|")
		}
	}
}
