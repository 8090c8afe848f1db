package lexicon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// GivenName is a canonical given name with its display form and gender.
type GivenName struct {
	Name   string `json:"name"`
	Gender Gender `json:"gender"`
}

// Set is the immutable lexical resource set of one language. It is built once
// by the Registry and shared read-only by every normalization call; none of
// its methods mutate it, and callers must not modify returned slices.
type Set struct {
	lang    string
	version string
	fold    Normalizer

	givenNames  map[string]GivenName
	surnames    map[string]struct{}
	diminutives map[string]string
	stopwords   map[string]struct{}

	cases               []string
	surnameParadigms    []Paradigm
	patronymicParadigms []Paradigm
	surnameRules        []SuffixRule
	patronymicRules     []SuffixRule
	patronymicSuffixes  []string
}

// BuildSet assembles the set for lang from its dictionaries, in the order given.
// Diminutive and given-name case forms are expanded here.
func BuildSet(lang string, dicts []*Dictionary) (*Set, error) {
	s := &Set{
		lang:        lang,
		fold:        FoldFor(lang),
		givenNames:  make(map[string]GivenName),
		surnames:    make(map[string]struct{}),
		diminutives: make(map[string]string),
		stopwords:   make(map[string]struct{}),
	}

	byKind := make(map[string][]*Dictionary)
	for _, d := range dicts {
		if d.Manifest.Language != lang {
			continue
		}
		byKind[d.Manifest.Kind] = append(byKind[d.Manifest.Kind], d)
	}
	if len(byKind[KindGivenName]) == 0 {
		return nil, fmt.Errorf("no %s lexicon for %q", KindGivenName, lang)
	}
	if len(byKind[KindSurname]) == 0 {
		return nil, fmt.Errorf("no %s lexicon for %q", KindSurname, lang)
	}

	for _, d := range byKind[KindGivenName] {
		for _, key := range sortedKeys(d.Entries) {
			e := d.Entries[key]
			k := s.fold(key)
			display := e.Meta("display")
			if display == "" {
				display = key
			}
			s.givenNames[k] = GivenName{Name: display, Gender: ParseGender(e.Meta("gender"))}
		}
	}
	for _, d := range byKind[KindSurname] {
		for key := range d.Entries {
			s.surnames[s.fold(key)] = struct{}{}
		}
	}
	for _, d := range byKind[KindStopword] {
		for key := range d.Entries {
			s.stopwords[s.fold(key)] = struct{}{}
		}
	}

	type pending struct {
		key, canonical string
		gender         Gender
		explicit       string
	}
	var roots []pending

	for _, d := range byKind[KindDiminutive] {
		for _, key := range sortedKeys(d.Entries) {
			e := d.Entries[key]
			canonical := s.fold(e.Meta("canonical"))
			gn, ok := s.givenNames[canonical]
			if !ok {
				slog.Warn("diminutive points to unknown given name", "lexicon", d.Manifest.ID, "diminutive", key, "canonical", e.Meta("canonical"))
				continue
			}
			k := s.fold(key)
			if k == canonical {
				continue
			}
			s.diminutives[k] = gn.Name
			roots = append(roots, pending{key: k, canonical: gn.Name, gender: gn.Gender, explicit: e.Meta("forms")})
		}
	}
	for _, d := range byKind[KindGivenName] {
		for _, key := range sortedKeys(d.Entries) {
			k := s.fold(key)
			gn := s.givenNames[k]
			roots = append(roots, pending{key: k, canonical: gn.Name, gender: gn.Gender, explicit: d.Entries[key].Meta("forms")})
		}
	}

	// Nominatives of every table win over generated forms: Олександра stays a
	// feminine given name even though it is also the genitive of Олександр.
	var skipped int
	for _, root := range roots {
		var forms []string
		if root.explicit != "" {
			for _, f := range strings.Split(root.explicit, "|") {
				if f = s.fold(strings.TrimSpace(f)); f != "" {
					forms = append(forms, f)
				}
			}
		} else {
			forms = CaseForms(lang, root.key, root.gender)
		}
		for _, f := range forms {
			if s.taken(f) {
				skipped++
				continue
			}
			s.diminutives[f] = root.canonical
		}
	}
	if skipped > 0 {
		slog.Debug("case forms shadowed by dictionary entries", "lang", lang, "skipped", skipped)
	}

	for _, d := range byKind[KindDeclension] {
		rf := d.Rules
		if rf == nil {
			continue
		}
		if s.cases == nil {
			s.cases = rf.Cases
		} else if !equalStrings(s.cases, rf.Cases) {
			return nil, fmt.Errorf("lexicon %s: case list %v differs from %v", d.Manifest.ID, rf.Cases, s.cases)
		}
		s.surnameParadigms = append(s.surnameParadigms, rf.Surnames...)
		s.patronymicParadigms = append(s.patronymicParadigms, rf.Patronymics...)
	}
	s.surnameRules = buildRules(s.surnameParadigms, s.cases)
	s.patronymicRules = buildRules(s.patronymicParadigms, s.cases)
	s.patronymicSuffixes = make([]string, len(s.patronymicRules))
	for i, r := range s.patronymicRules {
		s.patronymicSuffixes[i] = r.Suffix
	}

	s.version = fingerprint(lang, dicts)
	return s, nil
}

func (s *Set) taken(k string) bool {
	if _, ok := s.givenNames[k]; ok {
		return true
	}
	if _, ok := s.surnames[k]; ok {
		return true
	}
	_, ok := s.diminutives[k]
	return ok
}

// Lang is the language tag of the set.
func (s *Set) Lang() string { return s.lang }

// Version fingerprints the dictionaries the set was built from.
func (s *Set) Version() string { return s.version }

// Fold normalizes a token for case-insensitive lookup.
func (s *Set) Fold(text string) string { return s.fold(text) }

// GivenName looks up a nominative given name.
func (s *Set) GivenName(text string) (GivenName, bool) {
	gn, ok := s.givenNames[s.fold(text)]
	return gn, ok
}

// IsSurname reports exact surname membership.
func (s *Set) IsSurname(text string) bool {
	_, ok := s.surnames[s.fold(text)]
	return ok
}

// Diminutive returns the canonical full name for an informal or inflected given-name form.
func (s *Set) Diminutive(text string) (string, bool) {
	c, ok := s.diminutives[s.fold(text)]
	return c, ok
}

// IsStopword reports whether text is a function or payment-context word.
func (s *Set) IsStopword(text string) bool {
	_, ok := s.stopwords[s.fold(text)]
	return ok
}

// Cases lists the grammatical cases of the declension tables, nominative first.
func (s *Set) Cases() []string { return s.cases }

// SurnameRules is the surname suffix table, longest suffix first.
func (s *Set) SurnameRules() []SuffixRule { return s.surnameRules }

// PatronymicRules is the patronymic suffix table, longest suffix first.
func (s *Set) PatronymicRules() []SuffixRule { return s.patronymicRules }

// PatronymicSuffixes lists every patronymic ending, longest first.
func (s *Set) PatronymicSuffixes() []string { return s.patronymicSuffixes }

// SurnameParadigms returns the surname declension families.
func (s *Set) SurnameParadigms() []Paradigm { return s.surnameParadigms }

// PatronymicParadigms returns the patronymic declension families.
func (s *Set) PatronymicParadigms() []Paradigm { return s.patronymicParadigms }

// Stats summarizes table sizes.
type Stats struct {
	Language        string `json:"language"`
	Version         string `json:"version"`
	GivenNames      int    `json:"given_names"`
	Surnames        int    `json:"surnames"`
	Diminutives     int    `json:"diminutives"`
	Stopwords       int    `json:"stopwords"`
	SurnameRules    int    `json:"surname_rules"`
	PatronymicRules int    `json:"patronymic_rules"`
}

// Stats returns the table sizes of the set.
func (s *Set) Stats() Stats {
	return Stats{
		Language:        s.lang,
		Version:         s.version,
		GivenNames:      len(s.givenNames),
		Surnames:        len(s.surnames),
		Diminutives:     len(s.diminutives),
		Stopwords:       len(s.stopwords),
		SurnameRules:    len(s.surnameRules),
		PatronymicRules: len(s.patronymicRules),
	}
}

// fingerprint hashes the content of the dictionaries, in build order, so an
// edited lexicon yields a new version even when its id and size are unchanged.
func fingerprint(lang string, dicts []*Dictionary) string {
	h := sha256.New()
	for _, d := range dicts {
		if d.Manifest.Language != lang {
			continue
		}
		fmt.Fprintf(h, "%s@%s\n", d.Manifest.ID, d.Manifest.Version)
		d.writeContent(h)
	}
	return hex.EncodeToString(h.Sum(nil)[:6])
}

func sortedKeys(m map[string]*Entry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
