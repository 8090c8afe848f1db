package lexicon

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// RuleFile is the YAML declension table of one language. Each paradigm lists
// the case endings of one surname or patronymic family; suffix rules are
// derived from them.
type RuleFile struct {
	Language    string     `yaml:"language"`
	Cases       []string   `yaml:"cases"`
	Surnames    []Paradigm `yaml:"surnames"`
	Patronymics []Paradigm `yaml:"patronymics"`
}

// Paradigm is one declension family, e.g. masculine "-ов": ов, ова, ову, ...
type Paradigm struct {
	Name   string              `yaml:"name"`
	Gender Gender              `yaml:"gender"`
	Pair   string              `yaml:"pair,omitempty"`
	Forms  map[string][]string `yaml:"forms"`
}

// Nominative returns the citation ending of the paradigm.
func (p Paradigm) Nominative() string {
	if forms := p.Forms["nom"]; len(forms) > 0 {
		return forms[0]
	}
	return ""
}

// SuffixRule rewrites a declined ending to its nominative. Masculine and
// Feminine hold the replacement per gender ("" when the ending never occurs
// for that gender). Lemma is the masculine nominative of the paired family,
// used for feminine-only endings when no gender is known.
type SuffixRule struct {
	Suffix    string   `json:"suffix"`
	Masculine string   `json:"masculine,omitempty"`
	Feminine  string   `json:"feminine,omitempty"`
	Lemma     string   `json:"lemma,omitempty"`
	Cases     []string `json:"cases"`
	runes     int
}

// Len is the suffix length in runes.
func (r SuffixRule) Len() int { return r.runes }

// IsNominative reports whether the suffix is itself a nominative ending.
func (r SuffixRule) IsNominative() bool {
	for _, c := range r.Cases {
		if strings.HasSuffix(c, ":nom") {
			return true
		}
	}
	return false
}

// Gender is the gender the ending implies on its own: set when only one side applies.
func (r SuffixRule) Gender() Gender {
	switch {
	case r.Masculine != "" && r.Feminine == "":
		return Masculine
	case r.Feminine != "" && r.Masculine == "":
		return Feminine
	}
	return GenderUnknown
}

// ParseRules decodes and validates a rules.yaml document.
func ParseRules(data []byte) (*RuleFile, error) {
	var rf RuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if rf.Language == "" {
		return nil, fmt.Errorf("parse rules: missing language")
	}
	if len(rf.Cases) == 0 || rf.Cases[0] != "nom" {
		return nil, fmt.Errorf("parse rules: cases must start with nom")
	}
	known := make(map[string]bool, len(rf.Cases))
	for _, c := range rf.Cases {
		known[c] = true
	}
	for _, group := range [][]Paradigm{rf.Surnames, rf.Patronymics} {
		names := make(map[string]bool, len(group))
		for _, p := range group {
			if p.Name == "" {
				return nil, fmt.Errorf("parse rules: paradigm without name")
			}
			if names[p.Name] {
				return nil, fmt.Errorf("parse rules: duplicate paradigm %q", p.Name)
			}
			names[p.Name] = true
			if p.Nominative() == "" {
				return nil, fmt.Errorf("parse rules: paradigm %q has no nominative", p.Name)
			}
			for c, forms := range p.Forms {
				if !known[c] {
					return nil, fmt.Errorf("parse rules: paradigm %q uses undeclared case %q", p.Name, c)
				}
				for _, f := range forms {
					if f == "" {
						return nil, fmt.Errorf("parse rules: paradigm %q has an empty %s form", p.Name, c)
					}
				}
			}
		}
		for _, p := range group {
			if p.Pair != "" && !names[p.Pair] {
				return nil, fmt.Errorf("parse rules: paradigm %q pairs with unknown %q", p.Name, p.Pair)
			}
		}
	}
	return &rf, nil
}

// buildRules flattens paradigms into suffix rules sorted longest suffix first.
// Equal lengths keep file order, and the first paradigm to claim an ending for a
// gender wins.
func buildRules(paradigms []Paradigm, cases []string) []SuffixRule {
	byName := make(map[string]Paradigm, len(paradigms))
	for _, p := range paradigms {
		byName[p.Name] = p
	}

	index := make(map[string]int)
	var rules []SuffixRule
	for _, p := range paradigms {
		nom := p.Nominative()
		lemma := ""
		if pair, ok := byName[p.Pair]; ok && p.Gender == Feminine {
			lemma = pair.Nominative()
		}
		for _, c := range cases {
			for _, form := range p.Forms[c] {
				i, ok := index[form]
				if !ok {
					i = len(rules)
					index[form] = i
					rules = append(rules, SuffixRule{Suffix: form, runes: utf8.RuneCountInString(form)})
				}
				r := &rules[i]
				switch p.Gender {
				case Masculine:
					if r.Masculine == "" {
						r.Masculine = nom
					}
				case Feminine:
					if r.Feminine == "" {
						r.Feminine = nom
					}
					if r.Lemma == "" {
						r.Lemma = lemma
					}
				}
				r.Cases = append(r.Cases, p.Gender.Short()+":"+c)
			}
		}
	}

	sort.SliceStable(rules, func(i, j int) bool { return rules[i].runes > rules[j].runes })
	return rules
}

// MatchSuffix returns the first (longest) rule whose suffix ends folded while
// leaving a stem of at least minStem runes.
func MatchSuffix(rules []SuffixRule, folded string, minStem int) (SuffixRule, bool) {
	n := utf8.RuneCountInString(folded)
	for _, r := range rules {
		if n-r.runes < minStem {
			continue
		}
		if strings.HasSuffix(folded, r.Suffix) {
			return r, true
		}
	}
	return SuffixRule{}, false
}
