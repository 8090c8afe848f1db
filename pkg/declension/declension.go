// Package declension restores inflected Slavic surnames and patronymics to
// the nominative case, and inflects nominatives through the same paradigms.
package declension

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/hazyhaar/namecanon/pkg/lexicon"
	"github.com/hazyhaar/namecanon/pkg/role"
)

const (
	confHinted   = 0.9
	confUnhinted = 0.7
)

// Options carries the per-call gender context.
type Options struct {
	// Gender is the hint from the given name or patronymic of the same candidate.
	Gender lexicon.Gender
	// PreserveFeminine keeps a feminine-only oblique ending feminine when no hint is known.
	PreserveFeminine bool
}

// Outcome is the nominative form of one token and the evidence for it.
type Outcome struct {
	Output   string
	Evidence role.Evidence
	// Gender is the gender the matched ending implies on its own, if any.
	Gender lexicon.Gender
}

// ToNominative rewrites the longest matching suffix of a surname or
// patronymic to its nominative. Other roles and unmatched tokens come back
// unchanged; a miss is reported in the evidence, never as an error.
func ToNominative(set *lexicon.Set, text string, r role.Role, opts Options) Outcome {
	var rules []lexicon.SuffixRule
	var source string
	switch r {
	case role.Surname:
		rules, source = set.SurnameRules(), role.SourceSurnameSfx
	case role.Patronymic:
		rules, source = set.PatronymicRules(), role.SourcePatronymics
	default:
		return Outcome{Output: text, Evidence: role.Evidence{Rule: role.RuleIdentity, Note: "not declinable: " + r.String()}}
	}

	text = norm.NFC.String(text)
	rule, ok := lexicon.MatchSuffix(rules, set.Fold(text), role.MinStem)
	if !ok {
		return Outcome{Output: text, Evidence: role.Evidence{Rule: role.RuleNoRuleMatched, Source: source, Note: "no suffix rule matches"}}
	}

	replacement, gender := choose(rule, opts)
	ev := role.Evidence{Rule: role.RuleDeclensionApplied, Source: source, Match: rule.Suffix, Confidence: confUnhinted}
	if opts.Gender != lexicon.GenderUnknown {
		ev.Confidence = confHinted
	}
	if replacement == rule.Suffix {
		ev.Rule = role.RuleIdentity
		ev.Note = "already nominative"
		return Outcome{Output: text, Evidence: ev, Gender: rule.Gender()}
	}
	ev.Note = fmt.Sprintf("-%s -> -%s (%s)", rule.Suffix, replacement, gender)
	return Outcome{
		Output:   replaceEnding(text, rule.Len(), replacement, set.Lang()),
		Evidence: ev,
		Gender:   rule.Gender(),
	}
}

// choose picks the replacement ending for the gender context.
func choose(rule lexicon.SuffixRule, opts Options) (string, lexicon.Gender) {
	switch opts.Gender {
	case lexicon.Feminine:
		if rule.Feminine != "" {
			return rule.Feminine, lexicon.Feminine
		}
		return rule.Masculine, lexicon.Masculine
	case lexicon.Masculine:
		switch {
		case rule.Masculine != "":
			return rule.Masculine, lexicon.Masculine
		case rule.Lemma != "":
			return rule.Lemma, lexicon.Masculine
		}
		return rule.Feminine, lexicon.Feminine
	}
	switch {
	case rule.IsNominative():
		return rule.Suffix, rule.Gender()
	case opts.PreserveFeminine && rule.Feminine != "":
		return rule.Feminine, lexicon.Feminine
	case rule.Masculine != "":
		return rule.Masculine, lexicon.Masculine
	case rule.Lemma != "":
		return rule.Lemma, lexicon.Masculine
	}
	return rule.Feminine, lexicon.Feminine
}

// PatronymicGender returns the gender a patronymic's ending implies
// (Сергеевна is feminine, Сергеевичу masculine), or GenderUnknown.
func PatronymicGender(set *lexicon.Set, text string) lexicon.Gender {
	rule, ok := lexicon.MatchSuffix(set.PatronymicRules(), set.Fold(text), role.MinStem)
	if !ok {
		return lexicon.GenderUnknown
	}
	return rule.Gender()
}

// replaceEnding swaps the last n runes of text for ending. The stem keeps its
// original letters; the ending is upper-cased for all-caps tokens.
func replaceEnding(text string, n int, ending, lang string) string {
	runes := []rune(text)
	stem := string(runes[:len(runes)-n])
	if lexicon.PatternOf(text) == lexicon.CaseUpper {
		ending = cases.Upper(language.Make(lang)).String(ending)
	}
	return stem + ending
}

// ErrNoParadigm means no declension family has a nominative ending matching the name.
var ErrNoParadigm = errors.New("no declension paradigm")

// Decline inflects a nominative surname or patronymic into grammatical case
// caseName ("gen", "dat", ...) using the family with the longest matching
// nominative ending for gender. Where a case has variant endings the first
// one is used.
func Decline(set *lexicon.Set, nominative string, r role.Role, gender lexicon.Gender, caseName string) (string, error) {
	forms, err := DeclineForms(set, nominative, r, gender, caseName)
	if err != nil {
		return "", err
	}
	return forms[0], nil
}

// DeclineForms is Decline returning every variant of the case, in paradigm
// order (Петровой, Петровою).
func DeclineForms(set *lexicon.Set, nominative string, r role.Role, gender lexicon.Gender, caseName string) ([]string, error) {
	var paradigms []lexicon.Paradigm
	switch r {
	case role.Surname:
		paradigms = set.SurnameParadigms()
	case role.Patronymic:
		paradigms = set.PatronymicParadigms()
	default:
		return nil, fmt.Errorf("decline %q: role %s is not declinable", nominative, r)
	}

	nominative = norm.NFC.String(nominative)
	folded := set.Fold(nominative)
	n := len([]rune(folded))
	var best *lexicon.Paradigm
	for i := range paradigms {
		p := &paradigms[i]
		nom := p.Nominative()
		if gender != lexicon.GenderUnknown && p.Gender != gender {
			continue
		}
		if !strings.HasSuffix(folded, nom) || n-len([]rune(nom)) < role.MinStem {
			continue
		}
		if best == nil || len([]rune(nom)) > len([]rune(best.Nominative())) {
			best = p
		}
	}
	if best == nil {
		return nil, fmt.Errorf("decline %q: %w", nominative, ErrNoParadigm)
	}
	endings := best.Forms[caseName]
	if len(endings) == 0 {
		return nil, fmt.Errorf("decline %q: paradigm %s has no %s form", nominative, best.Name, caseName)
	}
	stem := len([]rune(best.Nominative()))
	forms := make([]string, len(endings))
	for i, ending := range endings {
		forms[i] = replaceEnding(nominative, stem, ending, set.Lang())
	}
	return forms, nil
}

// Normalizer applies ToNominative with the set of a registry language.
type Normalizer struct {
	reg *lexicon.Registry
}

// NewNormalizer returns a normalizer reading sets from reg.
func NewNormalizer(reg *lexicon.Registry) *Normalizer {
	return &Normalizer{reg: reg}
}

// ToNominative normalizes text in lang; it fails only when lang has no set.
func (n *Normalizer) ToNominative(text, lang string, r role.Role, opts Options) (Outcome, error) {
	set, err := n.reg.Set(lang)
	if err != nil {
		return Outcome{}, err
	}
	return ToNominative(set, text, r, opts), nil
}
