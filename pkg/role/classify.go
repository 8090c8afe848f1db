package role

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hazyhaar/namecanon/pkg/lexicon"
)

const (
	// MinStem is the shortest stem a suffix rule may leave behind.
	MinStem = 2
	// minSurnameSuffix keeps short generic endings (-ов, -ин) from tagging arbitrary words.
	minSurnameSuffix = 3
)

// Classify decides the most likely role of a single token. Rules are tried in
// strict precedence and the first hit wins: diminutive map, given names,
// surnames, patronymic suffix, surname suffix, initial shape.
func Classify(set *lexicon.Set, text string) (Role, Evidence) {
	if c, ok := set.Diminutive(text); ok {
		return GivenName, Evidence{Rule: RuleDictionaryHit, Source: SourceDiminutives, Match: c, Confidence: ConfDiminutive}
	}
	if gn, ok := set.GivenName(text); ok {
		return GivenName, Evidence{Rule: RuleDictionaryHit, Source: SourceGivenNames, Match: gn.Name, Confidence: ConfGivenName}
	}
	if set.IsSurname(text) {
		return Surname, Evidence{Rule: RuleDictionaryHit, Source: SourceSurnames, Match: set.Fold(text), Confidence: ConfSurname}
	}

	folded := set.Fold(text)
	p, pok := lexicon.MatchSuffix(set.PatronymicRules(), folded, MinStem)
	s, sok := lexicon.MatchSuffix(set.SurnameRules(), folded, MinStem)
	sok = sok && s.Len() >= minSurnameSuffix
	switch {
	case pok && (!sok || p.Len() > s.Len()):
		return Patronymic, Evidence{Rule: RuleSuffixMatch, Source: SourcePatronymics, Match: p.Suffix, Confidence: ConfPatronymic}
	case sok:
		return Surname, Evidence{Rule: RuleSuffixMatch, Source: SourceSurnameSfx, Match: s.Suffix, Confidence: ConfSurnameSfx}
	}

	if IsInitialShape(text) {
		return Initial, Evidence{Rule: RuleInitialShape, Match: text, Confidence: ConfInitial}
	}
	return Unknown, Evidence{Rule: RuleUnresolved}
}

// IsInitialShape reports a single letter optionally followed by a period ("П.", "J").
// Lowercase letters qualify too; telling "з" the preposition from an initial is
// the tagger's job.
func IsInitialShape(text string) bool {
	text = strings.TrimSuffix(text, ".")
	r, size := utf8.DecodeRuneInString(text)
	return size > 0 && size == len(text) && unicode.IsLetter(r)
}

// Classifier classifies tokens against the sets held by a registry.
type Classifier struct {
	reg *lexicon.Registry
}

// NewClassifier returns a classifier reading sets from reg.
func NewClassifier(reg *lexicon.Registry) *Classifier {
	return &Classifier{reg: reg}
}

// Classify classifies text with the set of lang. It fails with a
// *lexicon.ResourceLoadError when lang has no usable set.
func (c *Classifier) Classify(text, lang string) (Role, Evidence, error) {
	set, err := c.reg.Set(lang)
	if err != nil {
		return Unknown, Evidence{}, err
	}
	r, ev := Classify(set, text)
	return r, ev, nil
}
