// Package diminutive resolves informal and inflected given-name forms to the
// canonical full name.
package diminutive

import (
	"github.com/hazyhaar/namecanon/pkg/lexicon"
	"github.com/hazyhaar/namecanon/pkg/role"
)

// Outcome is the resolved form of one given-name token.
type Outcome struct {
	Output   string
	Evidence role.Evidence
	Gender   lexicon.Gender
}

// Resolve maps text to its canonical given name, re-applying the letter case
// of the input ("ДАШИ" -> "ДАРЬЯ"). A nominative given name takes the display
// spelling of its lexicon entry ("Петр" -> "Пётр"), so every form of one name
// yields the same string. Unknown words pass through unchanged.
func Resolve(set *lexicon.Set, text string) Outcome {
	if canonical, ok := set.Diminutive(text); ok {
		gn, _ := set.GivenName(canonical)
		return Outcome{
			Output: lexicon.MatchCase(text, canonical, set.Lang()),
			Evidence: role.Evidence{
				Rule:       role.RuleDiminutiveResolved,
				Source:     role.SourceDiminutives,
				Match:      canonical,
				Confidence: role.ConfDiminutive,
			},
			Gender: gn.Gender,
		}
	}
	gn, ok := set.GivenName(text)
	if ok {
		if out := lexicon.MatchCase(text, gn.Name, set.Lang()); out != text {
			return Outcome{
				Output: out,
				Evidence: role.Evidence{
					Rule:       role.RuleDictionaryHit,
					Source:     role.SourceGivenNames,
					Match:      gn.Name,
					Confidence: role.ConfGivenName,
				},
				Gender: gn.Gender,
			}
		}
	}
	return Outcome{Output: text, Evidence: role.Evidence{Rule: role.RuleIdentity}, Gender: gn.Gender}
}

// Resolver resolves given names with the set of a registry language.
type Resolver struct {
	reg *lexicon.Registry
}

// NewResolver returns a resolver reading sets from reg.
func NewResolver(reg *lexicon.Registry) *Resolver {
	return &Resolver{reg: reg}
}

// Resolve resolves text in lang; it fails only when lang has no set.
func (r *Resolver) Resolve(text, lang string) (Outcome, error) {
	set, err := r.reg.Set(lang)
	if err != nil {
		return Outcome{}, err
	}
	return Resolve(set, text), nil
}
