package tagger

import (
	"unicode/utf8"

	"github.com/hazyhaar/namecanon/pkg/lexicon"
	"github.com/hazyhaar/namecanon/pkg/role"
	"github.com/hazyhaar/namecanon/pkg/token"
)

// Options are the tagging switches taken from the normalization config.
type Options struct {
	// StrictStopwords tags bare single-letter function words ("з", "и") as
	// stopwords instead of letting them read as initials.
	StrictStopwords bool
}

// Tagged is a token with its final role and the evidence behind it.
type Tagged struct {
	Token     token.Token     `json:"token"`
	Role      role.Role       `json:"role"`
	Rule      string          `json:"rule"`
	Evidence  []role.Evidence `json:"evidence"`
	Candidate int             `json:"candidate"`
	// State is the machine state after the token; the last token carries End.
	State     State           `json:"state"`
}

// context is the read-only view a rule gets of the current call.
type context struct {
	set       *lexicon.Set
	opts      Options
	hints     map[int]role.Hint
	seenGiven bool
}

// step is the outcome of a rule that applies.
type step struct {
	next     State
	role     role.Role
	evidence []role.Evidence
	closes   bool
}

type rule struct {
	name  string
	apply func(State, token.Token, context) (step, bool)
}

// rules are tried in order; the first that applies decides the token.
var rules = []rule{
	{"punctuation", punctuation},
	{"strict_stopword", strictStopword},
	{"stopword", stopword},
	{"person", person},
}

// Tag runs the machine over one person span. hints, keyed by token index,
// may be nil. Separators and stopwords close the current name candidate; the
// machine reaches End after the last token.
func Tag(toks []token.Token, set *lexicon.Set, opts Options, hints map[int]role.Hint) []Tagged {
	out := make([]Tagged, 0, len(toks))
	ctx := context{set: set, opts: opts, hints: hints}
	state := Start
	candidate, open := 0, false

	for _, tok := range toks {
		for _, r := range rules {
			s, ok := r.apply(state, tok, ctx)
			if !ok {
				continue
			}
			t := Tagged{Token: tok, Role: s.role, Rule: r.name, Evidence: s.evidence, Candidate: -1, State: s.next}
			if s.closes {
				if open {
					candidate++
					open = false
				}
				ctx.seenGiven = false
			} else {
				t.Candidate = candidate
				if s.role.IsPerson() {
					open = true
				}
				if s.role == role.GivenName {
					ctx.seenGiven = true
				}
			}
			state = s.next
			out = append(out, t)
			break
		}
	}
	if n := len(out); n > 0 {
		out[n-1].State = End
	}
	return out
}

func punctuation(state State, tok token.Token, _ context) (step, bool) {
	switch {
	case tok.Punct:
		if token.IsSeparator(tok.Text) {
			return step{next: Start, role: role.Unknown, closes: true,
				evidence: []role.Evidence{{Rule: role.RulePunctuation, Match: tok.Text, Note: "separator"}}}, true
		}
		return step{next: state, role: role.Unknown,
			evidence: []role.Evidence{{Rule: role.RulePunctuation, Match: tok.Text}}}, true
	case tok.Numeric:
		return step{next: Start, role: role.Unknown, closes: true,
			evidence: []role.Evidence{{Rule: role.RuleUnresolved, Match: tok.Text, Note: "numeric"}}}, true
	}
	return step{}, false
}

func strictStopword(_ State, tok token.Token, ctx context) (step, bool) {
	if !ctx.opts.StrictStopwords || tok.Initial || utf8.RuneCountInString(tok.Text) != 1 {
		return step{}, false
	}
	if !ctx.set.IsStopword(tok.Text) {
		return step{}, false
	}
	return step{next: Start, role: role.Stopword, closes: true, evidence: []role.Evidence{{
		Rule: role.RuleStopword, Source: role.SourceStopwords, Match: tok.Norm, Confidence: 1,
		Note: "single-letter function word",
	}}}, true
}

func stopword(_ State, tok token.Token, ctx context) (step, bool) {
	if utf8.RuneCountInString(tok.Text) < 2 || !ctx.set.IsStopword(tok.Text) {
		return step{}, false
	}
	return step{next: Start, role: role.Stopword, closes: true, evidence: []role.Evidence{{
		Rule: role.RuleStopword, Source: role.SourceStopwords, Match: tok.Norm, Confidence: 1,
	}}}, true
}

// person is the default rule: the classifier's suggestion, an NER hint for
// otherwise unknown words, and the positional check on patronymics.
func person(state State, tok token.Token, ctx context) (step, bool) {
	r, ev := role.Classify(ctx.set, tok.Text)
	evidence := []role.Evidence{ev}

	if r == role.Unknown {
		if h, ok := ctx.hints[tok.Index]; ok && h.Role.IsPerson() {
			r = h.Role
			evidence = append(evidence, role.Evidence{
				Rule: role.RuleNERHint, Source: h.Source, Match: h.Role.String(), Confidence: 0.5 * h.Confidence,
			})
		}
	}
	if r == role.Patronymic && !ctx.seenGiven {
		r = role.Unknown
		evidence = append(evidence, role.Evidence{
			Rule: role.RulePositionalContext, Match: tok.Text, Note: "patronymic before any given name",
		})
	}

	return step{next: transition(state, r), role: r, evidence: evidence}, true
}

func transition(state State, r role.Role) State {
	switch r {
	case role.GivenName:
		return AfterGiven
	case role.Surname:
		return AfterSurname
	case role.Patronymic:
		return AfterPatronymic
	case role.Initial:
		return AfterInitial
	}
	return state
}
