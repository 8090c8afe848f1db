// Package legalform marks organization spans by their legal form (ООО, ТОВ,
// LLC, "товариство з обмеженою відповідальністю", ...).
package legalform

import (
	"sort"
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/hazyhaar/namecanon/pkg/lexicon"
	"github.com/hazyhaar/namecanon/pkg/token"
)

// maxBackward bounds how many capitalized words before a trailing legal form
// are taken as the organization name ("Одін Марін Інкорпорейтед").
const maxBackward = 3

// Span is a run of tokens [Start, End) forming one organization.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Form  string `json:"form"`
	Lang  string `json:"lang"`
}

// Tagger finds legal forms in token sequences with an Aho-Corasick automaton.
// It is immutable after New and safe for concurrent use.
type Tagger struct {
	ac    ahocorasick.AhoCorasick
	forms []Form
}

// New builds a tagger for forms. Duplicate spellings are kept once.
func New(forms []Form) *Tagger {
	seen := make(map[string]bool, len(forms))
	t := &Tagger{}
	var patterns []string
	for _, f := range forms {
		key := fold(f.Text)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		t.forms = append(t.forms, Form{Text: key, Lang: f.Lang})
		patterns = append(patterns, key)
	}
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	t.ac = builder.Build(patterns)
	return t
}

// Default returns a tagger over DefaultForms.
func Default() *Tagger {
	return New(DefaultForms)
}

func fold(s string) string {
	return strings.Join(strings.Fields(lexicon.NormalizeCyrillic(s)), " ")
}

// Tag returns the organization spans of toks, sorted and non-overlapping.
// A match must cover whole tokens. The span then grows forward over a quoted
// name, a run of upper-case words or one capitalized word; when nothing
// follows, it grows backward over capitalized words.
func (t *Tagger) Tag(toks []token.Token) []Span {
	if len(toks) == 0 {
		return nil
	}
	var b strings.Builder
	starts := make(map[int]int, len(toks))
	ends := make(map[int]int, len(toks))
	for i, tok := range toks {
		if i > 0 {
			b.WriteByte(' ')
		}
		starts[b.Len()] = i
		b.WriteString(lexicon.NormalizeCyrillic(tok.Text))
		ends[b.Len()] = i
	}

	var spans []Span
	for _, m := range t.ac.FindAll(b.String()) {
		first, ok := starts[m.Start()]
		if !ok {
			continue
		}
		last, ok := ends[m.End()]
		if !ok {
			continue
		}
		f := t.forms[m.Pattern()]
		spans = append(spans, extend(toks, Span{Start: first, End: last + 1, Form: f.Text, Lang: f.Lang}))
	}
	return merge(spans)
}

func extend(toks []token.Token, s Span) Span {
	end := s.End
	switch {
	case end < len(toks) && isOpenQuote(toks[end].Text):
		end++
		for end < len(toks) && !isCloseQuote(toks[end].Text) {
			end++
		}
		if end < len(toks) {
			end++
		}
	default:
		for end < len(toks) && isWord(toks[end]) && toks[end].AllCaps {
			end++
		}
		if end == s.End && end < len(toks) && isWord(toks[end]) && toks[end].Title {
			end++
		}
	}
	if end > s.End {
		s.End = end
		return s
	}

	start := s.Start
	for start > 0 && s.Start-start < maxBackward && isWord(toks[start-1]) && (toks[start-1].Title || toks[start-1].AllCaps) {
		start--
	}
	s.Start = start
	return s
}

func isWord(t token.Token) bool { return !t.Punct && !t.Numeric }

func isOpenQuote(s string) bool {
	return s == "«" || s == "\"" || s == "“" || s == "„"
}

func isCloseQuote(s string) bool {
	return s == "»" || s == "\"" || s == "”" || s == "“"
}

// merge joins overlapping or touching spans, keeping the first form.
func merge(spans []Span) []Span {
	if len(spans) < 2 {
		return spans
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	out := spans[:1]
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.Start <= last.End {
			last.End = max(last.End, s.End)
			continue
		}
		out = append(out, s)
	}
	return out
}

// Covered marks the token indexes inside spans.
func Covered(spans []Span, n int) []bool {
	out := make([]bool, n)
	for _, s := range spans {
		for i := s.Start; i < s.End && i < n; i++ {
			out[i] = true
		}
	}
	return out
}
