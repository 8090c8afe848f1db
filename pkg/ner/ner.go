// Package ner suggests person roles for words the dictionaries do not know.
//
// The recognizer is heuristic: a capitalized word standing next to an
// initial ("О. Шевчук", "Шевчук О.В.") is most likely a surname. Hints only
// fill in for tokens the classifier leaves unknown.
//
// Recognizer is stateless and safe for concurrent use.
package ner

import (
	"unicode/utf8"

	"github.com/hazyhaar/namecanon/pkg/role"
	"github.com/hazyhaar/namecanon/pkg/token"
)

// Source is the evidence source of every hint.
const Source = "ner"

const confAdjacentInitial = 0.6

// Recognizer is the default heuristic recognizer.
type Recognizer struct{}

// Recognize implements the normalize.Recognizer contract.
func (Recognizer) Recognize(toks []token.Token) map[int]role.Hint {
	return Recognize(toks)
}

// Recognize returns surname hints keyed by token index. The result is never nil.
func Recognize(toks []token.Token) map[int]role.Hint {
	hints := make(map[int]role.Hint)
	for i, tok := range toks {
		if !capitalized(tok) {
			continue
		}
		if initialAt(toks, i-1) || initialAt(toks, i+1) {
			hints[tok.Index] = role.Hint{Role: role.Surname, Confidence: confAdjacentInitial, Source: Source}
		}
	}
	return hints
}

func capitalized(t token.Token) bool {
	if t.Punct || t.Numeric || t.Initial || utf8.RuneCountInString(t.Text) < 2 {
		return false
	}
	return t.Title || t.AllCaps
}

func initialAt(toks []token.Token, i int) bool {
	return i >= 0 && i < len(toks) && toks[i].Initial
}
