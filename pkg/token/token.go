// Package token splits raw text into name tokens with byte offsets, so the
// original spacing and punctuation can be rebuilt around normalized words.
package token

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hazyhaar/namecanon/pkg/lexicon"
)

// Token is one word or punctuation mark of the input. Start and End are byte
// offsets into the original text. Tokens are not modified after tokenization.
type Token struct {
	Text    string `json:"text"`
	Norm    string `json:"norm"`
	Lang    string `json:"lang,omitempty"`
	Index   int    `json:"index"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Punct   bool   `json:"punct,omitempty"`
	AllCaps bool   `json:"all_caps,omitempty"`
	Initial bool   `json:"initial,omitempty"`
	Title   bool   `json:"title,omitempty"`
	Numeric bool   `json:"numeric,omitempty"`
}

// Tokenizer is the default word splitter.
type Tokenizer struct{}

// Tokenize implements the normalize.Tokenizer contract.
func (Tokenizer) Tokenize(text, lang string) []Token {
	return Tokenize(text, lang)
}

// Tokenize splits text into words and punctuation marks. Apostrophes and
// hyphens between letters stay inside the word (Мар'яна, Петров-Водкин), and
// a single letter followed by a period forms one initial token ("П.").
func Tokenize(text, lang string) []Token {
	fold := lexicon.FoldFor(lang)
	var toks []Token
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isWordRune(r):
			end := scanWord(text, i)
			initial := false
			if utf8.RuneCountInString(text[i:end]) == 1 && unicode.IsLetter(r) && end < len(text) && text[end] == '.' {
				end++
				initial = true
			}
			toks = append(toks, newWord(text[i:end], lang, fold, len(toks), i, end, initial))
			i = end
		default:
			toks = append(toks, Token{
				Text:  text[i : i+size],
				Norm:  text[i : i+size],
				Lang:  lang,
				Index: len(toks),
				Start: i,
				End:   i + size,
				Punct: true,
			})
			i += size
		}
	}
	return toks
}

func newWord(s, lang string, fold lexicon.Normalizer, index, start, end int, initial bool) Token {
	t := Token{
		Text:    s,
		Norm:    fold(s),
		Lang:    lang,
		Index:   index,
		Start:   start,
		End:     end,
		Initial: initial,
		Numeric: true,
	}
	var letters, upper int
	for _, r := range s {
		if !unicode.IsDigit(r) {
			t.Numeric = false
		}
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	t.AllCaps = letters > 1 && upper == letters
	if !t.AllCaps && letters > 0 {
		pattern := lexicon.PatternOf(s)
		t.Title = pattern == lexicon.CaseTitle
	}
	return t
}

// scanWord returns the end offset of the word starting at i.
func scanWord(text string, i int) int {
	prevLetter := false
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case isWordRune(r):
			prevLetter = unicode.IsLetter(r)
			i += size
		case (isApostrophe(r) || isHyphen(r)) && prevLetter:
			next, _ := utf8.DecodeRuneInString(text[i+size:])
			if !unicode.IsLetter(next) {
				return i
			}
			prevLetter = false
			i += size
		default:
			return i
		}
	}
	return i
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isApostrophe(r rune) bool {
	return strings.ContainsRune("'’ʼ`", r)
}

func isHyphen(r rune) bool {
	return r == '-' || r == '‐'
}

// IsSeparator reports punctuation that ends a name candidate.
func IsSeparator(text string) bool {
	switch text {
	case ",", ";", "/", "(", ")", "[", "]", "|", "«", "»", "\"", "“", "”", "„", ":":
		return true
	}
	return false
}

// Words returns the text of every token, in order.
func Words(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}
