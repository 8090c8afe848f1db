package lexicon

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CasePattern is the letter-case shape of a token.
type CasePattern int

const (
	CaseMixed CasePattern = iota
	CaseLower
	CaseUpper
	CaseTitle
)

// PatternOf classifies the letter case of s. A single capital letter counts as title case.
func PatternOf(s string) CasePattern {
	var letters, upper int
	firstUpper := false
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		if letters == 0 {
			firstUpper = unicode.IsUpper(r)
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	switch {
	case letters == 0:
		return CaseMixed
	case upper == 0:
		return CaseLower
	case letters > 1 && upper == letters:
		return CaseUpper
	case firstUpper && upper == 1:
		return CaseTitle
	case firstUpper && isTitleHyphenated(s):
		return CaseTitle
	}
	return CaseMixed
}

// isTitleHyphenated accepts double names like Петров-Водкин where each part is title case.
func isTitleHyphenated(s string) bool {
	atStart := true
	for _, r := range s {
		if !unicode.IsLetter(r) {
			atStart = r == '-'
			continue
		}
		if atStart != unicode.IsUpper(r) {
			return false
		}
		atStart = false
	}
	return true
}

// MatchCase re-applies the letter case of template to s (e.g. "ДАШИ" + "Дарья" -> "ДАРЬЯ").
// Mixed-case templates leave s unchanged.
func MatchCase(template, s, lang string) string {
	tag := language.Make(lang)
	switch PatternOf(template) {
	case CaseUpper:
		return cases.Upper(tag).String(s)
	case CaseLower:
		return cases.Lower(tag).String(s)
	case CaseTitle:
		return cases.Title(tag).String(s)
	}
	return s
}
