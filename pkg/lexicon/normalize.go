package lexicon

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer transforms a term before lookup.
type Normalizer func(string) string

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// apostrophes folds the typographic apostrophe variants seen in Ukrainian names (Ім’я, Мар'ян).
var apostrophes = strings.NewReplacer("’", "'", "ʼ", "'", "‘", "'", "`", "'", "′", "'")

// NormalizeLowercaseASCII lowercases and strips accents (e.g. JOSÉ -> jose).
// Not suitable for Cyrillic: NFD would split й and ї into a base letter and a mark.
func NormalizeLowercaseASCII(s string) string {
	result, _, _ := transform.String(stripAccents, strings.ToLower(s))
	return apostrophes.Replace(result)
}

// NormalizeLowercaseUTF8 lowercases but preserves accents.
func NormalizeLowercaseUTF8(s string) string {
	return strings.ToLower(s)
}

// NormalizeCyrillic lowercases in NFC, folds ё to е and unifies apostrophes.
func NormalizeCyrillic(s string) string {
	s = norm.NFC.String(strings.ToLower(s))
	s = strings.ReplaceAll(s, "ё", "е")
	return apostrophes.Replace(s)
}

// NormalizeNone returns the term unchanged.
func NormalizeNone(s string) string {
	return s
}

// GetNormalizer returns the normalizer for the given mode.
// Default is cyrillic.
func GetNormalizer(mode string) Normalizer {
	switch mode {
	case "lowercase_ascii":
		return NormalizeLowercaseASCII
	case "lowercase_utf8":
		return NormalizeLowercaseUTF8
	case "cyrillic":
		return NormalizeCyrillic
	case "none":
		return NormalizeNone
	default:
		return NormalizeCyrillic
	}
}

// FoldFor returns the key folding used by a language set.
func FoldFor(lang string) Normalizer {
	if lang == "en" {
		return NormalizeLowercaseASCII
	}
	return NormalizeCyrillic
}
