// Package langid guesses whether a name string is Russian, Ukrainian or
// English from its script, the letters unique to each Cyrillic alphabet and a
// short list of marker words.
package langid

import (
	"strings"
	"unicode"
)

// Unknown is reported when no language can be inferred.
const Unknown = "unknown"

// Reasons explain a detection result.
const (
	ReasonEmpty             = "empty_text"
	ReasonTooFewLetters     = "insufficient_alphabetic_chars"
	ReasonTooManyNonLetters = "excessive_non_alphabetic_chars"
	ReasonMarkers           = "script_markers"
	ReasonCyrillicDefault   = "cyrillic_default"
	ReasonLatin             = "latin_script"
	ReasonAcronym           = "uppercase_acronym_penalty"
)

// Result is the detected language and a confidence in [0,1].
type Result struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

const (
	minLetters        = 3
	maxNonLetterRatio = 0.7
	// Without any distinguishing letter or word, Cyrillic text leans Russian.
	ruBias = 0.55
	ukBias = 0.45
	// markerWordWeight counts a marker word as much as two marker letters.
	markerWordWeight = 2
	acronymMaxLetters = 5
	acronymPenalty    = 0.4
)

var ruMarkerWords = map[string]bool{
	"и": true, "от": true, "перевод": true, "платеж": true, "платёж": true, "счет": true,
	"счёт": true, "получатель": true, "согласно": true, "договора": true, "средств": true,
}

var ukMarkerWords = map[string]bool{
	"і": true, "та": true, "від": true, "переказ": true, "платіж": true, "рахунок": true,
	"коштів": true, "отримувач": true, "згідно": true, "договору": true, "з": true,
}

// Detector is the default language detector.
type Detector struct{}

// Detect implements the normalize.LanguageDetector contract.
func (Detector) Detect(text string) Result {
	return Detect(text)
}

// Detect returns the most likely language of text. Cyrillic scores are
// sum-normalized between Russian and Ukrainian; Latin text is English with
// the share of ASCII letters as confidence.
func Detect(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Language: Unknown, Reason: ReasonEmpty}
	}

	var letters, upper, nonSpace, cyrillic, latin, ascii, ruLetters, ukLetters int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		nonSpace++
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
		if unicode.Is(unicode.Cyrillic, r) {
			cyrillic++
			switch unicode.ToLower(r) {
			case 'ы', 'э', 'ъ', 'ё':
				ruLetters++
			case 'і', 'ї', 'є', 'ґ':
				ukLetters++
			}
			continue
		}
		latin++
		if r < unicode.MaxASCII {
			ascii++
		}
	}

	if letters < minLetters {
		return Result{Language: Unknown, Reason: ReasonTooFewLetters}
	}
	if float64(nonSpace-letters)/float64(nonSpace) >= maxNonLetterRatio {
		return Result{Language: Unknown, Reason: ReasonTooManyNonLetters}
	}

	var res Result
	if latin >= cyrillic {
		res = Result{Language: "en", Confidence: float64(ascii) / float64(letters), Reason: ReasonLatin}
	} else {
		res = detectCyrillic(text, ruLetters, ukLetters)
	}

	words := strings.Fields(text)
	if len(words) == 1 && upper == letters && letters <= acronymMaxLetters {
		res.Confidence = max(0, res.Confidence-acronymPenalty)
		res.Reason = ReasonAcronym
	}
	return res
}

func detectCyrillic(text string, ruLetters, ukLetters int) Result {
	ru, uk := float64(ruLetters), float64(ukLetters)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\'' && r != '’'
	}) {
		if ruMarkerWords[w] {
			ru += markerWordWeight
		}
		if ukMarkerWords[w] {
			uk += markerWordWeight
		}
		if strings.ContainsAny(w, "'’") {
			uk++
		}
	}

	reason := ReasonMarkers
	if ru == 0 && uk == 0 {
		ru, uk = ruBias, ukBias
		reason = ReasonCyrillicDefault
	}
	if uk > ru {
		return Result{Language: "uk", Confidence: uk / (ru + uk), Reason: reason}
	}
	return Result{Language: "ru", Confidence: ru / (ru + uk), Reason: reason}
}
