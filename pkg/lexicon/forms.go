package lexicon

import "strings"

const (
	velars     = "гкх"
	sibilants  = "жчшщ"
	hushingTsc = "жчшщц"
	vowels     = "аеёиоуыэюяіїє"
)

// CaseForms generates the oblique case forms of a folded nominative given name
// or diminutive: genitive, dative, accusative, instrumental and
// prepositional/locative (plus vocative for Ukrainian). Forms identical to the
// nominative are dropped. Names that do not decline (and English) yield nil.
func CaseForms(lang, name string, g Gender) []string {
	r := []rune(name)
	if len(r) < 2 {
		return nil
	}
	var forms []string
	switch lang {
	case "ru":
		forms = ruForms(r, g)
	case "uk":
		forms = ukForms(r, g)
	default:
		return nil
	}
	out := forms[:0]
	seen := map[string]bool{name: true}
	for _, f := range forms {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func ruForms(r []rune, g Gender) []string {
	last, prev := r[len(r)-1], r[len(r)-2]
	name := string(r)
	stem := string(r[:len(r)-1])
	switch {
	case strings.HasSuffix(name, "ия"):
		// Мария: Марии, Марию, Марией
		return withEndings(stem, "и", "ю", "ей")
	case last == 'я':
		// Дарья, Таня, Илья
		return withEndings(stem, "и", "е", "ю", "ей")
	case last == 'а':
		gen := "ы"
		if strings.ContainsRune(velars+sibilants, prev) {
			gen = "и"
		}
		ins := "ой"
		if strings.ContainsRune(hushingTsc, prev) {
			ins = "ей"
		}
		return withEndings(stem, gen, "е", "у", ins)
	case last == 'й' && prev == 'и':
		// Юрий, Дмитрий
		return withEndings(stem, "я", "ю", "ем", "и")
	case last == 'й':
		// Сергей, Андрей, Николай
		return withEndings(stem, "я", "ю", "ем", "е")
	case last == 'ь':
		if g == Feminine {
			return withEndings(stem, "и", "ью")
		}
		return withEndings(stem, "я", "ю", "ем", "е")
	case isConsonant(last):
		if g == Feminine {
			return nil
		}
		ins := "ом"
		if strings.ContainsRune(hushingTsc, last) {
			ins = "ем"
		}
		return withEndings(name, "а", "у", ins, "е")
	}
	return nil
}

func ukForms(r []rune, g Gender) []string {
	last, prev := r[len(r)-1], r[len(r)-2]
	name := string(r)
	stem := string(r[:len(r)-1])
	switch {
	case strings.HasSuffix(name, "ія"):
		// Марія: Марії, Марію, Марією
		return withEndings(stem, "ї", "ю", "єю")
	case last == 'я':
		return withEndings(stem, "і", "ю", "ею", "е")
	case last == 'а':
		gen, ins := "и", "ою"
		if strings.ContainsRune(sibilants, prev) {
			gen, ins = "і", "ею"
		}
		forms := withEndings(stem, gen, "у", ins, "о")
		// Dative/locative alternate velars: Ольга -> Ользі, Віка -> Віці.
		return append(forms, ukAlternate(stem)+"і")
	case last == 'й' && prev == 'і':
		// Сергій, Олексій, Андрій
		return withEndings(stem, "я", "ю", "єм", "єві")
	case last == 'о':
		if g == Feminine {
			return nil
		}
		// Петро, Павло, Сашко
		return withEndings(stem, "а", "у", "ові", "ом")
	case last == 'ь':
		return withEndings(stem, "я", "ю", "ем", "еві")
	case isConsonant(last):
		if g == Feminine {
			return nil
		}
		ins := "ом"
		if strings.ContainsRune(hushingTsc, last) {
			ins = "ем"
		}
		return withEndings(name, "а", "у", "ові", ins, "е")
	}
	return nil
}

func ukAlternate(stem string) string {
	r := []rune(stem)
	switch r[len(r)-1] {
	case 'г':
		r[len(r)-1] = 'з'
	case 'к':
		r[len(r)-1] = 'ц'
	case 'х':
		r[len(r)-1] = 'с'
	}
	return string(r)
}

func withEndings(stem string, endings ...string) []string {
	out := make([]string, len(endings))
	for i, e := range endings {
		out[i] = stem + e
	}
	return out
}

func isConsonant(r rune) bool {
	if r == 'ь' || r == 'ъ' || r == 'й' || r == '\'' {
		return false
	}
	return r >= 'а' && r <= 'я' && !strings.ContainsRune(vowels, r) || strings.ContainsRune("ґ", r)
}
