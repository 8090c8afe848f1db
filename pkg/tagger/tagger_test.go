package tagger

import (
	"testing"

	"github.com/hazyhaar/namecanon/pkg/lexicon"
	"github.com/hazyhaar/namecanon/pkg/role"
	"github.com/hazyhaar/namecanon/pkg/token"
)

func loadSet(t *testing.T, lang string) *lexicon.Set {
	t.Helper()
	reg := lexicon.NewRegistry("")
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	set, err := reg.Set(lang)
	if err != nil {
		t.Fatalf("Set(%s): %v", lang, err)
	}
	return set
}

func roles(tagged []Tagged) []role.Role {
	out := make([]role.Role, len(tagged))
	for i, t := range tagged {
		out[i] = t.Role
	}
	return out
}

func TestTag(t *testing.T) {
	tests := []struct {
		lang   string
		text   string
		strict bool
		want   []role.Role
	}{
		{"ru", "Павловой Даши Юрьевной", false,
			[]role.Role{role.Surname, role.GivenName, role.Patronymic}},
		{"ru", "Иван Иванов", false,
			[]role.Role{role.GivenName, role.Surname}},
		{"ru", "Петров Сергеевич", false,
			[]role.Role{role.Surname, role.Unknown}},
		{"ru", "Оплата Петрову И. И.", false,
			[]role.Role{role.Stopword, role.Surname, role.Initial, role.Initial}},
		{"uk", "Переказ з картки О. Петренко", true,
			[]role.Role{role.Stopword, role.Stopword, role.Stopword, role.Initial, role.Surname}},
		{"uk", "Переказ з картки О. Петренко", false,
			[]role.Role{role.Stopword, role.Initial, role.Stopword, role.Initial, role.Surname}},
		{"ru", "Иванов, Петров", false,
			[]role.Role{role.Surname, role.Unknown, role.Surname}},
	}
	for _, tt := range tests {
		set := loadSet(t, tt.lang)
		got := roles(Tag(token.Tokenize(tt.text, tt.lang), set, Options{StrictStopwords: tt.strict}, nil))
		if len(got) != len(tt.want) {
			t.Errorf("Tag(%q) = %v, want %v", tt.text, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Tag(%q) = %v, want %v", tt.text, got, tt.want)
				break
			}
		}
	}
}

func TestTagRulesAndStates(t *testing.T) {
	set := loadSet(t, "uk")
	tagged := Tag(token.Tokenize("Переказ з картки О. Петренко", "uk"), set, Options{StrictStopwords: true}, nil)

	wantRules := []string{"stopword", "strict_stopword", "stopword", "person", "person"}
	wantStates := []State{Start, Start, Start, AfterInitial, End}
	for i, tg := range tagged {
		if tg.Rule != wantRules[i] {
			t.Errorf("token %q rule = %s, want %s", tg.Token.Text, tg.Rule, wantRules[i])
		}
		if tg.State != wantStates[i] {
			t.Errorf("token %q state = %v, want %v", tg.Token.Text, tg.State, wantStates[i])
		}
		if len(tg.Evidence) == 0 {
			t.Errorf("token %q has no evidence", tg.Token.Text)
		}
	}
}

func TestTagPositionalDowngrade(t *testing.T) {
	set := loadSet(t, "ru")
	tagged := Tag(token.Tokenize("Петров Сергеевич Иванов", "ru"), set, Options{}, nil)
	ev := tagged[1].Evidence
	if len(ev) != 2 || ev[0].Rule != role.RuleSuffixMatch || ev[1].Rule != role.RulePositionalContext {
		t.Errorf("evidence = %+v, want suffix_match then positional_context", ev)
	}
	if tagged[1].State != AfterSurname {
		t.Errorf("unknown token should keep the state, got %v", tagged[1].State)
	}
	if tagged[2].State != End {
		t.Errorf("last token state = %v, want end", tagged[2].State)
	}
}

func TestTagCandidates(t *testing.T) {
	set := loadSet(t, "ru")
	tagged := Tag(token.Tokenize("Иван Иванов; Мария Петрова", "ru"), set, Options{}, nil)
	want := []int{0, 0, -1, 1, 1}
	for i, tg := range tagged {
		if tg.Candidate != want[i] {
			t.Errorf("token %q candidate = %d, want %d", tg.Token.Text, tg.Candidate, want[i])
		}
	}
}

func TestTagNERHint(t *testing.T) {
	set := loadSet(t, "ru")
	toks := token.Tokenize("Быков А.", "ru")
	hints := map[int]role.Hint{0: {Role: role.Surname, Confidence: 0.8, Source: "heuristic"}}

	tagged := Tag(toks, set, Options{}, hints)
	if tagged[0].Role != role.Surname {
		t.Fatalf("Быков role = %v, want surname from hint", tagged[0].Role)
	}
	last := tagged[0].Evidence[len(tagged[0].Evidence)-1]
	if last.Rule != role.RuleNERHint || last.Confidence != 0.4 {
		t.Errorf("hint evidence = %+v, want ner_hint at 0.4", last)
	}

	// Hints never override the classifier.
	toks = token.Tokenize("Иван", "ru")
	tagged = Tag(toks, set, Options{}, map[int]role.Hint{0: {Role: role.Surname, Confidence: 1}})
	if tagged[0].Role != role.GivenName {
		t.Errorf("Иван role = %v, want given_name", tagged[0].Role)
	}
}

func TestTagEmpty(t *testing.T) {
	if got := Tag(nil, loadSet(t, "ru"), Options{}, nil); len(got) != 0 {
		t.Errorf("Tag(nil) = %v", got)
	}
}
