package role

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/hazyhaar/namecanon/pkg/lexicon"
)

func loadRegistry(t *testing.T) *lexicon.Registry {
	t.Helper()
	reg := lexicon.NewRegistry("")
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return reg
}

func TestClassify(t *testing.T) {
	reg := loadRegistry(t)
	tests := []struct {
		lang   string
		text   string
		want   Role
		rule   RuleID
		source string
		match  string
	}{
		{"ru", "Дашеньки", GivenName, RuleDictionaryHit, SourceDiminutives, "Дарья"},
		{"ru", "Ивана", GivenName, RuleDictionaryHit, SourceDiminutives, "Иван"},
		{"ru", "Иван", GivenName, RuleDictionaryHit, SourceGivenNames, "Иван"},
		{"ru", "ИВАНОВ", Surname, RuleDictionaryHit, SourceSurnames, "иванов"},
		{"ru", "Павловой", Surname, RuleSuffixMatch, SourceSurnameSfx, "овой"},
		{"ru", "Сергеевич", Patronymic, RuleSuffixMatch, SourcePatronymics, "евич"},
		{"ru", "Юрьевной", Patronymic, RuleSuffixMatch, SourcePatronymics, "евной"},
		{"ru", "П.", Initial, RuleInitialShape, "", "П."},
		{"ru", "Быков", Unknown, RuleUnresolved, "", ""},
		{"uk", "Олександра", GivenName, RuleDictionaryHit, SourceGivenNames, "Олександра"},
		{"uk", "Сергіївна", Patronymic, RuleSuffixMatch, SourcePatronymics, "ївна"},
		{"uk", "Порошенка", Surname, RuleSuffixMatch, SourceSurnameSfx, "енка"},
		{"uk", "Ковальської", Surname, RuleSuffixMatch, SourceSurnameSfx, "ської"},
		{"uk", "з", Initial, RuleInitialShape, "", "з"},
		{"en", "Bill", GivenName, RuleDictionaryHit, SourceDiminutives, "William"},
		{"en", "Smith", Surname, RuleDictionaryHit, SourceSurnames, "smith"},
		{"en", "Payment", Unknown, RuleUnresolved, "", ""},
	}
	for _, tt := range tests {
		set, err := reg.Set(tt.lang)
		if err != nil {
			t.Fatal(err)
		}
		got, ev := Classify(set, tt.text)
		if got != tt.want {
			t.Errorf("%s Classify(%q) = %v, want %v", tt.lang, tt.text, got, tt.want)
			continue
		}
		if ev.Rule != tt.rule || ev.Source != tt.source || ev.Match != tt.match {
			t.Errorf("%s Classify(%q) evidence = %+v, want rule %s source %q match %q", tt.lang, tt.text, ev, tt.rule, tt.source, tt.match)
		}
		if ev.Confidence < 0 || ev.Confidence > 1 {
			t.Errorf("confidence out of range: %v", ev.Confidence)
		}
	}
}

// tieSet builds a set whose patronymic and surname tables share endings.
func tieSet(t *testing.T) *lexicon.Set {
	t.Helper()
	rf, err := lexicon.ParseRules([]byte(`language: ru
cases: [nom]
surnames:
  - name: ovna
    gender: f
    forms: {nom: [овна]}
  - name: vna
    gender: f
    forms: {nom: [ивна]}
patronymics:
  - name: vna
    gender: f
    forms: {nom: [вна]}
  - name: ivna
    gender: f
    forms: {nom: [ивна]}
  - name: evna
    gender: f
    forms: {nom: [левна]}
`))
	if err != nil {
		t.Fatal(err)
	}
	dicts := []*lexicon.Dictionary{
		{Manifest: &lexicon.Manifest{ID: "g", Language: "ru", Kind: lexicon.KindGivenName}, Entries: map[string]*lexicon.Entry{}},
		{Manifest: &lexicon.Manifest{ID: "s", Language: "ru", Kind: lexicon.KindSurname}, Entries: map[string]*lexicon.Entry{}},
		{Manifest: &lexicon.Manifest{ID: "d", Language: "ru", Kind: lexicon.KindDeclension}, Rules: rf},
	}
	set, err := lexicon.BuildSet("ru", dicts)
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestClassifySuffixTie(t *testing.T) {
	set := tieSet(t)
	tests := []struct {
		text string
		want Role
	}{
		{"Попова", Unknown},     // no rule at all
		{"Петровна", Surname},   // surname -овна longer than patronymic -вна
		{"Марьивна", Surname},   // equal length favors surname
		{"Павлевна", Patronymic}, // patronymic -левна longer than any surname ending
	}
	for _, tt := range tests {
		if got, ev := Classify(set, tt.text); got != tt.want {
			t.Errorf("Classify(%q) = %v (%+v), want %v", tt.text, got, ev, tt.want)
		}
	}
}

func TestIsInitialShape(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"П.", true},
		{"J", true},
		{"з", true},
		{"ПП", false},
		{".", false},
		{"1.", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsInitialShape(tt.in); got != tt.want {
			t.Errorf("IsInitialShape(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClassifierUnknownLanguage(t *testing.T) {
	c := NewClassifier(loadRegistry(t))
	_, _, err := c.Classify("Иван", "pl")
	var rle *lexicon.ResourceLoadError
	if !errors.As(err, &rle) {
		t.Fatalf("err = %v, want ResourceLoadError", err)
	}

	r, _, err := c.Classify("Иван", "ru")
	if err != nil || r != GivenName {
		t.Errorf("Classify(Иван, ru) = %v, %v", r, err)
	}
}

func TestRoleJSON(t *testing.T) {
	for r := Unknown; r <= Stopword; r++ {
		data, err := json.Marshal(r)
		if err != nil {
			t.Fatal(err)
		}
		var back Role
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Unmarshal(%s): %v", data, err)
		}
		if back != r {
			t.Errorf("round trip %v -> %s -> %v", r, data, back)
		}
	}
	var r Role
	if err := json.Unmarshal([]byte(`"nickname"`), &r); err == nil {
		t.Error("expected error for unknown role name")
	}
}
