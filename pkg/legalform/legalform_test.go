package legalform

import (
	"strings"
	"testing"

	"github.com/hazyhaar/namecanon/pkg/token"
)

func spanText(toks []token.Token, s Span) string {
	return strings.Join(token.Words(toks[s.Start:s.End]), " ")
}

func TestTag(t *testing.T) {
	tagger := Default()
	tests := []struct {
		text string
		lang string
		want []string
	}{
		{"ТОВ ПРИВАТБАНК", "uk", []string{"ТОВ ПРИВАТБАНК"}},
		{"ТОВ «Нова Пошта»", "uk", []string{"ТОВ « Нова Пошта »"}},
		{"Одін Марін Інкорпорейтед", "uk", []string{"Одін Марін Інкорпорейтед"}},
		{"Test Corporation", "en", []string{"Test Corporation"}},
		{"Acme Ltd.", "en", []string{"Acme Ltd"}},
		{"ООО Тест", "ru", []string{"ООО Тест"}},
		{"Анна Ковальська працює в ТОВ ПРИВАТБАНК", "uk", []string{"ТОВ ПРИВАТБАНК"}},
		{"товариство з обмеженою відповідальністю «Ромашка»", "uk",
			[]string{"товариство з обмеженою відповідальністю « Ромашка »"}},
		{"Smith Limited Liability Company", "en", []string{"Smith Limited Liability Company"}},
		{"Иван Петров", "ru", nil},
		{"Гнатюк Ігнатьєв", "uk", nil},
	}
	for _, tt := range tests {
		toks := token.Tokenize(tt.text, tt.lang)
		spans := tagger.Tag(toks)
		var got []string
		for _, s := range spans {
			got = append(got, spanText(toks, s))
		}
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("Tag(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestTagForm(t *testing.T) {
	toks := token.Tokenize("Анна Ковальська, ТОВ ПРИВАТБАНК", "uk")
	spans := Default().Tag(toks)
	if len(spans) != 1 {
		t.Fatalf("spans = %+v", spans)
	}
	if spans[0].Form != "тов" || spans[0].Lang != "uk" || spans[0].Start != 3 || spans[0].End != 5 {
		t.Errorf("span = %+v", spans[0])
	}

	covered := Covered(spans, len(toks))
	want := []bool{false, false, false, true, true}
	for i := range want {
		if covered[i] != want[i] {
			t.Errorf("Covered[%d] = %v, want %v", i, covered[i], want[i])
		}
	}
}

func TestMerge(t *testing.T) {
	got := merge([]Span{{Start: 4, End: 6, Form: "b"}, {Start: 0, End: 2, Form: "a"}, {Start: 1, End: 3, Form: "c"}})
	if len(got) != 2 || got[0].Start != 0 || got[0].End != 3 || got[0].Form != "a" || got[1].Start != 4 {
		t.Errorf("merge = %+v", got)
	}
}
