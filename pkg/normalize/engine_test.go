package normalize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/hazyhaar/namecanon/pkg/cache"
	"github.com/hazyhaar/namecanon/pkg/lexicon"
	"github.com/hazyhaar/namecanon/pkg/role"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	reg := lexicon.NewRegistry("")
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return NewEngine(reg, nil)
}

func configFor(lang string) Config {
	cfg := DefaultConfig()
	cfg.Language = lang
	return cfg
}

func TestNormalizeGolden(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		lang string
		text string
		want string
	}{
		{"ru", "Дарьи Павловой", "Дарья Павлова"},
		{"ru", "Ивана Петрова", "Иван Петров"},
		{"ru", "Елены Сидоровой", "Елена Сидорова"},
		{"ru", "Максима Кузнецова", "Максим Кузнецов"},
		{"ru", "Мария Петрова", "Мария Петрова"},
		{"ru", "Павловой Даши Юрьевной", "Павлова Дарья Юрьевна"},
		{"ru", "Дашеньки Павловой", "Дарья Павлова"},
		{"ru", "ДАШИ ПАВЛОВОЙ", "ДАРЬЯ ПАВЛОВА"},
		{"ru", "Вове Петрову", "Владимир Петров"},
		{"uk", "Оксани Петренко", "Оксана Петренко"},
		{"uk", "Олені Петренко", "Олена Петренко"},
		{"uk", "Порошенка", "Порошенко"},
		{"uk", "Порошенку", "Порошенко"},
		{"uk", "Порошенком", "Порошенко"},
		{"uk", "Олексій Українець", "Олексій Українець"},
		{"uk", "Сергій Олійник", "Сергій Олійник"},
		{"uk", "Олександра", "Олександра"},
		{"ru", "Иван Иванов", "Иван Иванов"},
		{"uk", "Анна Ковальська працює в ТОВ ПРИВАТБАНК", "Анна Ковальська працює в ТОВ ПРИВАТБАНК"},
		{"ru", "Дарьи  Павловой,  Ивана Петрова", "Дарья  Павлова,  Иван Петров"},
	}
	for _, tt := range tests {
		res, err := e.Normalize(context.Background(), tt.text, configFor(tt.lang))
		if err != nil {
			t.Fatalf("Normalize(%q): %v", tt.text, err)
		}
		if res.Normalized != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.text, res.Normalized, tt.want)
		}
	}
}

func TestNormalizePreserveFeminine(t *testing.T) {
	e := newTestEngine(t)
	cfg := configFor("uk")
	cfg.PreserveFeminineSuffix = true
	res, err := e.Normalize(context.Background(), "Анна Ковальської", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Normalized != "Анна Ковальська" {
		t.Errorf("Normalized = %q, want %q", res.Normalized, "Анна Ковальська")
	}

	res, err = e.Normalize(context.Background(), "Коваленко Олександра Сергіївна", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Normalized != "Коваленко Олександра Сергіївна" {
		t.Errorf("Normalized = %q, want %q", res.Normalized, "Коваленко Олександра Сергіївна")
	}
}

func TestNormalizeOneSpellingPerName(t *testing.T) {
	e := newTestEngine(t)
	for _, tc := range []struct{ oblique, nominative, want string }{
		{"Петра Иванова", "Петр Иванов", "Пётр Иванов"},
		{"Артёма Иванова", "Артем Иванов", "Артём Иванов"},
		{"Фёдора Иванова", "Федор Иванов", "Фёдор Иванов"},
		{"ПЕТРА ИВАНОВА", "ПЕТР ИВАНОВ", "ПЁТР ИВАНОВ"},
	} {
		for _, in := range []string{tc.oblique, tc.nominative} {
			res, err := e.Normalize(context.Background(), in, configFor("ru"))
			if err != nil {
				t.Fatal(err)
			}
			if res.Normalized != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", in, res.Normalized, tc.want)
			}
		}
	}
}

func TestNormalizeStopwords(t *testing.T) {
	e := newTestEngine(t)
	text := "Переказ з картки О. Петренко"
	tests := []struct {
		strict   bool
		remove   bool
		want     string
		wantRole role.Role
	}{
		{false, false, text, role.Initial},
		{true, false, text, role.Stopword},
		{true, true, "О. Петренко", role.Stopword},
	}
	for _, tt := range tests {
		cfg := configFor("uk")
		cfg.StrictStopwords = tt.strict
		cfg.RemoveStopWords = tt.remove
		res, err := e.Normalize(context.Background(), text, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if res.Normalized != tt.want {
			t.Errorf("strict=%v remove=%v: Normalized = %q, want %q", tt.strict, tt.remove, res.Normalized, tt.want)
		}
		if got := res.Trace[1].Role; got != tt.wantRole {
			t.Errorf("strict=%v: role of %q = %v, want %v", tt.strict, res.Trace[1].Token, got, tt.wantRole)
		}
		if res.Trace[0].Removed != tt.remove {
			t.Errorf("remove=%v: Trace[0].Removed = %v", tt.remove, res.Trace[0].Removed)
		}
	}
}

func TestNormalizeOrganization(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.Normalize(context.Background(), "Анна Ковальська працює в ТОВ ПРИВАТБАНК", configFor("uk"))
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]role.Role{0: role.GivenName, 1: role.Surname, 4: role.Organization, 5: role.Organization}
	for i, r := range want {
		if res.Trace[i].Role != r {
			t.Errorf("Trace[%d] (%q) role = %v, want %v", i, res.Trace[i].Token, res.Trace[i].Role, r)
		}
	}
	if ev := res.Trace[4].Evidence[0]; ev.Rule != role.RuleLegalForm || ev.Match != "тов" {
		t.Errorf("Trace[4] evidence = %+v", ev)
	}
	if res.Trace[4].Candidate != -1 {
		t.Errorf("organization token candidate = %d, want -1", res.Trace[4].Candidate)
	}

	for _, tc := range []struct{ lang, text string }{
		{"ru", "ООО Тест"},
		{"en", "Test Corporation"},
		{"uk", "Одін Марін Інкорпорейтед"},
	} {
		res, err := e.Normalize(context.Background(), tc.text, configFor(tc.lang))
		if err != nil {
			t.Fatal(err)
		}
		for _, tr := range res.Trace {
			if tr.Role != role.Organization {
				t.Errorf("%q: token %q role = %v, want organization", tc.text, tr.Token, tr.Role)
			}
		}
		if res.Normalized != tc.text {
			t.Errorf("%q: Normalized = %q", tc.text, res.Normalized)
		}
	}
}

func TestNormalizeOptions(t *testing.T) {
	e := newTestEngine(t)

	cfg := configFor("ru")
	cfg.PreserveNames = false
	res, err := e.Normalize(context.Background(), "Дарьи Павловой", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Normalized != "дарья павлова" {
		t.Errorf("PreserveNames=false: %q", res.Normalized)
	}

	cfg = configFor("ru")
	cfg.EnableMorphology = false
	res, err = e.Normalize(context.Background(), "Дарьи Павловой", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Normalized != "Дарья Павловой" {
		t.Errorf("EnableMorphology=false: %q", res.Normalized)
	}
	ev := res.Trace[1].Evidence
	if ev[len(ev)-1].Rule != role.RuleMorphologyDisabled {
		t.Errorf("last evidence = %+v, want morphology_disabled", ev[len(ev)-1])
	}
}

func TestNormalizeTrace(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.Normalize(context.Background(), "Павловой Даши Юрьевной", configFor("ru"))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trace) != 3 || len(res.Tokens) != 3 {
		t.Fatalf("trace = %d entries, tokens = %v", len(res.Trace), res.Tokens)
	}
	wantRules := []role.RuleID{role.RuleDeclensionApplied, role.RuleDiminutiveResolved, role.RuleDeclensionApplied}
	for i, tr := range res.Trace {
		if tr.Index != i || tr.Candidate != 0 {
			t.Errorf("Trace[%d] index=%d candidate=%d", i, tr.Index, tr.Candidate)
		}
		last := tr.Evidence[len(tr.Evidence)-1]
		if last.Rule != wantRules[i] {
			t.Errorf("Trace[%d] last rule = %s, want %s", i, last.Rule, wantRules[i])
		}
	}
	if res.Language != "ru" || res.LanguageConfidence != 1 {
		t.Errorf("language = %s/%v", res.Language, res.LanguageConfidence)
	}
}

func TestNormalizeNERHint(t *testing.T) {
	e := newTestEngine(t)
	text := "О. Гнатюх"

	res, err := e.Normalize(context.Background(), text, configFor("uk"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Trace[1].Role != role.Surname {
		t.Fatalf("role = %v, want surname from hint", res.Trace[1].Role)
	}
	found := false
	for _, ev := range res.Trace[1].Evidence {
		if ev.Rule == role.RuleNERHint {
			found = true
		}
	}
	if !found {
		t.Errorf("no ner_hint evidence in %+v", res.Trace[1].Evidence)
	}

	cfg := configFor("uk")
	cfg.EnableAdvancedFeatures = false
	res, err = e.Normalize(context.Background(), text, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Trace[1].Role != role.Unknown {
		t.Errorf("without advanced features role = %v, want unknown", res.Trace[1].Role)
	}
}

func TestNormalizeAutoLanguage(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Normalize(context.Background(), "Олексій Шевченко", DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if res.Language != "uk" || res.LanguageConfidence <= 0 {
		t.Errorf("language = %s/%v, want uk", res.Language, res.LanguageConfidence)
	}

	res, err = e.Normalize(context.Background(), "", DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if res.Language != DefaultLanguage || res.LanguageConfidence != 0 {
		t.Errorf("empty text language = %s/%v", res.Language, res.LanguageConfidence)
	}
	if res.Normalized != "" || res.Tokens == nil || res.Trace == nil {
		t.Errorf("empty text result = %+v", res)
	}
}

func TestNormalizeErrors(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Normalize(context.Background(), "Иван", Config{Language: "de", EnableMorphology: true})
	var ce *ConfigurationError
	if !errors.As(err, &ce) || ce.Field != "language" {
		t.Errorf("unsupported language error = %v", err)
	}

	cfg := configFor("ru")
	cfg.EnableMorphology = false
	cfg.PreserveFeminineSuffix = true
	_, err = e.Normalize(context.Background(), "Иван", cfg)
	if !errors.As(err, &ce) || ce.Field != "preserve_feminine_suffix" {
		t.Errorf("conflicting options error = %v", err)
	}

	empty := lexicon.NewDirRegistry(t.TempDir())
	if err := empty.Load(); err != nil {
		t.Fatal(err)
	}
	_, err = NewEngine(empty, nil).Normalize(context.Background(), "Иван", configFor("ru"))
	var rle *lexicon.ResourceLoadError
	if !errors.As(err, &rle) || rle.Lang != "ru" {
		t.Errorf("missing set error = %v", err)
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	e := newTestEngine(t)
	cfg := configFor("ru")
	first, err := e.Normalize(context.Background(), "Павловой Даши Юрьевной", cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, _ := e.Normalize(context.Background(), "Павловой Даши Юрьевной", cfg)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestNormalizeIdempotentOnNominative(t *testing.T) {
	e := newTestEngine(t)
	for _, tc := range []struct{ lang, text string }{
		{"ru", "Дарьи Павловой"},
		{"ru", "Павловой Даши Юрьевной"},
		{"uk", "Олені Петренко"},
		{"uk", "Порошенка"},
		{"ru", "Иван Иванов"},
		{"ru", "Петр Иванов"},
	} {
		once, err := e.Normalize(context.Background(), tc.text, configFor(tc.lang))
		if err != nil {
			t.Fatal(err)
		}
		twice, err := e.Normalize(context.Background(), once.Normalized, configFor(tc.lang))
		if err != nil {
			t.Fatal(err)
		}
		if twice.Normalized != once.Normalized {
			t.Errorf("%q: %q then %q", tc.text, once.Normalized, twice.Normalized)
		}
	}
}

// countingCache records hits so tests can tell a cached result from a fresh one.
type countingCache struct {
	*cache.Memory
	mu   sync.Mutex
	hits int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := c.Memory.Get(ctx, key)
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
	}
	return v, ok, err
}

func TestNormalizeCacheConsistency(t *testing.T) {
	plain := newTestEngine(t)
	cached := newTestEngine(t)
	cc := &countingCache{Memory: cache.NewMemory(100)}
	cached.Cache = cc

	inputs := []struct{ lang, text string }{
		{"ru", "Вики Кухарук"},
		{"ru", "Сашка Пушкин"},
		{"ru", "Вове Петрову"},
		{"ru", "Марии Сидоровой"},
		{"uk", "Олені Петренко"},
	}
	for _, in := range inputs {
		cfg := configFor(in.lang)
		cfg.EnableCache = true
		want, err := plain.Normalize(context.Background(), in.text, cfg)
		if err != nil {
			t.Fatal(err)
		}
		miss, err := cached.Normalize(context.Background(), in.text, cfg)
		if err != nil {
			t.Fatal(err)
		}
		hit, err := cached.Normalize(context.Background(), in.text, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(want, miss) || !reflect.DeepEqual(want, hit) {
			t.Errorf("%q: cached result differs:\nfresh %+v\nhit   %+v", in.text, want, hit)
		}
	}
	if cc.hits != len(inputs) {
		t.Errorf("cache hits = %d, want %d", cc.hits, len(inputs))
	}

	// Options are part of the key.
	cfg := configFor("ru")
	cfg.EnableCache = true
	cfg.PreserveNames = false
	res, _ := cached.Normalize(context.Background(), "Вове Петрову", cfg)
	if res.Normalized != "владимир петров" {
		t.Errorf("different options served from cache: %q", res.Normalized)
	}
}

func TestNormalizeCacheAfterReload(t *testing.T) {
	dir := t.TempDir()
	dictDir := filepath.Join(dir, "declension-ru")
	if err := os.MkdirAll(dictDir, 0o755); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join("..", "lexicon", "data", "declension-ru")
	manifest, err := os.ReadFile(filepath.Join(src, "manifest.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	rules, err := os.ReadFile(filepath.Join(src, "rules.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dictDir, "manifest.yaml"), manifest)
	writeFile(t, filepath.Join(dictDir, "rules.yaml"), rules)

	reg := lexicon.NewRegistry(dir)
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	e := NewEngine(reg, nil)
	e.Cache = cache.NewMemory(100)
	cfg := configFor("ru")
	cfg.EnableCache = true

	res, err := e.Normalize(context.Background(), "Ивана Петрова", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Normalized != "Иван Петров" {
		t.Fatalf("Normalized = %q", res.Normalized)
	}

	writeFile(t, filepath.Join(dictDir, "rules.yaml"),
		[]byte(strings.Replace(string(rules), "nom: [ов],", "nom: [оф],", 1)))
	if err := reg.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	fresh, err := NewEngine(reg, nil).Normalize(context.Background(), "Ивана Петрова", configFor("ru"))
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Normalized != "Иван Петроф" {
		t.Fatalf("reloaded rules not applied: %q", fresh.Normalized)
	}
	got, err := e.Normalize(context.Background(), "Ивана Петрова", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got.Normalized != fresh.Normalized {
		t.Errorf("stale cached result %q after reload, want %q", got.Normalized, fresh.Normalized)
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("get failed")
}

func (failingCache) Put(context.Context, string, []byte) error {
	return errors.New("put failed")
}

func TestNormalizeCacheFailureIgnored(t *testing.T) {
	e := newTestEngine(t)
	e.Cache = failingCache{}
	cfg := configFor("ru")
	cfg.EnableCache = true
	res, err := e.Normalize(context.Background(), "Дарьи Павловой", cfg)
	if err != nil {
		t.Fatalf("cache failure surfaced: %v", err)
	}
	if res.Normalized != "Дарья Павлова" {
		t.Errorf("Normalized = %q", res.Normalized)
	}
}

func TestNormalizeConcurrent(t *testing.T) {
	e := newTestEngine(t)
	cfg := configFor("ru")
	want, _ := e.Normalize(context.Background(), "Ивана Петрова", cfg)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.Normalize(context.Background(), "Ивана Петрова", cfg)
			if err != nil || !reflect.DeepEqual(got, want) {
				errs <- "concurrent result differs"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}
