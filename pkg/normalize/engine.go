// Package normalize turns a raw name string (a payment purpose, a form field,
// a document line) into canonical nominative names with a per-token trace.
//
// Engine chains the collaborators: tokenizer, language detector, legal-form
// tagger, optional recognizer, the role-tagging state machine, then the
// diminutive and declension resolvers for each tagged token. Every call works
// on one immutable lexicon set and local state only, so an Engine is safe for
// concurrent use.
package normalize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/hazyhaar/namecanon/pkg/declension"
	"github.com/hazyhaar/namecanon/pkg/diminutive"
	"github.com/hazyhaar/namecanon/pkg/langid"
	"github.com/hazyhaar/namecanon/pkg/legalform"
	"github.com/hazyhaar/namecanon/pkg/lexicon"
	"github.com/hazyhaar/namecanon/pkg/ner"
	"github.com/hazyhaar/namecanon/pkg/role"
	"github.com/hazyhaar/namecanon/pkg/tagger"
	"github.com/hazyhaar/namecanon/pkg/token"
)

// Tokenizer splits text into tokens with byte offsets.
type Tokenizer interface {
	Tokenize(text, lang string) []token.Token
}

// LanguageDetector guesses the language of text.
type LanguageDetector interface {
	Detect(text string) langid.Result
}

// OrgTagger finds organization spans.
type OrgTagger interface {
	Tag(toks []token.Token) []legalform.Span
}

// Recognizer suggests roles for tokens the dictionaries leave unknown.
type Recognizer interface {
	Recognize(toks []token.Token) map[int]role.Hint
}

// Cache stores encoded results.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// DefaultLanguage is used when auto-detection cannot decide.
const DefaultLanguage = LanguageRussian

// Engine normalizes name strings against the sets of a registry.
// Collaborators may be replaced after NewEngine and before the first call.
// A nil OrgTagger, Recognizer or Cache disables that step.
type Engine struct {
	Tokenizer       Tokenizer
	Detector        LanguageDetector
	Orgs            OrgTagger
	Recognizer      Recognizer
	Cache           Cache
	DefaultLanguage string

	reg    *lexicon.Registry
	logger *slog.Logger
}

// NewEngine returns an engine with the default collaborators and no cache.
func NewEngine(reg *lexicon.Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		Tokenizer:       token.Tokenizer{},
		Detector:        langid.Detector{},
		Orgs:            legalform.Default(),
		Recognizer:      ner.Recognizer{},
		DefaultLanguage: DefaultLanguage,
		reg:             reg,
		logger:          logger,
	}
}

// Registry returns the registry the engine reads its sets from.
func (e *Engine) Registry() *lexicon.Registry {
	return e.reg
}

// entry is the per-token working state of one call.
type entry struct {
	tok       token.Token
	role      role.Role
	rule      string
	evidence  []role.Evidence
	candidate int
	output    string
}

// Normalize returns the canonical form of text. Errors are returned before
// any result is built: a *ConfigurationError for cfg, a
// *lexicon.ResourceLoadError when the language has no set. Unresolved tokens
// are never errors; they pass through with their evidence.
func (e *Engine) Normalize(ctx context.Context, text string, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	text = norm.NFC.String(text)

	lang, confidence := e.language(text, cfg)
	set, err := e.reg.Set(lang)
	if err != nil {
		return nil, err
	}

	var key string
	if cfg.EnableCache && e.Cache != nil {
		key = cacheKey(text, lang, cfg, set.Version())
		if res, ok := e.cached(ctx, key); ok {
			e.logger.Debug("normalize", "lang", lang, "cache", "hit")
			return res, nil
		}
	}

	toks := e.Tokenizer.Tokenize(text, lang)
	entries := make([]entry, len(toks))

	var spans []legalform.Span
	if e.Orgs != nil {
		spans = e.Orgs.Tag(toks)
	}
	for _, s := range spans {
		for i := s.Start; i < s.End; i++ {
			entries[i] = entry{
				tok:       toks[i],
				role:      role.Organization,
				rule:      string(role.RuleLegalForm),
				candidate: -1,
				output:    toks[i].Text,
				evidence: []role.Evidence{{
					Rule: role.RuleLegalForm, Source: role.SourceLegalForms, Match: s.Form, Confidence: 1, Note: s.Lang,
				}},
			}
		}
	}

	var hints map[int]role.Hint
	if cfg.EnableAdvancedFeatures && e.Recognizer != nil {
		hints = e.Recognizer.Recognize(toks)
	}

	covered := legalform.Covered(spans, len(toks))
	opts := tagger.Options{StrictStopwords: cfg.StrictStopwords}
	base := 0
	for start := 0; start < len(toks); {
		if covered[start] {
			start++
			continue
		}
		end := start
		for end < len(toks) && !covered[end] {
			end++
		}
		last := -1
		for _, t := range tagger.Tag(toks[start:end], set, opts, hints) {
			c := t.Candidate
			if c >= 0 {
				last = max(last, c)
				c += base
			}
			entries[t.Token.Index] = entry{
				tok:       t.Token,
				role:      t.Role,
				rule:      t.Rule,
				evidence:  t.Evidence,
				candidate: c,
				output:    t.Token.Text,
			}
		}
		base += last + 1
		start = end
	}

	genders := candidateGenders(set, entries)
	for i := range entries {
		resolve(set, &entries[i], genders, cfg)
	}

	res := assemble(text, entries, cfg, lang)
	res.Language = lang
	res.LanguageConfidence = confidence

	e.logger.Debug("normalize", "lang", lang, "tokens", len(toks), "orgs", len(spans))
	if key != "" {
		e.store(ctx, key, res)
	}
	return res, nil
}

func (e *Engine) language(text string, cfg Config) (string, float64) {
	if cfg.Language != LanguageAuto {
		return cfg.Language, 1
	}
	r := e.Detector.Detect(text)
	if r.Language == langid.Unknown {
		e.logger.Debug("language undetected, using default", "reason", r.Reason, "default", e.DefaultLanguage)
		return e.DefaultLanguage, 0
	}
	return r.Language, r.Confidence
}

// candidateGenders takes, for each name candidate, the gender of its first
// patronymic, or else of its first given name.
func candidateGenders(set *lexicon.Set, entries []entry) map[int]lexicon.Gender {
	fromPatronymic := make(map[int]lexicon.Gender)
	fromGiven := make(map[int]lexicon.Gender)
	for _, en := range entries {
		if en.candidate < 0 {
			continue
		}
		switch en.role {
		case role.Patronymic:
			if _, ok := fromPatronymic[en.candidate]; !ok {
				if g := declension.PatronymicGender(set, en.tok.Text); g != lexicon.GenderUnknown {
					fromPatronymic[en.candidate] = g
				}
			}
		case role.GivenName:
			if _, ok := fromGiven[en.candidate]; !ok {
				if g := diminutive.Resolve(set, en.tok.Text).Gender; g != lexicon.GenderUnknown {
					fromGiven[en.candidate] = g
				}
			}
		}
	}
	for c, g := range fromPatronymic {
		fromGiven[c] = g
	}
	return fromGiven
}

// resolve computes the output form of one person token.
func resolve(set *lexicon.Set, en *entry, genders map[int]lexicon.Gender, cfg Config) {
	switch en.role {
	case role.GivenName:
		out := diminutive.Resolve(set, en.tok.Text)
		en.output = out.Output
		en.evidence = appendEvidence(en.evidence, out.Evidence)
	case role.Surname, role.Patronymic:
		if !cfg.EnableMorphology {
			en.evidence = appendEvidence(en.evidence, role.Evidence{Rule: role.RuleMorphologyDisabled})
			return
		}
		out := declension.ToNominative(set, en.tok.Text, en.role, declension.Options{
			Gender:           genders[en.candidate],
			PreserveFeminine: cfg.PreserveFeminineSuffix,
		})
		en.output = out.Output
		en.evidence = appendEvidence(en.evidence, out.Evidence)
	}
}

// appendEvidence never writes into the backing array of the tagger's slice.
func appendEvidence(list []role.Evidence, ev role.Evidence) []role.Evidence {
	return append(slices.Clip(list), ev)
}

// assemble rebuilds the text from the kept tokens, each preceded by the
// original gap to the previous kept token.
func assemble(text string, entries []entry, cfg Config, lang string) *Result {
	res := &Result{Tokens: []string{}, Trace: make([]TraceEntry, 0, len(entries))}
	lower := cases.Lower(language.Make(lang))

	var b strings.Builder
	prevEnd := -1
	for i, en := range entries {
		out := en.output
		if !cfg.PreserveNames && en.role.IsPerson() {
			out = lower.String(out)
		}
		removed := cfg.RemoveStopWords && en.role == role.Stopword
		evidence := en.evidence
		if evidence == nil {
			evidence = []role.Evidence{}
		}
		res.Trace = append(res.Trace, TraceEntry{
			Index:     i,
			Token:     en.tok.Text,
			Role:      en.role,
			Rule:      en.rule,
			Evidence:  evidence,
			Output:    out,
			Candidate: en.candidate,
			Removed:   removed,
		})
		if removed {
			continue
		}
		if prevEnd >= 0 {
			b.WriteString(text[prevEnd:en.tok.Start])
		}
		b.WriteString(out)
		prevEnd = en.tok.End
		res.Tokens = append(res.Tokens, out)
	}
	res.Normalized = b.String()
	return res
}

// cacheKey covers everything a result depends on: the NFC text, the
// resolved language, every option and the version of the lexicon set.
func cacheKey(text, lang string, cfg Config, version string) string {
	opts, _ := json.Marshal(cfg)
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s", text, lang, opts, version)
	return hex.EncodeToString(h.Sum(nil))
}

func (e *Engine) cached(ctx context.Context, key string) (*Result, bool) {
	data, ok, err := e.Cache.Get(ctx, key)
	if err != nil {
		e.logger.Warn("cache get failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		e.logger.Warn("cache entry undecodable", "error", err)
		return nil, false
	}
	return &res, true
}

func (e *Engine) store(ctx context.Context, key string, res *Result) {
	data, err := json.Marshal(res)
	if err != nil {
		e.logger.Warn("cache encode failed", "error", err)
		return
	}
	if err := e.Cache.Put(ctx, key, data); err != nil {
		e.logger.Warn("cache put failed", "error", err)
	}
}
