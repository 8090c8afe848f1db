package role

// RuleID identifies the rule that produced a piece of evidence.
type RuleID string

const (
	RuleDictionaryHit      RuleID = "dictionary_hit"
	RuleSuffixMatch        RuleID = "suffix_match"
	RuleInitialShape       RuleID = "initial_shape"
	RulePositionalContext  RuleID = "positional_context"
	RuleNERHint            RuleID = "ner_hint"
	RuleStopword           RuleID = "stopword"
	RuleLegalForm          RuleID = "legal_form"
	RulePunctuation        RuleID = "punctuation"
	RuleUnresolved         RuleID = "unresolved"
	RuleDiminutiveResolved RuleID = "diminutive_resolved"
	RuleDeclensionApplied  RuleID = "declension_applied"
	RuleNoRuleMatched      RuleID = "no_rule_matched"
	RuleMorphologyDisabled RuleID = "morphology_disabled"
	RuleIdentity           RuleID = "identity"
)

// Evidence records why a role or an output form was chosen.
// Values are built once and only ever appended to a trace.
type Evidence struct {
	Rule       RuleID  `json:"rule"`
	Source     string  `json:"source,omitempty"`
	Match      string  `json:"match,omitempty"`
	Confidence float64 `json:"confidence"`
	Note       string  `json:"note,omitempty"`
}

// Dictionary sources named in evidence.
const (
	SourceDiminutives = "diminutives"
	SourceGivenNames  = "given_names"
	SourceSurnames    = "surnames"
	SourcePatronymics = "patronymic_suffixes"
	SourceSurnameSfx  = "surname_suffixes"
	SourceStopwords   = "stopwords"
	SourceLegalForms  = "legal_forms"
)

// Confidence contributed by each classifier rule.
const (
	ConfDiminutive = 0.90
	ConfGivenName  = 0.95
	ConfSurname    = 0.95
	ConfPatronymic = 0.80
	ConfSurnameSfx = 0.70
	ConfInitial    = 0.60
)

// Hint is a role suggestion from a recognizer outside the dictionaries.
// It only fills in for tokens the classifier leaves unknown.
type Hint struct {
	Role       Role    `json:"role"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
}
