package normalize

import "fmt"

// Supported values of Config.Language.
const (
	LanguageAuto      = "auto"
	LanguageRussian   = "ru"
	LanguageUkrainian = "uk"
	LanguageEnglish   = "en"
)

// Config holds the per-call normalization options. It is passed by value and
// never modified by the engine.
type Config struct {
	Language               string `json:"language" yaml:"language"`
	StrictStopwords        bool   `json:"strict_stopwords" yaml:"strict_stopwords"`
	PreserveFeminineSuffix bool   `json:"preserve_feminine_suffix" yaml:"preserve_feminine_suffix"`
	EnableMorphology       bool   `json:"enable_morphology" yaml:"enable_morphology"`
	RemoveStopWords        bool   `json:"remove_stop_words" yaml:"remove_stop_words"`
	PreserveNames          bool   `json:"preserve_names" yaml:"preserve_names"`
	EnableAdvancedFeatures bool   `json:"enable_advanced_features" yaml:"enable_advanced_features"`
	EnableCache            bool   `json:"enable_cache" yaml:"enable_cache"`
}

// DefaultConfig returns the defaults. Decode JSON or YAML on top of it so
// omitted fields keep their default.
func DefaultConfig() Config {
	return Config{
		Language:               LanguageAuto,
		EnableMorphology:       true,
		PreserveNames:          true,
		EnableAdvancedFeatures: true,
	}
}

// Validate reports the first invalid option as a *ConfigurationError.
func (c Config) Validate() error {
	if err := ValidateLanguage(c.Language); err != nil {
		return err
	}
	if c.PreserveFeminineSuffix && !c.EnableMorphology {
		return &ConfigurationError{Field: "preserve_feminine_suffix", Reason: "requires enable_morphology"}
	}
	return nil
}

// ValidateLanguage accepts "auto" and the supported language tags.
func ValidateLanguage(lang string) error {
	switch lang {
	case LanguageAuto, LanguageRussian, LanguageUkrainian, LanguageEnglish:
		return nil
	}
	return &ConfigurationError{Field: "language", Reason: fmt.Sprintf("unsupported language %q", lang)}
}
