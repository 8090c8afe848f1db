package lexicon

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Gender is the grammatical gender of a name or declension paradigm.
type Gender int

const (
	GenderUnknown Gender = iota
	Masculine
	Feminine
)

var genderNames = [...]string{"unknown", "masculine", "feminine"}

func (g Gender) String() string {
	if g < 0 || int(g) >= len(genderNames) {
		return "unknown"
	}
	return genderNames[g]
}

// Short returns the one-letter code used in lexicon files and case labels.
func (g Gender) Short() string {
	switch g {
	case Masculine:
		return "m"
	case Feminine:
		return "f"
	}
	return "?"
}

// ParseGender accepts "m", "f", "masculine", "feminine" in any case. Anything else is unknown.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "masculine", "male":
		return Masculine
	case "f", "feminine", "female":
		return Feminine
	}
	return GenderUnknown
}

func (g Gender) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

func (g *Gender) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*g = ParseGender(s)
	return nil
}

func (g *Gender) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed := ParseGender(s)
	if parsed == GenderUnknown {
		return fmt.Errorf("line %d: invalid gender %q", value.Line, s)
	}
	*g = parsed
	return nil
}
