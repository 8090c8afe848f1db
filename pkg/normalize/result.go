package normalize

import (
	"github.com/hazyhaar/namecanon/pkg/role"
)

// Result is the outcome of one Normalize call. It is built once and not
// modified afterwards; slices are never nil so a JSON round trip through the
// cache yields an identical value.
type Result struct {
	Normalized         string       `json:"normalized"`
	Tokens             []string     `json:"tokens"`
	Language           string       `json:"language"`
	LanguageConfidence float64      `json:"language_confidence"`
	Trace              []TraceEntry `json:"trace"`
}

// TraceEntry explains the role and output of one input token.
type TraceEntry struct {
	Index     int             `json:"index"`
	Token     string          `json:"token"`
	Role      role.Role       `json:"role"`
	Rule      string          `json:"rule"`
	Evidence  []role.Evidence `json:"evidence"`
	Output    string          `json:"output"`
	Candidate int             `json:"candidate"`
	Removed   bool            `json:"removed,omitempty"`
}
