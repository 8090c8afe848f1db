// Package role assigns grammatical roles to name tokens and records the
// evidence behind each decision.
package role

import (
	"encoding/json"
	"fmt"
)

// Role is the grammatical role of a token inside a name.
type Role int

const (
	Unknown Role = iota
	GivenName
	Surname
	Patronymic
	Initial
	Organization
	Stopword
)

var roleNames = [...]string{
	Unknown:      "unknown",
	GivenName:    "given_name",
	Surname:      "surname",
	Patronymic:   "patronymic",
	Initial:      "initial",
	Organization: "organization",
	Stopword:     "stopword",
}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return "unknown"
	}
	return roleNames[r]
}

// IsPerson reports whether the role belongs to a personal name.
func (r Role) IsPerson() bool {
	switch r {
	case GivenName, Surname, Patronymic, Initial:
		return true
	}
	return false
}

// Parse maps a snake_case role name to its Role.
func Parse(s string) (Role, error) {
	for i, name := range roleNames {
		if name == s {
			return Role(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
