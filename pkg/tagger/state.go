// Package tagger assigns a final role to every token of a person span with a
// single-pass state machine over an ordered rule list.
package tagger

// State is the position of the machine inside a name candidate.
type State int

const (
	Start State = iota
	AfterGiven
	AfterSurname
	AfterPatronymic
	AfterInitial
	End
)

var stateNames = [...]string{"start", "after_given", "after_surname", "after_patronymic", "after_initial", "end"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "invalid"
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
