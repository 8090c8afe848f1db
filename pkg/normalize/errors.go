package normalize

import "fmt"

// ConfigurationError reports an invalid or conflicting Config option.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}
