package lexicon

import (
	"errors"
	"fmt"
)

// ErrNotLoaded means no lexicon was ever loaded for the language.
var ErrNotLoaded = errors.New("no lexicon loaded")

// ResourceLoadError reports that the lexical set of a language is unavailable.
// It is never answered by falling back to another language's tables.
type ResourceLoadError struct {
	Lang string
	Err  error
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("lexicon %q unavailable: %v", e.Lang, e.Err)
}

func (e *ResourceLoadError) Unwrap() error { return e.Err }
