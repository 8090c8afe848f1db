package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Adapter imports one lexicon from a remote source and writes it as an
// overlay dictionary (data.gob + manifest.yaml) that replaces the built-in
// lexicon with the same DictID on the next registry load.
type Adapter interface {
	// ID returns the unique identifier of this adapter (e.g. "mirror-given-names-uk").
	ID() string
	// DictID returns the target lexicon ID (e.g. "given-names-uk").
	DictID() string
	// Language returns the lexicon language code.
	Language() string
	// Kind returns the lexicon kind (given_name, surname, diminutive, stopword).
	Kind() string
	Description() string
	// DefaultURL returns the source URL used when seeding the source database.
	DefaultURL() string
	License() string
	// Import downloads sourceURL, builds the lexicon into outputDir/DictID()
	// and returns the number of entries written.
	Import(ctx context.Context, sourceURL, outputDir string) (int, error)
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	adapters[a.ID()] = a
}

// Get returns a registered adapter by ID.
func Get(id string) (Adapter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[id]
	if !ok {
		return nil, fmt.Errorf("unknown import source: %q", id)
	}
	return a, nil
}

// All returns all registered adapters sorted by ID.
func All() []Adapter {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Adapter, 0, len(adapters))
	for _, a := range adapters {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}

// ForLanguage returns the registered adapters for lang sorted by ID.
func ForLanguage(lang string) []Adapter {
	var out []Adapter
	for _, a := range All() {
		if a.Language() == lang {
			out = append(out, a)
		}
	}
	return out
}
