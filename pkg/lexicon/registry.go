package lexicon

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
)

//go:embed data
var builtin embed.FS

// Registry holds the loaded dictionaries and the per-language sets built from them.
// Load and Reload build everything aside and swap it in under the lock; a
// published Set is never modified.
type Registry struct {
	mu      sync.RWMutex
	dicts   map[string]*Dictionary
	sets    map[string]*Set
	failed  map[string]error
	dir     string
	builtin fs.FS
}

// NewRegistry creates a registry with the built-in lexicons plus the
// dictionaries found in dir (may be empty). Dictionaries in dir replace
// built-ins with the same ID.
func NewRegistry(dir string) *Registry {
	sub, _ := fs.Sub(builtin, "data")
	return &Registry{
		dicts:   make(map[string]*Dictionary),
		sets:    make(map[string]*Set),
		failed:  make(map[string]error),
		dir:     dir,
		builtin: sub,
	}
}

// NewDirRegistry creates a registry that only loads the dictionaries in dir.
func NewDirRegistry(dir string) *Registry {
	r := NewRegistry(dir)
	r.builtin = nil
	return r
}

// Load reads every dictionary and rebuilds the language sets.
// A dictionary that fails to parse aborts the load and keeps the previous state.
// A language whose set cannot be built is recorded and reported by Set.
func (r *Registry) Load() error {
	newDicts := make(map[string]*Dictionary)

	if r.builtin != nil {
		entries, err := fs.ReadDir(r.builtin, ".")
		if err != nil {
			return fmt.Errorf("read built-in lexicons: %w", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			sub, err := fs.Sub(r.builtin, entry.Name())
			if err != nil {
				return fmt.Errorf("built-in lexicon %s: %w", entry.Name(), err)
			}
			d, err := LoadDictionaryFS(sub)
			if err != nil {
				return fmt.Errorf("load built-in lexicon %s: %w", path.Join("data", entry.Name()), err)
			}
			newDicts[d.Manifest.ID] = d
		}
	}

	if r.dir != "" {
		entries, err := os.ReadDir(r.dir)
		if err != nil {
			return fmt.Errorf("read lexicons dir %s: %w", r.dir, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(r.dir, entry.Name())
			if _, err := os.Stat(filepath.Join(dir, "manifest.yaml")); err != nil {
				continue
			}
			d, err := LoadDictionary(dir)
			if err != nil {
				return fmt.Errorf("load lexicon %s: %w", entry.Name(), err)
			}
			if _, exists := newDicts[d.Manifest.ID]; exists {
				slog.Info("lexicon overrides built-in", "id", d.Manifest.ID, "dir", dir)
			}
			newDicts[d.Manifest.ID] = d
		}
	}

	ordered := make([]*Dictionary, 0, len(newDicts))
	for _, id := range sortedIDs(newDicts) {
		ordered = append(ordered, newDicts[id])
	}

	langs := make(map[string]bool)
	for _, d := range ordered {
		langs[d.Manifest.Language] = true
	}

	newSets := make(map[string]*Set)
	newFailed := make(map[string]error)
	for lang := range langs {
		s, err := BuildSet(lang, ordered)
		if err != nil {
			slog.Warn("lexicon set not built", "lang", lang, "error", err)
			newFailed[lang] = err
			continue
		}
		newSets[lang] = s
	}

	r.mu.Lock()
	r.dicts = newDicts
	r.sets = newSets
	r.failed = newFailed
	r.mu.Unlock()
	return nil
}

// Reload reloads all dictionaries (hot reload).
func (r *Registry) Reload() error {
	return r.Load()
}

// Set returns the lexical set for lang or a *ResourceLoadError.
func (r *Registry) Set(lang string) (*Set, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sets[lang]; ok {
		return s, nil
	}
	if err, ok := r.failed[lang]; ok {
		return nil, &ResourceLoadError{Lang: lang, Err: err}
	}
	return nil, &ResourceLoadError{Lang: lang, Err: ErrNotLoaded}
}

// Languages lists the languages with a usable set, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	langs := make([]string, 0, len(r.sets))
	for l := range r.sets {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// Stats returns the table sizes of every usable set, sorted by language.
func (r *Registry) Stats() []Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Stats, 0, len(r.sets))
	for _, s := range r.sets {
		out = append(out, s.Stats())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Language < out[j].Language })
	return out
}

// DictInfo is the public metadata for a loaded dictionary.
type DictInfo struct {
	ID        string `json:"id"`
	Version   string `json:"version"`
	Language  string `json:"language"`
	Kind      string `json:"kind"`
	Source    string `json:"source"`
	SourceURL string `json:"source_url,omitempty"`
	License   string `json:"license"`
	Entries   int    `json:"entries"`
}

// ListDicts returns metadata for all loaded dictionaries, sorted by ID.
func (r *Registry) ListDicts() []DictInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]DictInfo, 0, len(r.dicts))
	for _, d := range r.dicts {
		infos = append(infos, DictInfo{
			ID:        d.Manifest.ID,
			Version:   d.Manifest.Version,
			Language:  d.Manifest.Language,
			Kind:      d.Manifest.Kind,
			Source:    d.Manifest.Source,
			SourceURL: d.Manifest.SourceURL,
			License:   d.Manifest.License,
			Entries:   d.Size(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// DictCount returns the number of loaded dictionaries.
func (r *Registry) DictCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.dicts)
}

// TotalEntries returns the total number of entries across all dictionaries.
func (r *Registry) TotalEntries() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, d := range r.dicts {
		total += d.Size()
	}
	return total
}

func sortedIDs(m map[string]*Dictionary) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
