package lexicon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lexicon kinds. A language set is assembled from one or more dictionaries of each kind.
const (
	KindGivenName  = "given_name"
	KindSurname    = "surname"
	KindDiminutive = "diminutive"
	KindStopword   = "stopword"
	KindDeclension = "declension"
)

// MethodRules marks a dictionary whose data file is a YAML paradigm table instead of a CSV.
const MethodRules = "rules"

// Manifest describes a lexicon dictionary: its language, kind, source and data layout.
type Manifest struct {
	ID           string           `yaml:"id" json:"id"`
	Version      string           `yaml:"version" json:"version"`
	Language     string           `yaml:"language" json:"language"`
	Kind         string           `yaml:"kind" json:"kind"`
	Source       string           `yaml:"source" json:"source"`
	SourceURL    string           `yaml:"source_url,omitempty" json:"source_url,omitempty"`
	License      string           `yaml:"license" json:"license"`
	DataFile     string           `yaml:"data_file" json:"data_file"`
	Method       string           `yaml:"method,omitempty" json:"method,omitempty"`
	Format       FormatSpec       `yaml:"format" json:"-"`
	MetadataCols []MetadataColumn `yaml:"metadata_columns,omitempty" json:"-"`
}

// FormatSpec describes the CSV layout.
type FormatSpec struct {
	Delimiter string `yaml:"delimiter"`
	Encoding  string `yaml:"encoding"`
	HasHeader bool   `yaml:"has_header"`
	KeyColumn string `yaml:"key_column"`
	Normalize string `yaml:"normalize"`
}

// MetadataColumn maps a logical name to a CSV column.
type MetadataColumn struct {
	Name   string `yaml:"name"`
	Column string `yaml:"column"`
}

// LoadManifest reads and parses a manifest.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return parseManifest(data, path)
}

func parseManifest(data []byte, name string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", name, err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("manifest %s: missing id", name)
	}
	if m.Language == "" {
		return nil, fmt.Errorf("manifest %s: missing language", name)
	}
	switch m.Kind {
	case KindGivenName, KindSurname, KindDiminutive, KindStopword, KindDeclension:
	default:
		return nil, fmt.Errorf("manifest %s: unknown kind %q", name, m.Kind)
	}
	if m.DataFile == "" {
		if m.Kind == KindDeclension {
			m.DataFile = "rules.yaml"
		} else {
			m.DataFile = "data.csv"
		}
	}
	if m.Kind == KindDeclension {
		m.Method = MethodRules
	}
	return &m, nil
}
