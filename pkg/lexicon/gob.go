package lexicon

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// loadGob maps a gob snapshot read-only and decodes it into d.Entries.
func (d *Dictionary) loadGob(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open gob file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat gob file: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("gob file %s is empty", path)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return fmt.Errorf("mmap gob file: %w", err)
	}
	defer m.Unmap()

	if err := gob.NewDecoder(bytes.NewReader(m)).Decode(&d.Entries); err != nil {
		return fmt.Errorf("decode gob: %w", err)
	}
	return nil
}

// SaveGob serializes entries to a gob-encoded file at path.
func SaveGob(entries map[string]*Entry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gob file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(entries); err != nil {
		return fmt.Errorf("encode gob: %w", err)
	}
	return nil
}
