package faq

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Entry is one canned question/answer pair. The catalog is tenant-agnostic
// and immutable once loaded; keywords and variants may mix English, French
// and Arabic within the same entry.
type Entry struct {
	ID       int      `yaml:"id"`
	Category string   `yaml:"category"`
	Question string   `yaml:"question"`
	Answer   string   `yaml:"answer"`
	Keywords []string `yaml:"keywords"`
	Variants []string `yaml:"variants"`
}

// loadCatalog decodes and validates the embedded catalog. Declaration order
// is preserved: it is the tie-break order for best-match selection.
func loadCatalog() ([]Entry, error) {
	var entries []Entry
	if err := yaml.Unmarshal(catalogYAML, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode FAQ catalog: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("FAQ catalog is empty")
	}

	seen := make(map[int]bool, len(entries))
	for i, e := range entries {
		if e.ID == 0 {
			return nil, fmt.Errorf("FAQ catalog entry %d has no id", i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("FAQ catalog has duplicate id %d", e.ID)
		}
		seen[e.ID] = true
		if e.Question == "" || e.Answer == "" {
			return nil, fmt.Errorf("FAQ entry %d is missing question or answer", e.ID)
		}
		if len(e.Keywords) == 0 {
			return nil, fmt.Errorf("FAQ entry %d has no keywords", e.ID)
		}
	}
	return entries, nil
}
