package category

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Categories []Category `yaml:"categories"`
}

// LoadFile reads a YAML category table:
//
//	categories:
//	  - name: Sport
//	    emoji: "🏸"
//	    priority: 1
//	    keywords: [badminton, gym]
//
// An empty path returns the built-in table.
func LoadFile(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML category table.
func Parse(data []byte) (*Table, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories defined", ErrInvalidTable)
	}
	return NewTable(f.Categories)
}
