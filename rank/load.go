package rank

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileFormat is the on-disk layout of a rank table:
//
//	ranks:
//	  - {min: 0, level: 0, label: Base, reward: "—"}
//	  - {min: 2, level: 1, label: Starter, reward: "Bonus 10€"}
type fileFormat struct {
	Ranks []Rank `yaml:"ranks"`
}

// LoadFile reads a YAML rank table from path and validates it.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML rank table.
func Parse(data []byte) (*Table, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rank table: %w", err)
	}
	t, err := NewTable(f.Ranks)
	if err != nil {
		return nil, fmt.Errorf("invalid rank table: %w", err)
	}
	return t, nil
}
