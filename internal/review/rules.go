package review

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MappingPack is a user-supplied set of keyword mappings loaded from
// --mapping or the mappingFile config key.
type MappingPack struct {
	// Replace discards the built-in table instead of extending it.
	Replace  bool           `json:"replace,omitempty" yaml:"replace,omitempty"`
	Mappings []MappingEntry `json:"mappings" yaml:"mappings"`
}

// LoadMappingPack loads a mapping pack from disk. YAML is used for .yaml and
// .yml files and JSON otherwise. Returns nil and nil error if path is empty.
func LoadMappingPack(path string) (*MappingPack, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping file: %w", err)
	}

	var pack MappingPack
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &pack)
	default:
		err = json.Unmarshal(data, &pack)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing mapping file: %w", err)
	}

	for i, m := range pack.Mappings {
		if strings.TrimSpace(m.Keyword) == "" {
			return nil, fmt.Errorf("mapping %d: empty keyword", i)
		}
		if len(m.Rules) == 0 {
			return nil, fmt.Errorf("mapping %q: no rules", m.Keyword)
		}
	}
	return &pack, nil
}

// Apply returns the Index produced by layering the pack over base.
func (p *MappingPack) Apply(base *Index) *Index {
	if p == nil {
		return base
	}
	if p.Replace {
		return NewIndex(p.Mappings)
	}
	return base.Extend(p.Mappings)
}

// LoadIndex returns the built-in Index, extended or replaced by the pack at
// path when one is given.
func LoadIndex(path string) (*Index, error) {
	pack, err := LoadMappingPack(path)
	if err != nil {
		return nil, err
	}
	return pack.Apply(DefaultIndex()), nil
}
