// Package catalog serves the static list of regulations the screening service covers.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed regulations.yaml
var regulationsYAML []byte

// Regulation is one catalog entry.
type Regulation struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Jurisdiction string `yaml:"jurisdiction" json:"jurisdiction"`
	Category     string `yaml:"category" json:"category"`
}

// Category groups regulations under a stable key.
type Category struct {
	Key         string       `yaml:"key"`
	Regulations []Regulation `yaml:"regulations"`
}

type document struct {
	Categories []Category `yaml:"categories"`
}

// Catalog is an ordered list of categories.
type Catalog struct {
	categories []Category
}

// Listing is the API view of the catalog.
type Listing struct {
	TotalRegulations int        `json:"total_regulations"`
	Categories       []string   `json:"categories"`
	Regulations      CategoryMap `json:"regulations"`
}

// CategoryMap marshals as a JSON object whose keys keep catalog order.
type CategoryMap []Category

func (m CategoryMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Key)
		if err != nil {
			return nil, err
		}
		regs := c.Regulations
		if regs == nil {
			regs = []Regulation{}
		}
		value, err := json.Marshal(regs)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var defaultCatalog = mustParse(regulationsYAML)

// Default returns the embedded catalog.
func Default() *Catalog {
	return defaultCatalog
}

// Parse reads a catalog document. Category keys must be unique and non-empty.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse regulation catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(doc.Categories))
	for _, c := range doc.Categories {
		if c.Key == "" {
			return nil, fmt.Errorf("parse regulation catalog: category without key")
		}
		if _, dup := seen[c.Key]; dup {
			return nil, fmt.Errorf("parse regulation catalog: duplicate category %q", c.Key)
		}
		seen[c.Key] = struct{}{}
	}
	return &Catalog{categories: doc.Categories}, nil
}

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Listing builds the API view. The total is always recomputed from the entries.
func (c *Catalog) Listing() *Listing {
	keys := make([]string, 0, len(c.categories))
	total := 0
	for _, cat := range c.categories {
		keys = append(keys, cat.Key)
		total += len(cat.Regulations)
	}
	regs := make(CategoryMap, len(c.categories))
	copy(regs, c.categories)
	return &Listing{
		TotalRegulations: total,
		Categories:       keys,
		Regulations:      regs,
	}
}
