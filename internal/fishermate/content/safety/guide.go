package safety

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/safety.yaml
var builtinGuide []byte

// ErrUnknownCategory is returned for a category with no guidance on file.
var ErrUnknownCategory = errors.New("safety: unknown category")

// Priority marks how urgent a checklist section is.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// Section is one titled list inside a category.
type Section struct {
	Title    string   `yaml:"title" json:"title"`
	Priority Priority `yaml:"priority,omitempty" json:"priority,omitempty"`
	Numbered bool     `yaml:"numbered,omitempty" json:"numbered,omitempty"`
	Items    []string `yaml:"items" json:"items"`
}

// Category is one topic of safety guidance.
type Category struct {
	Key      string    `yaml:"key" json:"key"`
	Title    string    `yaml:"title" json:"title"`
	Icon     string    `yaml:"icon" json:"icon"`
	Keywords []string  `yaml:"keywords" json:"-"`
	Sections []Section `yaml:"sections" json:"sections"`
	Footer   string    `yaml:"footer,omitempty" json:"footer,omitempty"`
}

// Procedure is the step list for one kind of emergency at sea.
type Procedure struct {
	Title string   `yaml:"title" json:"title"`
	Icon  string   `yaml:"icon" json:"icon"`
	Steps []string `yaml:"steps" json:"steps"`
}

// Guide is the full safety data set.
type Guide struct {
	Default     string               `yaml:"default_category"`
	Categories  []Category           `yaml:"categories"`
	Emergencies map[string]Procedure `yaml:"emergencies"`
}

// LoadGuide parses and validates a safety guide document.
func LoadGuide(data []byte) (*Guide, error) {
	var g Guide
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("safety: parse guide: %w", err)
	}
	if len(g.Categories) == 0 {
		return nil, errors.New("safety: guide has no categories")
	}
	seen := make(map[string]bool, len(g.Categories))
	for i, c := range g.Categories {
		if c.Key == "" {
			return nil, fmt.Errorf("safety: category %d has no key", i)
		}
		if seen[c.Key] {
			return nil, fmt.Errorf("safety: duplicate category %q", c.Key)
		}
		seen[c.Key] = true
	}
	if !seen[g.Default] {
		return nil, fmt.Errorf("safety: default category %q is not defined", g.Default)
	}
	return &g, nil
}

func (g *Guide) category(key string) (Category, bool) {
	for _, c := range g.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}
