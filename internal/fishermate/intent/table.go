// Package intent classifies free-text messages into a content category and
// dispatches them to the matching provider.
package intent

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Intent is the category a message is routed to.
type Intent string

const (
	Weather Intent = "weather"
	Legal   Intent = "legal"
	Safety  Intent = "safety"
	General Intent = "general"
)

// Priority is the order categories are tested in. General is the default
// and has no keywords.
var Priority = []Intent{Weather, Legal, Safety}

//go:embed keywords.yaml
var defaultKeywords []byte

//go:embed schema.json
var tableSchema string

// KeywordTable maps language tag to category to an ordered keyword list.
// It is immutable once loaded.
type KeywordTable struct {
	langs map[string]map[Intent][]string
}

type tableFile struct {
	Languages map[string]map[Intent][]string `yaml:"languages"`
}

var compiledSchema = jsonschema.MustCompileString("keywords.schema.json", tableSchema)

// LoadKeywordTable parses and validates a YAML keyword table. Keywords are
// lower-cased so matching stays case-insensitive.
func LoadKeywordTable(data []byte) (*KeywordTable, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse keyword table: %w", err)
	}
	doc, err := toJSONValue(raw)
	if err != nil {
		return nil, fmt.Errorf("parse keyword table: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate keyword table: %w", err)
	}

	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode keyword table: %w", err)
	}
	t := &KeywordTable{langs: make(map[string]map[Intent][]string, len(f.Languages))}
	for lang, cats := range f.Languages {
		m := make(map[Intent][]string, len(cats))
		for cat, kws := range cats {
			lowered := make([]string, len(kws))
			for i, kw := range kws {
				lowered[i] = strings.ToLower(kw)
			}
			m[cat] = lowered
		}
		t.langs[lang] = m
	}
	return t, nil
}

// toJSONValue converts decoded YAML into the plain JSON value types the
// schema validator expects.
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DefaultKeywordTable returns the built-in table.
func DefaultKeywordTable() *KeywordTable {
	t, err := LoadKeywordTable(defaultKeywords)
	if err != nil {
		panic(fmt.Sprintf("intent: built-in keyword table: %v", err))
	}
	return t
}

// Languages lists the tags the table has keywords for.
func (t *KeywordTable) Languages() []string {
	out := make([]string, 0, len(t.langs))
	for l := range t.langs {
		out = append(out, l)
	}
	return out
}

// Keywords returns the keywords for lang and category. Unknown languages
// have none.
func (t *KeywordTable) Keywords(lang string, cat Intent) []string {
	return t.langs[lang][cat]
}

// Classify returns the first category in Priority with a keyword contained
// in message, or General.
func (t *KeywordTable) Classify(message, lang string) Intent {
	cats, ok := t.langs[lang]
	if !ok {
		return General
	}
	lower := strings.ToLower(message)
	for _, cat := range Priority {
		for _, kw := range cats[cat] {
			if strings.Contains(lower, kw) {
				return cat
			}
		}
	}
	return General
}
