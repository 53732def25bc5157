// Package templates loads the localized message catalogs used by the
// delivery channels.
//
// A catalog is a directory holding one YAML file per language, each mapping
// a message key to a Go text/template:
//
//	relay/en.yaml
//	relay/hi.yaml
//	sms/en.yaml
//
// The English file is mandatory and is the fallback for every other
// language and for keys a translation lacks.
package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// FallbackLanguage is the catalog language every lookup falls back to.
const FallbackLanguage = "en"

// ErrUnknownKey is returned when no language in the catalog defines a key.
var ErrUnknownKey = errors.New("templates: unknown message key")

//go:embed data
var builtin embed.FS

// Catalog holds the parsed templates of one channel.
type Catalog struct {
	name  string
	langs map[string]map[string]*template.Template
}

// Load parses every <lang>.yaml under dir in root.
func Load(root fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(root, dir)
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", dir, err)
	}

	c := &Catalog{name: dir, langs: make(map[string]map[string]*template.Template)}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		lang := strings.TrimSuffix(e.Name(), ".yaml")
		raw, err := fs.ReadFile(root, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("catalog %q: %w", dir, err)
		}
		msgs, err := parse(dir, lang, raw)
		if err != nil {
			return nil, err
		}
		c.langs[lang] = msgs
	}
	if _, ok := c.langs[FallbackLanguage]; !ok {
		return nil, fmt.Errorf("catalog %q: missing %s.yaml", dir, FallbackLanguage)
	}
	return c, nil
}

func parse(dir, lang string, raw []byte) (map[string]*template.Template, error) {
	var texts map[string]string
	if err := yaml.Unmarshal(raw, &texts); err != nil {
		return nil, fmt.Errorf("catalog %q: %s: %w", dir, lang, err)
	}
	out := make(map[string]*template.Template, len(texts))
	for key, text := range texts {
		name := dir + "/" + lang + "/" + key
		// missingkey=error fails loudly on a misspelt field instead of
		// sending "<no value>" to a user.
		tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("catalog %q: %s: parse %s: %w", dir, lang, key, err)
		}
		out[key] = tmpl
	}
	return out, nil
}

// Builtin loads one of the embedded catalogs ("relay" or "sms").
func Builtin(name string) (*Catalog, error) {
	root, err := fs.Sub(builtin, "data")
	if err != nil {
		return nil, err
	}
	return Load(root, name)
}

// MustBuiltin is Builtin for package initialization and tests.
func MustBuiltin(name string) *Catalog {
	c, err := Builtin(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Languages returns the catalog's languages, sorted.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.langs))
	for l := range c.langs {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Keys returns the keys defined in the fallback language, sorted.
func (c *Catalog) Keys() []string {
	out := make([]string, 0, len(c.langs[FallbackLanguage]))
	for k := range c.langs[FallbackLanguage] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Render executes key in lang with data. Languages without the key use the
// fallback language.
func (c *Catalog) Render(key, lang string, data any) (string, error) {
	tmpl, ok := c.langs[lang][key]
	if !ok {
		tmpl, ok = c.langs[FallbackLanguage][key]
	}
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrUnknownKey, c.name, key)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("catalog %q: render %s: %w", c.name, key, err)
	}
	return buf.String(), nil
}

// Text renders key without data. It never fails: a broken translation
// falls back to English, and an unknown key yields "".
func (c *Catalog) Text(key, lang string) string {
	return c.TextWith(key, lang, nil)
}

// TextWith is Text with template data.
func (c *Catalog) TextWith(key, lang string, data any) string {
	if s, err := c.Render(key, lang, data); err == nil {
		return s
	}
	if lang != FallbackLanguage {
		if s, err := c.Render(key, FallbackLanguage, data); err == nil {
			return s
		}
	}
	return ""
}
