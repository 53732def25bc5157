package language

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Info describes one supported language for API clients.
type Info struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Native string `json:"native"`
}

// englishNames keeps the names users of the service already know; x/text
// calls "or" Odia and "my" Burmese.
var englishNames = map[string]string{
	"or": "Oriya",
	"my": "Myanmar",
	"tl": "Filipino",
}

// Name returns the English name of tag, or "Unknown".
func Name(tag string) string {
	if !IsSupported(tag) {
		return "Unknown"
	}
	if n, ok := englishNames[tag]; ok {
		return n
	}
	t, err := language.Parse(tag)
	if err != nil {
		return "Unknown"
	}
	return display.English.Languages().Name(t)
}

// NativeName returns the name of tag in its own language.
func NativeName(tag string) string {
	t, err := language.Parse(tag)
	if err != nil || !IsSupported(tag) {
		return Name(tag)
	}
	if n := display.Self.Name(t); n != "" {
		return n
	}
	return Name(tag)
}

// All returns Info for every supported language.
func All() []Info {
	out := make([]Info, 0, len(supported))
	for _, tag := range supported {
		out = append(out, Info{Code: tag, Name: Name(tag), Native: NativeName(tag)})
	}
	return out
}
