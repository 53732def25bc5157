// Package language resolves, names and formats the languages FisherMate
// answers in.
package language

import (
	"strings"

	"golang.org/x/text/language"
)

// Auto asks the resolver to detect the language from the message text.
const Auto = "auto"

// Default is the fallback language for anything unsupported.
const Default = "en"

// supported lists every tag the chat pipeline accepts, in display order.
var supported = []string{
	"en", "hi", "ta", "te", "ml", "kn", "bn", "gu", "mr", "or", "pa", "as", "ur",
	"ne", "si", "my", "th", "vi", "id", "ms", "tl", "ko", "ja", "zh", "es",
}

var supportedSet = func() map[string]bool {
	m := make(map[string]bool, len(supported))
	for _, t := range supported {
		m[t] = true
	}
	return m
}()

// nearMiss maps detector codes that are not themselves supported onto the
// closest supported tag. Keys are ISO 639-1 or, where the detector has no
// two-letter code, ISO 639-3.
var nearMiss = map[string]string{
	"mai": "hi", // Maithili
	"bho": "hi", // Bhojpuri
	"mag": "hi", // Magahi
	"awa": "hi", // Awadhi
	"hne": "hi", // Chhattisgarhi
	"npi": "ne",
	"ory": "or",
	"pnb": "pa",
	"skr": "ur",
	"zlm": "ms",
	"cmn": "zh",
	"fil": "tl",
	"sat": "bn",
}

// Supported returns the supported tags in display order.
func Supported() []string {
	out := make([]string, len(supported))
	copy(out, supported)
	return out
}

// IsSupported reports whether tag is one of the supported tags.
func IsSupported(tag string) bool { return supportedSet[tag] }

// Detector guesses the language of a piece of text.
type Detector interface {
	Detect(text string) (string, error)
}

// Resolver turns a requested tag plus the message text into a supported
// tag. It never fails: anything it cannot resolve becomes the default.
type Resolver struct {
	def      string
	detector Detector
}

// NewResolver returns a Resolver. An unsupported def is replaced by
// Default; a nil detector makes "auto" resolve to def.
func NewResolver(def string, d Detector) *Resolver {
	if !IsSupported(def) {
		def = Default
	}
	return &Resolver{def: def, detector: d}
}

// DefaultLanguage returns the resolver's fallback tag.
func (r *Resolver) DefaultLanguage() string { return r.def }

// Resolve returns a supported tag for the request.
func (r *Resolver) Resolve(requested, text string) string {
	requested = strings.TrimSpace(requested)
	if IsSupported(requested) {
		return requested
	}
	if requested == "" {
		return r.def
	}
	if strings.EqualFold(requested, Auto) {
		return r.detect(text)
	}
	return r.normalize(requested)
}

// normalize reduces a well-formed but non-canonical tag ("en-US", "HI")
// to its base language.
func (r *Resolver) normalize(requested string) string {
	tag, err := language.Parse(requested)
	if err != nil {
		return r.def
	}
	base, _ := tag.Base()
	if b := base.String(); IsSupported(b) {
		return b
	}
	return r.def
}

func (r *Resolver) detect(text string) (lang string) {
	if r.detector == nil || strings.TrimSpace(text) == "" {
		return r.def
	}
	defer func() {
		if recover() != nil {
			lang = r.def
		}
	}()
	code, err := r.detector.Detect(text)
	if err != nil {
		return r.def
	}
	if IsSupported(code) {
		return code
	}
	if mapped, ok := nearMiss[code]; ok {
		return mapped
	}
	return r.def
}
