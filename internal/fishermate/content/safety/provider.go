// Package safety answers fishing safety questions: checklists, at-sea
// procedures, equipment, emergency contacts, first aid and survival.
package safety

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fishermate/fishermate/internal/fishermate/content"
)

// Emergency kinds with a step-by-step procedure.
const (
	EmergencyFire          = "fire"
	EmergencyManOverboard  = "man_overboard"
	EmergencyMedical       = "medical"
	EmergencyEngineFailure = "engine_failure"
	EmergencyCollision     = "collision"
)

// GeneralEmergency is the procedure text for an unrecognised emergency kind.
const GeneralEmergency = "🚨 **GENERAL EMERGENCY**: Call Coast Guard 1554 immediately and follow their instructions!"

// Chat questions naming one of these go straight to the procedure. Medical
// questions are left to the first aid category.
var procedureKeywords = []struct {
	kind     string
	keywords []string
}{
	{EmergencyManOverboard, []string{"overboard"}},
	{EmergencyFire, []string{"fire"}},
	{EmergencyEngineFailure, []string{"engine fail", "engine broke", "engine stop"}},
	{EmergencyCollision, []string{"collision", "collided", "sinking"}},
}

// Provider is the safety content provider. It answers in English.
type Provider struct {
	guide *Guide
	now   func() time.Time
}

// Option configures a Provider.
type Option func(*Provider)

// WithGuide replaces the built-in guide.
func WithGuide(g *Guide) Option { return func(p *Provider) { p.guide = g } }

// WithClock sets the time source for API timestamps.
func WithClock(now func() time.Time) Option { return func(p *Provider) { p.now = now } }

// NewProvider returns a Provider over the built-in guide.
func NewProvider(opts ...Option) (*Provider, error) {
	p := &Provider{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.guide == nil {
		g, err := LoadGuide(builtinGuide)
		if err != nil {
			return nil, err
		}
		p.guide = g
	}
	return p, nil
}

// Categories returns the category keys in classification order.
func (p *Provider) Categories() []string {
	out := make([]string, len(p.guide.Categories))
	for i, c := range p.guide.Categories {
		out[i] = c.Key
	}
	return out
}

// Category returns the guidance for key.
func (p *Provider) Category(key string) (Category, error) {
	c, ok := p.guide.category(key)
	if !ok {
		return Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
	}
	return c, nil
}

// Classify returns the category a question is about: the first category
// with a keyword in message, else the guide's default.
func (p *Provider) Classify(message string) string {
	m := strings.ToLower(message)
	for _, c := range p.guide.Categories {
		for _, kw := range c.Keywords {
			if strings.Contains(m, kw) {
				return c.Key
			}
		}
	}
	return p.guide.Default
}

// Info is the payload of the safety API endpoint.
type Info struct {
	Category  string   `json:"category"`
	Info      Category `json:"info"`
	Language  string   `json:"language"`
	Timestamp string   `json:"timestamp"`
}

// Info returns the guidance for a category.
func (p *Provider) Info(category, lang string) (Info, error) {
	c, err := p.Category(category)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Category:  c.Key,
		Info:      c,
		Language:  lang,
		Timestamp: p.now().Format(time.RFC3339),
	}, nil
}

// Emergency returns the procedure for kind, or GeneralEmergency.
func (p *Provider) Emergency(kind string) string {
	proc, ok := p.guide.Emergencies[kind]
	if !ok {
		return GeneralEmergency
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s **%s**\n", proc.Icon, proc.Title)
	for i, s := range proc.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return strings.TrimRight(b.String(), "\n")
}

func detectProcedure(message string) string {
	m := strings.ToLower(message)
	for _, pk := range procedureKeywords {
		for _, kw := range pk.keywords {
			if strings.Contains(m, kw) {
				return pk.kind
			}
		}
	}
	return ""
}

// Respond implements content.Provider.
func (p *Provider) Respond(_ context.Context, q content.Query) (content.Response, error) {
	if kind := detectProcedure(q.Message); kind != "" {
		text := p.Emergency(kind)
		if q.Compact {
			text = compactProcedure(p.guide.Emergencies[kind])
		}
		return content.Response{Text: text, Type: content.TypeSafety, Language: "en", Data: p.guide.Emergencies[kind]}, nil
	}

	c, err := p.Category(p.Classify(q.Message))
	if err != nil {
		return content.Response{}, err
	}
	text := Format(c)
	if q.Compact {
		text = FormatCompact(c)
	}
	return content.Response{Text: text, Type: content.TypeSafety, Language: "en", Data: c}, nil
}
