// Package legal answers questions about state fishing regulations:
// seasonal bans, licensing, safety equipment, contacts and penalties.
package legal

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/fishermate/fishermate/internal/fishermate/content"
)

// DefaultState answers when neither the message nor the location names
// one.
const DefaultState = "Tamil Nadu"

// QueryType is the aspect of the regulations a question is about.
type QueryType string

const (
	QuerySeasonalBan QueryType = "seasonal_ban"
	QueryLicensing   QueryType = "licensing"
	QuerySafety      QueryType = "safety_requirements"
	QueryContact     QueryType = "contact_info"
	QueryPenalties   QueryType = "penalties"
	QueryGeneral     QueryType = "general"
)

var queryKeywords = []struct {
	typ      QueryType
	keywords []string
}{
	{QuerySeasonalBan, []string{"ban", "season", "closed", "restriction"}},
	{QueryLicensing, []string{"license", "licence", "permit", "registration"}},
	{QuerySafety, []string{"safety", "equipment", "requirement"}},
	{QueryContact, []string{"contact", "helpline", "department"}},
	{QueryPenalties, []string{"penalty", "fine", "punishment"}},
}

// Classify returns the query type of message; the first matching group
// wins.
func Classify(message string) QueryType {
	m := strings.ToLower(message)
	for _, q := range queryKeywords {
		for _, kw := range q.keywords {
			if strings.Contains(m, kw) {
				return q.typ
			}
		}
	}
	return QueryGeneral
}

// Provider is the legal content provider. It answers in English.
type Provider struct {
	states []State
	byName map[string]int
	now    func() time.Time
}

// Option configures a Provider.
type Option func(*Provider)

// WithStates replaces the built-in regulations.
func WithStates(states []State) Option { return func(p *Provider) { p.states = states } }

// WithClock sets the time source for ban status.
func WithClock(now func() time.Time) Option { return func(p *Provider) { p.now = now } }

// NewProvider returns a Provider over the built-in regulations.
func NewProvider(opts ...Option) (*Provider, error) {
	p := &Provider{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.states == nil {
		states, err := LoadStates(builtinStates)
		if err != nil {
			return nil, err
		}
		p.states = states
	}
	p.byName = make(map[string]int, len(p.states))
	for i, s := range p.states {
		p.byName[strings.ToLower(s.Name)] = i
	}
	return p, nil
}

// States returns the state names in file order.
func (p *Provider) States() []string {
	out := make([]string, len(p.states))
	for i, s := range p.states {
		out[i] = s.Name
	}
	return out
}

// State looks a state up by name, ignoring case.
func (p *Provider) State(name string) (State, error) {
	i, ok := p.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return State{}, fmt.Errorf("%w: %q", ErrUnknownState, name)
	}
	return p.states[i], nil
}

// Detect picks the state a question is about: a state keyword in message
// first, then the bounds containing loc, then DefaultState.
func (p *Provider) Detect(message string, loc *content.Location) string {
	padded := " " + strings.Join(strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ") + " "
	for _, s := range p.states {
		for _, kw := range s.Keywords {
			if strings.Contains(padded, " "+kw+" ") {
				return s.Name
			}
		}
	}
	if loc != nil {
		return p.FromCoordinates(loc.Lat, loc.Lon)
	}
	return DefaultState
}

// FromCoordinates maps a point to the first state whose bounds contain
// it, or DefaultState.
func (p *Provider) FromCoordinates(lat, lon float64) string {
	for _, s := range p.states {
		if s.Bounds.Contains(lat, lon) {
			return s.Name
		}
	}
	return DefaultState
}

// Info is the payload of the legal API endpoint.
type Info struct {
	State     string `json:"state"`
	Legal     State  `json:"legal_info"`
	BanStatus string `json:"ban_status,omitempty"`
	Language  string `json:"language"`
	Updated   string `json:"last_updated"`
}

// Info returns the regulations for a named state.
func (p *Provider) Info(state, lang string) (Info, error) {
	s, err := p.State(state)
	if err != nil {
		return Info{}, err
	}
	now := p.now()
	return Info{
		State:     s.Name,
		Legal:     s,
		BanStatus: CheckBan(s.Ban.Period, now).String(),
		Language:  lang,
		Updated:   now.Format(time.RFC3339),
	}, nil
}

// Respond implements content.Provider.
func (p *Provider) Respond(_ context.Context, q content.Query) (content.Response, error) {
	name := p.Detect(q.Message, q.Location)
	s, err := p.State(name)
	if err != nil {
		return content.Response{}, err
	}
	typ := Classify(q.Message)

	var text string
	switch {
	case q.Compact:
		text = p.FormatCompact(s)
	default:
		text = p.Format(s, typ)
	}
	return content.Response{Text: text, Type: content.TypeLegal, Language: "en", Data: s}, nil
}
