// Package content defines the value types shared by every content provider
// (weather, legal, safety, general chat) and by the layers that route to and
// format them.
package content

import "context"

// Type tags a Response with the kind of content it carries.
type Type string

const (
	TypeWeather Type = "weather"
	TypeLegal   Type = "legal"
	TypeSafety  Type = "safety"
	TypeGeneral Type = "general"
	TypeError   Type = "error"
)

// Location is an optional coordinate pair supplied by the caller.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Query is the input to a content provider.
type Query struct {
	Message  string
	Language string
	Location *Location // nil when the user shared none
	Compact  bool      // short rendering for SMS
}

// Response is the transient result of answering a Query.
type Response struct {
	Text     string `json:"text"`
	Type     Type   `json:"type"`
	Language string `json:"language"`
	Data     any    `json:"data,omitempty"`
}

// Provider answers a query for one content category. Implementations may
// return errors; callers reach them only through the fallback wrapper.
type Provider interface {
	Respond(ctx context.Context, q Query) (Response, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, q Query) (Response, error)

// Respond calls f.
func (f ProviderFunc) Respond(ctx context.Context, q Query) (Response, error) {
	return f(ctx, q)
}
