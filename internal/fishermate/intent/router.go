package intent

import (
	"context"
	"log/slog"

	"github.com/fishermate/fishermate/internal/fishermate/content"
	"github.com/fishermate/fishermate/internal/fishermate/fallback"
	"github.com/fishermate/fishermate/internal/fishermate/language"
)

// Router classifies a query and answers it through the provider registered
// for the resulting intent. Every provider call goes through the fallback
// wrapper, so Route always returns a well-formed Response.
type Router struct {
	table      *KeywordTable
	providers  map[Intent]content.Provider
	wrapper    *fallback.Wrapper
	translator language.Translator
	logger     *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithProvider registers p for intent i.
func WithProvider(i Intent, p content.Provider) Option {
	return func(r *Router) { r.providers[i] = p }
}

// WithTranslator sets the translator used when a provider answers in a
// language other than the one asked for.
func WithTranslator(t language.Translator) Option {
	return func(r *Router) { r.translator = t }
}

// WithFallback sets the failure boundary applied to provider calls.
func WithFallback(w *fallback.Wrapper) Option {
	return func(r *Router) { r.wrapper = w }
}

// WithLogger sets the router's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// NewRouter returns a Router over table. A nil table means the built-in one.
func NewRouter(table *KeywordTable, opts ...Option) *Router {
	if table == nil {
		table = DefaultKeywordTable()
	}
	r := &Router{
		table:     table,
		providers: make(map[Intent]content.Provider),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classify exposes the router's keyword table.
func (r *Router) Classify(message, lang string) Intent {
	return r.table.Classify(message, lang)
}

// failureKind maps an intent to the canned message used when its provider
// fails.
func failureKind(i Intent) fallback.Kind {
	switch i {
	case Weather:
		return fallback.KindWeather
	case Legal:
		return fallback.KindLegal
	case Safety:
		return fallback.KindSafety
	default:
		return fallback.KindGeneral
	}
}

// Route classifies q and dispatches it. q.Language must already be
// resolved.
func (r *Router) Route(ctx context.Context, q content.Query) (Intent, content.Response) {
	i := r.table.Classify(q.Message, q.Language)
	return i, r.Dispatch(ctx, i, q)
}

// Dispatch answers q with the provider for i.
func (r *Router) Dispatch(ctx context.Context, i Intent, q content.Query) content.Response {
	onFailure := fallback.For(failureKind(i))
	p, ok := r.providers[i]
	if !ok {
		r.logger.Warn("no provider registered", "intent", string(i))
		return fallback.Failure(q.Language, onFailure)
	}

	resp := fallback.Respond(ctx, r.wrapper, string(i), p, q, onFailure)
	if resp.Type != content.TypeError && resp.Language != q.Language {
		resp.Text = language.Translate(ctx, r.wrapper, r.translator, resp.Text, resp.Language, q.Language)
		resp.Language = q.Language
	}
	r.logger.Debug("routed message", "intent", string(i), "language", q.Language, "type", string(resp.Type))
	return resp
}
