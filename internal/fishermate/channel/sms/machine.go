// Package sms is the state machine for the SMS channel.
//
// SMS has no menu hierarchy. Each inbound body is matched, in order,
// against language tokens, single-token commands, "<letter> <parameter>"
// commands and finally a multilingual keyword scan. Replies longer than one
// SMS are split into indexed chunks.
package sms

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/fishermate/fishermate/common/redact"
	"github.com/fishermate/fishermate/common/trace"
	"github.com/fishermate/fishermate/internal/fishermate/channel"
	"github.com/fishermate/fishermate/internal/fishermate/content"
	"github.com/fishermate/fishermate/internal/fishermate/intent"
	"github.com/fishermate/fishermate/internal/fishermate/language"
	"github.com/fishermate/fishermate/internal/fishermate/session"
	"github.com/fishermate/fishermate/internal/fishermate/templates"
)

// languageTokens switch the session language.
var languageTokens = map[string]string{
	"EN": "en", "ENGLISH": "en",
	"HI": "hi", "HINDI": "hi", "हिंदी": "hi",
	"TA": "ta", "TAMIL": "ta", "தமிழ்": "ta",
}

// commands maps single-token commands to catalog keys.
var commands = map[string]string{
	"W": "weather_help",
	"L": "legal_help",
	"S": "safety_help",
	"E": "emergency",
	"H": "help",
	"M": "menu",
	"?": "commands",
}

type bucket struct {
	key      string
	keywords []string
}

// buckets are scanned in order for free text; the first hit wins.
var buckets = []bucket{
	{"weather_help", []string{"weather", "mausam", "vanilai", "मौसम", "வானிலை"}},
	{"legal_help", []string{"law", "legal", "ban", "kanoon", "sattam", "कानून", "சட்டம்"}},
	{"safety_help", []string{"safety", "suraksha", "padhukaapu", "सुरक्षा", "பாதுகாப்பு"}},
	{"emergency", []string{"emergency", "help", "madad", "udavi", "मदद", "உதவி"}},
	{"welcome", []string{"hello", "hi", "start", "namaste", "नमस्ते", "வணக்கம்"}},
}

// Locator resolves a place name to coordinates.
type Locator func(place string) (content.Location, bool)

// Machine handles inbound SMS.
type Machine struct {
	store    session.Store
	router   *intent.Router
	resolver *language.Resolver
	catalog  *templates.Catalog
	locate   Locator
	recorder channel.Recorder
	budget   int
	logger   *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithCatalog replaces the built-in SMS catalog.
func WithCatalog(c *templates.Catalog) Option { return func(m *Machine) { m.catalog = c } }

// WithLocator sets the place-name lookup used by "W <place>".
func WithLocator(l Locator) Option { return func(m *Machine) { m.locate = l } }

// WithRecorder sets the exchange log.
func WithRecorder(r channel.Recorder) Option { return func(m *Machine) { m.recorder = r } }

// WithBudget overrides the per-message character limit.
func WithBudget(n int) Option { return func(m *Machine) { m.budget = n } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(m *Machine) { m.logger = l } }

// New returns an SMS Machine over store, answering provider queries
// through router.
func New(store session.Store, router *intent.Router, resolver *language.Resolver, opts ...Option) *Machine {
	m := &Machine{
		store:    store,
		router:   router,
		resolver: resolver,
		catalog:  templates.MustBuiltin("sms"),
		budget:   DefaultBudget,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.resolver == nil {
		m.resolver = language.NewResolver(language.Default, nil)
	}
	return m
}

// Channel implements channel.Adapter.
func (m *Machine) Channel() session.Channel { return session.ChannelSMS }

// Language returns the user's session language, or the default when the
// session cannot be read.
func (m *Machine) Language(ctx context.Context, userID string) string {
	s, err := m.store.GetOrCreate(ctx, userID)
	if err != nil || s.Language == "" {
		return m.resolver.DefaultLanguage()
	}
	return s.Language
}

// outcome is the result of interpreting one message against a session
// snapshot.
type outcome struct {
	text     string
	language string // new session language, "" to keep
	intent   string
	degraded bool
}

// Handle implements channel.Adapter.
func (m *Machine) Handle(ctx context.Context, in channel.Inbound) channel.Reply {
	log := m.logger.With("channel", "sms", "user", redact.User(in.UserID))

	sess, err := m.store.Touch(ctx, in.UserID)
	if err != nil {
		log.Error("session lookup failed", "err", err)
		lang := m.resolver.DefaultLanguage()
		return channel.Reply{Messages: Split(m.catalog.Text("error", lang), m.budget), Language: lang, Intent: "error", Degraded: true}
	}

	out := m.interpret(ctx, sess, in.Text)

	lang := sess.Language
	if out.language != "" && out.language != sess.Language {
		if _, err := m.store.Update(ctx, in.UserID, func(s *session.Session) { s.Language = out.language }); err != nil {
			log.Error("session update failed", "err", err)
		} else {
			lang = out.language
		}
	}

	reply := channel.Reply{
		Messages: Split(out.text, m.budget),
		Language: lang,
		Intent:   out.intent,
		Degraded: out.degraded,
	}
	log.Info("sms handled", "intent", out.intent, "language", lang, "parts", len(reply.Messages))
	m.record(ctx, in, reply)
	return reply
}

func (m *Machine) interpret(ctx context.Context, sess *session.Session, text string) outcome {
	body := strings.TrimSpace(text)
	upper := strings.ToUpper(body)
	lang := sess.Language

	if l, ok := languageTokens[upper]; ok {
		return outcome{text: m.catalog.Text("welcome", l), language: l, intent: "language"}
	}
	if key, ok := commands[upper]; ok {
		return outcome{text: m.catalog.Text(key, lang), intent: "command"}
	}
	if r := []rune(upper); len(r) > 2 && r[1] == ' ' {
		param := strings.TrimSpace(string([]rune(body)[2:]))
		switch r[0] {
		case 'W':
			return m.provider(ctx, intent.Weather, param, lang)
		case 'L':
			return m.provider(ctx, intent.Legal, param, lang)
		case 'S':
			return m.safety(ctx, param, lang)
		}
	}

	words := wordSet(body)
	for _, b := range buckets {
		for _, kw := range b.keywords {
			if words[kw] {
				return outcome{text: m.catalog.Text(b.key, lang), intent: "keyword"}
			}
		}
	}
	return outcome{text: m.catalog.Text("help", lang), intent: "help"}
}

// wordSet splits s on anything that is not a letter, mark or digit.
func wordSet(s string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsMark(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

func (m *Machine) safety(ctx context.Context, topic, lang string) outcome {
	t := strings.ToLower(topic)
	switch {
	case strings.Contains(t, "checklist"):
		return outcome{text: m.catalog.Text("checklist", lang), intent: "command"}
	case strings.Contains(t, "emergency"):
		return outcome{text: m.catalog.Text("emergency", lang), intent: "command"}
	}
	return m.provider(ctx, intent.Safety, topic, lang)
}

func (m *Machine) provider(ctx context.Context, i intent.Intent, param, lang string) outcome {
	q := content.Query{
		Message:  string(i) + " " + param,
		Language: m.resolver.Resolve(lang, param),
		Compact:  true,
	}
	if i == intent.Weather && m.locate != nil {
		if loc, ok := m.locate(param); ok {
			q.Location = &loc
		}
	}
	resp := m.router.Dispatch(ctx, i, q)
	return outcome{text: resp.Text, intent: string(i), degraded: resp.Type == content.TypeError}
}

func (m *Machine) record(ctx context.Context, in channel.Inbound, r channel.Reply) {
	if m.recorder == nil {
		return
	}
	at := in.ReceivedAt
	if at.IsZero() {
		at = time.Now()
	}
	err := m.recorder.Record(ctx, channel.Exchange{
		TraceID:  trace.FromContext(ctx),
		Channel:  session.ChannelSMS,
		User:     redact.User(in.UserID),
		Intent:   r.Intent,
		Language: r.Language,
		Messages: len(r.Messages),
		Degraded: r.Degraded,
		At:       at,
	})
	if err != nil {
		m.logger.Warn("exchange log write failed", "err", err)
	}
}

// Stats summarizes SMS sessions; users are active within 24 hours.
func (m *Machine) Stats(ctx context.Context) (session.Stats, error) {
	snap, err := m.store.Snapshot(ctx)
	if err != nil {
		return session.Stats{}, err
	}
	return session.Summarize(snap, time.Now(), 24*time.Hour), nil
}
