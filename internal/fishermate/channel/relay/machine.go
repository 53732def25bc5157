// Package relay is the state machine for the chat-relay channels
// (WhatsApp through Twilio, and Matrix).
//
// A relay session sits in one of four menu positions. Inbound text is
// interpreted in a fixed order: media, language change, navigation,
// quick replies bound to the current menu, slash commands, and finally free
// text routed through the intent router. Only quick replies move between
// submenus; free text never changes the menu position.
package relay

import (
	"context"
	"errors"
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

// StatsWindow is how recently a user must have written to count as active.
const StatsWindow = time.Hour

// languageWords switch the session language, in precedence order.
var languageWords = []struct{ word, lang string }{
	{"hindi", "hi"}, {"हिंदी", "hi"}, {"हिन्दी", "hi"},
	{"tamil", "ta"}, {"தமிழ்", "ta"},
	{"english", "en"},
}

// promptWords ask which languages are available.
var promptWords = []string{"language", "भाषा", "மொழி"}

// navWords return to the main menu.
var navWords = []string{"menu", "मेनू", "மெனு", "back", "वापस", "பின்னே", "home", "घर", "வீடு"}

// filler may accompany a control word without turning the message into a
// question.
var filler = []string{
	"change", "switch", "set", "to", "in", "please", "go", "main", "the",
	"बदलें", "में", "मुख्य", "மாற்று", "முதன்மை",
}

// Machine handles inbound relay messages.
type Machine struct {
	store    session.Store
	router   *intent.Router
	resolver *language.Resolver
	catalog  *templates.Catalog
	commands *Commands
	recorder channel.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Machine.
type Option func(*Machine)

// WithCatalog replaces the built-in relay catalog.
func WithCatalog(c *templates.Catalog) Option { return func(m *Machine) { m.catalog = c } }

// WithRecorder sets the exchange log.
func WithRecorder(r channel.Recorder) Option { return func(m *Machine) { m.recorder = r } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(m *Machine) { m.logger = l } }

// WithClock sets the time source for history entries.
func WithClock(now func() time.Time) Option { return func(m *Machine) { m.now = now } }

// New returns a relay Machine over store.
func New(store session.Store, router *intent.Router, resolver *language.Resolver, opts ...Option) *Machine {
	m := &Machine{
		store:    store,
		router:   router,
		resolver: resolver,
		catalog:  templates.MustBuiltin("relay"),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.resolver == nil {
		m.resolver = language.NewResolver(language.Default, nil)
	}
	m.commands = m.defaultCommands()
	return m
}

func (m *Machine) defaultCommands() *Commands {
	c := NewCommands("/")
	fixed := func(key string) Handler {
		return func(_ context.Context, _ *Command, lang string) (string, error) {
			return m.catalog.Render(key, lang, nil)
		}
	}
	c.Register("start", fixed("welcome"))
	c.Register("help", fixed("help"))
	c.Register("weather", fixed("weather_info"))
	c.Register("legal", fixed("legal_info"))
	c.Register("safety", fixed("safety_info"))
	c.Register("emergency", fixed("emergency"))
	return c
}

// Channel implements channel.Adapter.
func (m *Machine) Channel() session.Channel { return session.ChannelRelay }

// Language returns the user's session language, or the default when the
// session cannot be read.
func (m *Machine) Language(ctx context.Context, userID string) string {
	s, err := m.store.GetOrCreate(ctx, userID)
	if err != nil || s.Language == "" {
		return m.resolver.DefaultLanguage()
	}
	return s.Language
}

type outcome struct {
	text     string
	language string      // new session language, "" to keep
	nav      session.Nav // new menu position, "" to keep
	intent   string
	degraded bool
}

// Handle implements channel.Adapter.
func (m *Machine) Handle(ctx context.Context, in channel.Inbound) channel.Reply {
	log := m.logger.With("channel", "relay", "user", redact.User(in.UserID))

	sess, err := m.store.Touch(ctx, in.UserID)
	if err != nil {
		log.Error("session lookup failed", "err", err)
		lang := m.resolver.DefaultLanguage()
		return channel.Reply{Messages: []string{m.catalog.Text("error", lang)}, Language: lang, Intent: "error", Degraded: true}
	}

	out := m.interpret(ctx, sess, in)

	userText := in.Text
	switch {
	case userText != "":
	case in.MediaURL != "":
		userText = "[media]"
	case in.Location != nil:
		userText = "[location]"
	}
	at := m.now()
	updated, err := m.store.Update(ctx, in.UserID, func(s *session.Session) {
		if out.language != "" {
			s.Language = out.language
		}
		if out.nav != "" {
			s.Nav = out.nav
		}
		s.Append(session.FromUser, userText, at)
		s.Append(session.FromSystem, out.text, at)
	})
	lang := sess.Language
	if err != nil {
		log.Error("session update failed", "err", err)
	} else {
		lang = updated.Language
	}

	reply := channel.Reply{
		Messages: []string{out.text},
		Language: lang,
		Intent:   out.intent,
		Degraded: out.degraded,
	}
	log.Info("relay handled", "intent", out.intent, "language", lang, "nav", string(sess.Nav))
	m.record(ctx, in, reply)
	return reply
}

func (m *Machine) interpret(ctx context.Context, sess *session.Session, in channel.Inbound) outcome {
	lang := sess.Language

	if in.MediaURL != "" {
		return outcome{text: m.catalog.Text("media", lang), intent: "media"}
	}
	// A bare location share asks for the weather there.
	if strings.TrimSpace(in.Text) == "" && in.Location != nil {
		resp := m.router.Dispatch(ctx, intent.Weather, content.Query{Message: "weather", Language: lang, Location: in.Location})
		return outcome{text: resp.Text, intent: string(intent.Weather), degraded: resp.Type == content.TypeError}
	}

	words := wordSet(in.Text)
	if control(words, languageNames(), promptWords) {
		if l, ok := pick(words); ok {
			return outcome{text: m.catalog.Text("language_changed", l), language: l, intent: "language"}
		}
		return outcome{text: m.catalog.Text("language_prompt", lang), intent: "language"}
	}
	if control(words, navWords) {
		return outcome{text: m.catalog.Text("main_menu", lang), nav: session.NavMain, intent: "menu"}
	}

	nav := sess.Nav
	if nav == "" {
		nav = session.NavMain
	}
	if c, ok := match(nav, in.Text); ok {
		return m.choose(ctx, c, lang, in.Location)
	}

	cmd, text, err := m.commands.Route(ctx, in.Text, lang)
	switch {
	case err == nil:
		return outcome{text: text, intent: "command"}
	case errors.Is(err, ErrUnknownCommand):
		name := "/"
		if cmd != nil {
			name = "/" + cmd.Name
		}
		return outcome{text: m.catalog.TextWith("unknown_command", lang, map[string]string{"Command": name}), intent: "command"}
	case !errors.Is(err, ErrNotACommand):
		m.logger.Warn("command failed", "err", err)
		return outcome{text: m.catalog.Text("error", lang), intent: "command", degraded: true}
	}

	q := content.Query{
		Message:  in.Text,
		Language: m.resolver.Resolve(lang, in.Text),
		Location: in.Location,
	}
	i, resp := m.router.Route(ctx, q)
	return outcome{text: resp.Text, intent: string(i), degraded: resp.Type == content.TypeError}
}

// choose performs a quick-reply action.
func (m *Machine) choose(ctx context.Context, c Choice, lang string, loc *content.Location) outcome {
	switch {
	case c.Goto != "":
		return outcome{text: m.catalog.Text(menuTemplate(c.Goto), lang), nav: c.Goto, intent: "menu"}
	case c.Template != "":
		return outcome{text: m.catalog.Text(c.Template, lang), intent: "menu"}
	}
	resp := m.router.Dispatch(ctx, c.Intent, content.Query{Message: c.Query, Language: lang, Location: loc})
	return outcome{text: resp.Text, intent: string(c.Intent), degraded: resp.Type == content.TypeError}
}

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

// control reports whether words is a control message: at least one word
// from the key lists and nothing but keys and filler.
func control(words map[string]bool, keys ...[]string) bool {
	if len(words) == 0 {
		return false
	}
	allowed := make(map[string]bool)
	for _, f := range filler {
		allowed[f] = true
	}
	hit := false
	for _, list := range keys {
		for _, k := range list {
			allowed[k] = true
			hit = hit || words[k]
		}
	}
	if !hit {
		return false
	}
	for w := range words {
		if !allowed[w] {
			return false
		}
	}
	return true
}

func languageNames() []string {
	out := make([]string, len(languageWords))
	for i, lw := range languageWords {
		out[i] = lw.word
	}
	return out
}

// pick returns the first language named in words.
func pick(words map[string]bool) (string, bool) {
	for _, lw := range languageWords {
		if words[lw.word] {
			return lw.lang, true
		}
	}
	return "", false
}

func (m *Machine) record(ctx context.Context, in channel.Inbound, r channel.Reply) {
	if m.recorder == nil {
		return
	}
	at := in.ReceivedAt
	if at.IsZero() {
		at = m.now()
	}
	err := m.recorder.Record(ctx, channel.Exchange{
		TraceID:  trace.FromContext(ctx),
		Channel:  session.ChannelRelay,
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

// Stats summarizes relay sessions, including menu usage.
func (m *Machine) Stats(ctx context.Context) (session.Stats, error) {
	snap, err := m.store.Snapshot(ctx)
	if err != nil {
		return session.Stats{}, err
	}
	return session.Summarize(snap, m.now(), StatsWindow), nil
}
