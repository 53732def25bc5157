// Package twilio connects the channel state machines to Twilio: inbound
// WhatsApp and SMS webhooks answered with TwiML, and outbound sends.
package twilio

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/twilio/twilio-go/client"
	"github.com/twilio/twilio-go/twiml"

	"github.com/fishermate/fishermate/common/redact"
	"github.com/fishermate/fishermate/internal/fishermate/channel"
	"github.com/fishermate/fishermate/internal/fishermate/content"
	"github.com/fishermate/fishermate/internal/fishermate/fallback"
)

// maxBodyBytes caps webhook form bodies.
const maxBodyBytes = 64 * 1024

const signatureHeader = "X-Twilio-Signature"

// WebhookConfig configures a Webhook.
type WebhookConfig struct {
	// AuthToken enables X-Twilio-Signature validation when non-empty.
	AuthToken string
	// PublicURL is the externally visible scheme and host the signature
	// was computed over, e.g. https://bot.example.org.
	PublicURL string
	// Limiter caps inbound messages per sender; nil disables it.
	Limiter *channel.Limiter
	Logger  *slog.Logger
}

// Webhook answers Twilio message webhooks with the reply of an adapter.
type Webhook struct {
	adapter   channel.Adapter
	validator *client.RequestValidator
	publicURL string
	limiter   *channel.Limiter
	logger    *slog.Logger
	now       func() time.Time
}

// NewWebhook returns a Webhook feeding adapter.
func NewWebhook(adapter channel.Adapter, cfg WebhookConfig) *Webhook {
	w := &Webhook{
		adapter:   adapter,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		limiter:   cfg.Limiter,
		logger:    cfg.Logger,
		now:       time.Now,
	}
	if cfg.AuthToken != "" {
		v := client.NewRequestValidator(cfg.AuthToken)
		w.validator = &v
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	w.logger = w.logger.With("channel", string(adapter.Channel()))
	return w
}

// ServeHTTP implements http.Handler.
func (wh *Webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		wh.logger.Info("webhook: bad form", "err", err)
		writeTwiML(w, http.StatusBadRequest, nil)
		return
	}

	if wh.validator != nil && !wh.validSignature(r) {
		wh.logger.Warn("webhook: signature mismatch", "path", r.URL.Path)
		writeTwiML(w, http.StatusForbidden, nil)
		return
	}

	from := r.PostForm.Get("From")
	if from == "" {
		writeTwiML(w, http.StatusBadRequest, nil)
		return
	}
	if !wh.limiter.Allow(from) {
		wh.logger.Info("webhook: rate limit exceeded", "user", redact.User(from))
		writeTwiML(w, http.StatusOK, nil)
		return
	}

	reply := wh.handle(r, inbound(r, wh.now()))
	writeTwiML(w, http.StatusOK, reply.Messages)
}

// handle runs the adapter, turning a panic into the generic apology in
// the sender's language.
func (wh *Webhook) handle(r *http.Request, in channel.Inbound) (reply channel.Reply) {
	defer func() {
		if p := recover(); p != nil {
			wh.logger.Error("webhook: adapter panicked", "panic", fmt.Sprint(p))
			lang := wh.language(r, in.UserID)
			reply = channel.Reply{Messages: []string{fallback.Message(fallback.KindInternal, lang)}, Language: lang}
		}
	}()
	return wh.adapter.Handle(r.Context(), in)
}

// language asks the adapter for the user's language; "" selects the
// apology's default.
func (wh *Webhook) language(r *http.Request, userID string) (lang string) {
	src, ok := wh.adapter.(channel.LanguageSource)
	if !ok {
		return ""
	}
	defer func() {
		if p := recover(); p != nil {
			lang = ""
		}
	}()
	return src.Language(r.Context(), userID)
}

func (wh *Webhook) validSignature(r *http.Request) bool {
	params := make(map[string]string, len(r.PostForm))
	for k, v := range r.PostForm {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	base := wh.publicURL
	if base == "" {
		scheme := "https"
		if r.TLS == nil {
			scheme = "http"
		}
		base = scheme + "://" + r.Host
	}
	return wh.validator.Validate(base+r.URL.RequestURI(), params, r.Header.Get(signatureHeader))
}

// inbound builds the channel envelope from a Twilio message form.
func inbound(r *http.Request, now time.Time) channel.Inbound {
	f := r.PostForm
	in := channel.Inbound{
		UserID:     f.Get("From"),
		To:         f.Get("To"),
		Text:       strings.TrimSpace(f.Get("Body")),
		ReceivedAt: now,
	}
	if n, _ := strconv.Atoi(f.Get("NumMedia")); n > 0 {
		in.MediaURL = f.Get("MediaUrl0")
	}
	lat, errLat := strconv.ParseFloat(f.Get("Latitude"), 64)
	lon, errLon := strconv.ParseFloat(f.Get("Longitude"), 64)
	if errLat == nil && errLon == nil {
		in.Location = &content.Location{Lat: lat, Lon: lon}
	}
	return in
}

// RenderTwiML returns a messaging response with one Message per body.
func RenderTwiML(messages []string) (string, error) {
	verbs := make([]twiml.Element, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m) == "" {
			continue
		}
		verbs = append(verbs, &twiml.MessagingMessage{Body: m})
	}
	return twiml.Messages(verbs)
}

const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

func writeTwiML(w http.ResponseWriter, status int, messages []string) {
	body, err := RenderTwiML(messages)
	if err != nil {
		slog.Error("twiml render failed", "err", err)
		body = emptyTwiML
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
