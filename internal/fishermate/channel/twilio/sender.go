package twilio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	twiliogo "github.com/twilio/twilio-go"
	"github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/fishermate/fishermate/common/redact"
	"github.com/fishermate/fishermate/common/retry"
	"github.com/fishermate/fishermate/internal/fishermate/channel/sms"
)

// ErrNotConfigured is returned by a Sender without credentials.
var ErrNotConfigured = errors.New("twilio: client not configured")

// ErrInvalidNumber is returned for a phone number that fails validation.
var ErrInvalidNumber = errors.New("twilio: invalid phone number")

// MessageAPI is the part of the Twilio REST client a Sender uses.
type MessageAPI interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// NewMessageAPI returns the Twilio REST message API for an account, or
// nil when credentials are missing.
func NewMessageAPI(accountSID, authToken string) MessageAPI {
	if accountSID == "" || authToken == "" {
		return nil
	}
	c := twiliogo.NewRestClientWithParams(twiliogo.ClientParams{Username: accountSID, Password: authToken})
	return c.Api
}

// Sender delivers outbound messages from one number.
type Sender struct {
	api    MessageAPI
	from   string
	budget int
	policy retry.Policy
	logger *slog.Logger
}

// NewSender returns a Sender from the given number. budget > 0 splits
// long bodies into numbered parts, as SMS needs.
func NewSender(api MessageAPI, from string, budget int, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{api: api, from: from, budget: budget, logger: logger}
}

// WithRetry makes each part retry transient failures under p. Twilio
// rejections in the 4xx range are not retried.
func (s *Sender) WithRetry(p retry.Policy) *Sender {
	s.policy = p
	return s
}

// WhatsApp addresses a WhatsApp number the way Twilio expects.
func WhatsApp(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}

// Send delivers text to to. All parts are attempted; the first failure is
// returned.
func (s *Sender) Send(ctx context.Context, to, text string) error {
	if s == nil || s.api == nil {
		return ErrNotConfigured
	}
	parts := []string{text}
	if s.budget > 0 {
		parts = sms.Split(text, s.budget)
	}
	var firstErr error
	for i, part := range parts {
		if err := ctx.Err(); err != nil {
			return err
		}
		params := &openapi.CreateMessageParams{}
		params.SetTo(to)
		params.SetFrom(s.from)
		params.SetBody(part)
		var msg *openapi.ApiV2010Message
		err := s.policy.Do(ctx, func(context.Context) error {
			var err error
			msg, err = s.api.CreateMessage(params)
			var rest *client.TwilioRestError
			if errors.As(err, &rest) && rest.Status >= 400 && rest.Status < 500 {
				return retry.Permanent(err)
			}
			return err
		})
		if err != nil {
			s.logger.Warn("twilio send failed", "to", redact.User(to), "part", i+1, "err", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("twilio: send part %d/%d: %w", i+1, len(parts), err)
			}
			continue
		}
		sid := ""
		if msg != nil && msg.Sid != nil {
			sid = *msg.Sid
		}
		s.logger.Info("twilio message sent", "to", redact.User(to), "part", i+1, "parts", len(parts), "sid", sid)
	}
	return firstErr
}

// ValidPhone reports whether phone holds at least ten digits once "+",
// "-" and spaces are removed, and nothing else.
func ValidPhone(phone string) bool {
	digits := 0
	for _, r := range phone {
		switch {
		case r == '+' || r == '-' || r == ' ':
		case unicode.IsDigit(r) && r < 128:
			digits++
		default:
			return false
		}
	}
	return digits >= 10
}
