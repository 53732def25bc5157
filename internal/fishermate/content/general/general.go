// Package general answers open questions with a chat model, in the
// user's own language.
package general

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fishermate/fishermate/internal/fishermate/content"
	"github.com/fishermate/fishermate/internal/fishermate/fallback"
	"github.com/fishermate/fishermate/internal/fishermate/language"
)

// ErrNoModel is returned when no chat model is configured.
var ErrNoModel = errors.New("general: no chat model configured")

const systemPrompt = `You are FisherMate, a helpful assistant for fisherfolk communities in India.
Respond in %s and help with:
- Fishing-related queries
- General information about fishing practices
- Community support
Provide a helpful, culturally sensitive response in %s. Keep it short enough to read on a phone.`

// Provider is the general chat content provider.
type Provider struct {
	model language.Completer
}

// NewProvider returns a Provider backed by model. A nil model makes every
// call fail, so the router serves the canned reply.
func NewProvider(model language.Completer) *Provider {
	return &Provider{model: model}
}

// Respond implements content.Provider. The reply is already in q.Language.
func (p *Provider) Respond(ctx context.Context, q content.Query) (content.Response, error) {
	if p.model == nil {
		return content.Response{}, ErrNoModel
	}
	name := language.Name(q.Language)
	out, err := p.model.Complete(ctx, fmt.Sprintf(systemPrompt, name, name), q.Message)
	if err != nil {
		return content.Response{}, fmt.Errorf("general: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return content.Response{}, fmt.Errorf("general: %w: empty completion", fallback.ErrMalformed)
	}
	return content.Response{Text: out, Type: content.TypeGeneral, Language: q.Language}, nil
}
