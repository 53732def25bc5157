package language

import (
	"context"
	"fmt"
	"strings"

	"github.com/fishermate/fishermate/internal/fishermate/fallback"
)

// Translator converts text between two supported languages.
type Translator interface {
	Translate(ctx context.Context, text, src, dst string) (string, error)
}

// Completer is the single-turn chat call a model-backed translator needs.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// ModelTranslator translates through a chat model.
type ModelTranslator struct {
	model Completer
}

// NewModelTranslator returns a Translator backed by c.
func NewModelTranslator(c Completer) *ModelTranslator {
	return &ModelTranslator{model: c}
}

const translateSystem = "You translate short messages for fishermen. " +
	"Reply with the translation only. Keep numbers, units, phone numbers and emoji unchanged."

// Translate implements Translator.
func (t *ModelTranslator) Translate(ctx context.Context, text, src, dst string) (string, error) {
	prompt := fmt.Sprintf("Translate from %s to %s:\n\n%s", Name(src), Name(dst), text)
	out, err := t.model.Complete(ctx, translateSystem, prompt)
	if err != nil {
		return "", fmt.Errorf("translate %s->%s: %w", src, dst, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("translate %s->%s: %w", src, dst, fallback.ErrMalformed)
	}
	return out, nil
}

// Translate runs t under the fallback wrapper. It is the identity when the
// languages match or no translator is configured, and returns text
// unchanged when translation fails.
func Translate(ctx context.Context, w *fallback.Wrapper, t Translator, text, src, dst string) string {
	if t == nil || src == dst || strings.TrimSpace(text) == "" {
		return text
	}
	res := fallback.Try(ctx, w, "translate", func(ctx context.Context) (string, error) {
		return t.Translate(ctx, text, src, dst)
	})
	return res.Or(text)
}
