package language_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fishermate/fishermate/internal/fishermate/fallback"
	"github.com/fishermate/fishermate/internal/fishermate/language"
)

type stubTranslator struct {
	out   string
	err   error
	calls int
}

func (s *stubTranslator) Translate(context.Context, string, string, string) (string, error) {
	s.calls++
	return s.out, s.err
}

type stubCompleter struct {
	gotSystem, gotPrompt string
	reply                string
}

func (s *stubCompleter) Complete(_ context.Context, system, prompt string) (string, error) {
	s.gotSystem, s.gotPrompt = system, prompt
	return s.reply, nil
}

func TestTranslate_IdentityWhenSameLanguage(t *testing.T) {
	st := &stubTranslator{out: "changed"}
	w := fallback.New(time.Second, nil)
	if got := language.Translate(context.Background(), w, st, "storm", "en", "en"); got != "storm" {
		t.Errorf("got %q", got)
	}
	if st.calls != 0 {
		t.Errorf("translator called %d times for identical languages", st.calls)
	}
}

func TestTranslate_FailureReturnsOriginal(t *testing.T) {
	st := &stubTranslator{err: errors.New("quota")}
	w := fallback.New(time.Second, nil)
	if got := language.Translate(context.Background(), w, st, "storm", "en", "ta"); got != "storm" {
		t.Errorf("got %q, want original text", got)
	}
	if got := language.Translate(context.Background(), w, nil, "storm", "en", "ta"); got != "storm" {
		t.Errorf("nil translator: got %q", got)
	}
}

func TestModelTranslator(t *testing.T) {
	c := &stubCompleter{reply: "  புயல்\n"}
	tr := language.NewModelTranslator(c)
	got, err := tr.Translate(context.Background(), "storm", "en", "ta")
	if err != nil {
		t.Fatal(err)
	}
	if got != "புயல்" {
		t.Errorf("got %q", got)
	}
	if c.gotPrompt == "" || c.gotSystem == "" {
		t.Error("prompt not sent")
	}

	c.reply = " "
	if _, err := tr.Translate(context.Background(), "storm", "en", "ta"); !errors.Is(err, fallback.ErrMalformed) {
		t.Errorf("empty reply: got %v", err)
	}
}
