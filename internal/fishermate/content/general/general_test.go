package general_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fishermate/fishermate/internal/fishermate/content"
	"github.com/fishermate/fishermate/internal/fishermate/content/general"
	"github.com/fishermate/fishermate/internal/fishermate/fallback"
)

type stubModel struct {
	reply  string
	err    error
	system string
	prompt string
}

func (s *stubModel) Complete(_ context.Context, system, prompt string) (string, error) {
	s.system, s.prompt = system, prompt
	return s.reply, s.err
}

func TestRespond(t *testing.T) {
	m := &stubModel{reply: "  வணக்கம்! நான் உதவ முடியும்.\n"}
	p := general.NewProvider(m)

	r, err := p.Respond(context.Background(), content.Query{Message: "who are you?", Language: "ta"})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if r.Text != "வணக்கம்! நான் உதவ முடியும்." || r.Type != content.TypeGeneral || r.Language != "ta" {
		t.Errorf("unexpected response %+v", r)
	}
	if !strings.Contains(m.system, "You are FisherMate") || !strings.Contains(m.system, "Respond in Tamil") {
		t.Errorf("system prompt: %q", m.system)
	}
	if m.prompt != "who are you?" {
		t.Errorf("prompt: %q", m.prompt)
	}
}

func TestRespond_Failures(t *testing.T) {
	tests := []struct {
		name  string
		model *stubModel
		want  error
	}{
		{"model error", &stubModel{err: errors.New("quota")}, nil},
		{"blank reply", &stubModel{reply: " \n"}, fallback.ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := general.NewProvider(tt.model).Respond(context.Background(), content.Query{Message: "hi", Language: "en"})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	_, err := general.NewProvider(nil).Respond(context.Background(), content.Query{Message: "hi"})
	if !errors.Is(err, general.ErrNoModel) {
		t.Errorf("nil model: got %v", err)
	}
}
