package voice_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fishermate/fishermate/internal/fishermate/voice"
)

type stubSpeech struct {
	failLang string
	langs    []string
	heard    string
}

func (s *stubSpeech) Synthesize(_ context.Context, text, lang string) (io.ReadCloser, error) {
	s.langs = append(s.langs, lang)
	if lang == s.failLang {
		return nil, errors.New("unsupported voice")
	}
	return io.NopCloser(strings.NewReader("ID3" + text)), nil
}

func (s *stubSpeech) Transcribe(_ context.Context, audio io.Reader, _, _ string) (string, error) {
	data, _ := io.ReadAll(audio)
	s.heard = string(data)
	return "  weather today \n", nil
}

func newService(t *testing.T, sp voice.Speech) *voice.Service {
	t.Helper()
	svc, err := voice.NewService(sp, filepath.Join(t.TempDir(), "audio"), nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestTextToSpeech(t *testing.T) {
	sp := &stubSpeech{}
	svc := newService(t, sp)

	url, err := svc.TextToSpeech(context.Background(), "கடல் அமைதியாக உள்ளது", "ta")
	if err != nil {
		t.Fatalf("TextToSpeech: %v", err)
	}
	if !strings.HasPrefix(url, voice.URLPrefix+"tts_") || !strings.HasSuffix(url, "_ta.mp3") {
		t.Errorf("url: got %q", url)
	}
	data, err := os.ReadFile(filepath.Join(svc.Dir(), strings.TrimPrefix(url, voice.URLPrefix)))
	if err != nil {
		t.Fatalf("read audio: %v", err)
	}
	if string(data) != "ID3கடல் அமைதியாக உள்ளது" {
		t.Errorf("audio content: got %q", data)
	}
}

func TestTextToSpeech_EnglishRetry(t *testing.T) {
	sp := &stubSpeech{failLang: "ml"}
	svc := newService(t, sp)

	url, err := svc.TextToSpeech(context.Background(), "calm sea", "ml")
	if err != nil {
		t.Fatalf("TextToSpeech: %v", err)
	}
	if !strings.HasPrefix(url, voice.URLPrefix+"fallback_") {
		t.Errorf("url: got %q", url)
	}
	if strings.Join(sp.langs, ",") != "ml,en" {
		t.Errorf("attempts: got %v", sp.langs)
	}

	sp = &stubSpeech{failLang: "en"}
	if _, err := newService(t, sp).TextToSpeech(context.Background(), "calm sea", "en"); err == nil {
		t.Error("English failure should not be retried")
	}
	if len(sp.langs) != 1 {
		t.Errorf("attempts: got %v", sp.langs)
	}
}

func TestNotConfigured(t *testing.T) {
	svc := newService(t, nil)
	if _, err := svc.TextToSpeech(context.Background(), "hi", "en"); !errors.Is(err, voice.ErrNotConfigured) {
		t.Errorf("tts: got %v", err)
	}
	if _, err := svc.SpeechToText(context.Background(), strings.NewReader("x"), "a.ogg", "en"); !errors.Is(err, voice.ErrNotConfigured) {
		t.Errorf("stt: got %v", err)
	}
}

func TestSpeechToText(t *testing.T) {
	sp := &stubSpeech{}
	text, err := newService(t, sp).SpeechToText(context.Background(), strings.NewReader("OggS..."), "note.ogg", "hi")
	if err != nil {
		t.Fatalf("SpeechToText: %v", err)
	}
	if text != "weather today" || sp.heard != "OggS..." {
		t.Errorf("got %q, backend heard %q", text, sp.heard)
	}
}

func TestEvictStale(t *testing.T) {
	svc := newService(t, &stubSpeech{})
	old := time.Now().Add(-48 * time.Hour)
	for _, name := range []string{"tts_old_en.mp3", "fallback_old.mp3", "notes.txt"} {
		path := filepath.Join(svc.Dir(), name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.TextToSpeech(context.Background(), "fresh", "en"); err != nil {
		t.Fatal(err)
	}

	n, err := svc.EvictStale(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("EvictStale: %v", err)
	}
	if n != 2 {
		t.Errorf("removed: got %d, want 2", n)
	}
	entries, _ := os.ReadDir(svc.Dir())
	if len(entries) != 2 {
		t.Errorf("remaining files: got %d, want 2 (fresh audio and notes.txt)", len(entries))
	}
}

func TestOpenAISpeech(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/audio/speech"):
			w.Header().Set("Content-Type", "audio/mpeg")
			_, _ = io.WriteString(w, "ID3-mp3-bytes")
		case strings.HasSuffix(r.URL.Path, "/audio/transcriptions"):
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"text":"`+r.FormValue("language")+`: storm warning"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	sp := voice.NewOpenAISpeech(voice.OpenAIConfig{APIKey: "k", BaseURL: srv.URL})

	audio, err := sp.Synthesize(context.Background(), "storm", "en")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	data, _ := io.ReadAll(audio)
	audio.Close()
	if string(data) != "ID3-mp3-bytes" {
		t.Errorf("audio: got %q", data)
	}

	text, err := sp.Transcribe(context.Background(), strings.NewReader("OggS"), "note.ogg", "ta")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "ta: storm warning" {
		t.Errorf("text: got %q", text)
	}
}
