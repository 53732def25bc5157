// Package voice turns replies into speech files and voice notes into text.
package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// URLPrefix is the path generated audio is served under.
const URLPrefix = "/audio/"

// ErrNotConfigured is returned when no speech backend is set up.
var ErrNotConfigured = errors.New("voice: speech backend not configured")

// Speech is a text-to-speech and speech-to-text backend.
type Speech interface {
	Synthesize(ctx context.Context, text, lang string) (io.ReadCloser, error)
	Transcribe(ctx context.Context, audio io.Reader, filename, lang string) (string, error)
}

// Service stores synthesized audio under a directory and serves as the
// voice entry point for the HTTP layer.
type Service struct {
	speech Speech
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewService returns a Service writing to dir, creating it if needed. A
// nil speech backend yields a Service whose calls fail with
// ErrNotConfigured.
func NewService(speech Speech, dir string, logger *slog.Logger) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("voice: create audio dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{speech: speech, dir: dir, logger: logger, now: time.Now}, nil
}

// Dir is the directory audio files are written to.
func (s *Service) Dir() string { return s.dir }

// TextToSpeech synthesizes text and returns the URL path of the file. If
// synthesis in lang fails, it is retried once in English.
func (s *Service) TextToSpeech(ctx context.Context, text, lang string) (string, error) {
	if s.speech == nil {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("voice: empty text")
	}
	name := fmt.Sprintf("tts_%s_%s.mp3", hexID(), lang)
	err := s.synthesize(ctx, text, lang, name)
	if err != nil && lang != "en" {
		s.logger.Warn("speech synthesis failed, retrying in English", "language", lang, "err", err)
		name = fmt.Sprintf("fallback_%s.mp3", hexID())
		err = s.synthesize(ctx, text, "en", name)
	}
	if err != nil {
		return "", err
	}
	return URLPrefix + name, nil
}

func (s *Service) synthesize(ctx context.Context, text, lang, name string) error {
	audio, err := s.speech.Synthesize(ctx, text, lang)
	if err != nil {
		return fmt.Errorf("voice: synthesize: %w", err)
	}
	defer audio.Close()

	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("voice: create %s: %w", name, err)
	}
	if _, err := io.Copy(f, audio); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("voice: write %s: %w", name, err)
	}
	return f.Close()
}

// SpeechToText transcribes audio spoken in lang.
func (s *Service) SpeechToText(ctx context.Context, audio io.Reader, filename, lang string) (string, error) {
	if s.speech == nil {
		return "", ErrNotConfigured
	}
	text, err := s.speech.Transcribe(ctx, audio, filename, lang)
	if err != nil {
		return "", fmt.Errorf("voice: transcribe: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// EvictStale removes audio files older than maxAge and reports how many
// were deleted.
func (s *Service) EvictStale(_ context.Context, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("voice: read audio dir: %w", err)
	}
	cutoff := s.now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".mp3" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
				s.logger.Warn("cannot remove audio file", "file", e.Name(), "err", err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}

func hexID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
