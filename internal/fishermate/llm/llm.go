// Package llm adapts hosted chat models to the single-turn Complete call
// used for translation and general chat.
package llm

import (
	"errors"
	"fmt"
	"time"

	"github.com/fishermate/fishermate/internal/fishermate/language"
)

// Backend names accepted by New.
const (
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxTokens = 1024
)

var (
	// ErrNoAPIKey is returned by New when no key is configured.
	ErrNoAPIKey = errors.New("llm: no API key configured")
	// ErrEmptyReply is returned when the model produced no text.
	ErrEmptyReply = errors.New("llm: empty reply")
)

// Config selects and configures a chat backend.
type Config struct {
	// Backend is BackendOpenAI (the default) or BackendAnthropic.
	Backend string
	APIKey  string
	// BaseURL overrides the endpoint, e.g. an OpenAI-compatible gateway.
	BaseURL string
	Model   string
	// Timeout bounds each request. Defaults to 30s.
	Timeout   time.Duration
	MaxTokens int64
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
}

// New returns the Completer for cfg.Backend.
func New(cfg Config) (language.Completer, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	switch cfg.Backend {
	case "", BackendOpenAI:
		return NewOpenAI(cfg), nil
	case BackendAnthropic:
		return NewAnthropic(cfg), nil
	}
	return nil, fmt.Errorf("llm: unknown backend %q", cfg.Backend)
}
