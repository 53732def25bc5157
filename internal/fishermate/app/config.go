package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/fishermate/fishermate/internal/fishermate/channel/matrix"
	"github.com/fishermate/fishermate/internal/fishermate/llm"
	"github.com/fishermate/fishermate/internal/fishermate/session"
	"github.com/fishermate/fishermate/internal/fishermate/voice"
)

// GeminiBaseURL is Gemini's OpenAI-compatible endpoint, used when only
// GOOGLE_API_KEY is set.
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

const geminiModel = "gemini-2.0-flash"

// Config holds the server settings.
type Config struct {
	// HTTPAddr is the API listen address (e.g. ":5000").
	HTTPAddr        string
	DefaultLanguage string
	ProviderTimeout time.Duration

	SessionBackend session.StoreType
	RedisURL       string
	RelayTTL       time.Duration
	SMSTTL         time.Duration
	SweepSchedule  string

	// DatabasePath enables the SQLite exchange log when non-empty.
	DatabasePath string

	AudioDir    string
	AudioMaxAge time.Duration

	// ValidateSignature rejects Twilio webhooks without a valid
	// X-Twilio-Signature; PublicBaseURL is the URL Twilio posts to.
	ValidateSignature bool
	PublicBaseURL     string
	BroadcastToken    string

	// RateLimit is the per-sender inbound budget per minute.
	RateLimit int

	Providers ProviderConfig
}

// ProviderConfig holds credentials for the external collaborators. It is
// read from the environment with LoadProviderConfig.
type ProviderConfig struct {
	OpenWeatherKey string `env:"OPENWEATHER_API_KEY"`

	LLMProvider  string `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMAPIKey    string `env:"LLM_API_KEY"`
	LLMBaseURL   string `env:"LLM_BASE_URL"`
	LLMModel     string `env:"LLM_MODEL"`
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`

	SpeechAPIKey  string `env:"SPEECH_API_KEY"`
	SpeechBaseURL string `env:"SPEECH_BASE_URL"`

	TwilioAccountSID     string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken      string `env:"TWILIO_AUTH_TOKEN"`
	TwilioWhatsAppNumber string `env:"TWILIO_WHATSAPP_NUMBER" envDefault:"whatsapp:+14155238886"`
	TwilioSMSNumber      string `env:"TWILIO_SMS_NUMBER"`

	MatrixHomeserver  string   `env:"MATRIX_HOMESERVER"`
	MatrixUserID      string   `env:"MATRIX_USER_ID"`
	MatrixAccessToken string   `env:"MATRIX_ACCESS_TOKEN"`
	MatrixRooms       []string `env:"MATRIX_ROOMS" envSeparator:","`
}

// LoadProviderConfig reads ProviderConfig from the environment.
func LoadProviderConfig() (ProviderConfig, error) {
	cfg, err := env.ParseAs[ProviderConfig]()
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("provider config: %w", err)
	}
	return cfg, nil
}

// LLM returns the chat model settings. A Google key alone selects Gemini
// through its OpenAI-compatible endpoint.
func (c ProviderConfig) LLM(timeout time.Duration) llm.Config {
	cfg := llm.Config{
		Backend: c.LLMProvider,
		APIKey:  c.LLMAPIKey,
		BaseURL: c.LLMBaseURL,
		Model:   c.LLMModel,
		Timeout: timeout,
	}
	if cfg.APIKey == "" && c.GoogleAPIKey != "" {
		cfg.Backend = llm.BackendOpenAI
		cfg.APIKey = c.GoogleAPIKey
		if cfg.BaseURL == "" {
			cfg.BaseURL = GeminiBaseURL
		}
		if cfg.Model == "" {
			cfg.Model = geminiModel
		}
	}
	return cfg
}

// Speech returns the TTS/STT settings. Without a dedicated key the OpenAI
// chat key is reused.
func (c ProviderConfig) Speech(timeout time.Duration) (voice.OpenAIConfig, bool) {
	cfg := voice.OpenAIConfig{APIKey: c.SpeechAPIKey, BaseURL: c.SpeechBaseURL, Timeout: timeout}
	if cfg.APIKey == "" && c.LLMProvider == llm.BackendOpenAI && c.LLMBaseURL == "" {
		cfg.APIKey = c.LLMAPIKey
	}
	return cfg, cfg.APIKey != ""
}

// Matrix returns the relay bot settings and whether the bot is enabled.
func (c ProviderConfig) Matrix() (matrix.Config, bool) {
	cfg := matrix.Config{
		Homeserver:  c.MatrixHomeserver,
		UserID:      c.MatrixUserID,
		AccessToken: c.MatrixAccessToken,
		Rooms:       c.MatrixRooms,
	}
	return cfg, cfg.Homeserver != "" && cfg.UserID != "" && cfg.AccessToken != ""
}
