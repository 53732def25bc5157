package voice

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIConfig configures OpenAISpeech.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration
}

// OpenAISpeech implements Speech with the OpenAI audio endpoints.
type OpenAISpeech struct {
	client openai.Client
}

// NewOpenAISpeech returns an OpenAI speech backend.
func NewOpenAISpeech(cfg OpenAIConfig) *OpenAISpeech {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAISpeech{client: openai.NewClient(opts...)}
}

// Synthesize implements Speech. The voice model infers the language from
// the text itself.
func (o *OpenAISpeech) Synthesize(ctx context.Context, text, _ string) (io.ReadCloser, error) {
	resp, err := o.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModelTTS1,
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoiceAlloy,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("speech: HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Transcribe implements Speech.
func (o *OpenAISpeech) Transcribe(ctx context.Context, audio io.Reader, filename, lang string) (string, error) {
	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(audio, filename, "application/octet-stream"),
		Model: openai.AudioModelWhisper1,
	}
	if lang != "" {
		params.Language = openai.String(lang)
	}
	resp, err := o.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
