package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultOpenAIModel = openai.ChatModelGPT4oMini

// OpenAI completes prompts through the OpenAI chat completions API or any
// compatible endpoint.
type OpenAI struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// NewOpenAI returns an OpenAI completer. Requests are sent once; the
// caller owns retry policy.
func NewOpenAI(cfg Config) *OpenAI {
	cfg.defaults()
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAI{client: openai.NewClient(opts...), model: cfg.Model, maxTokens: cfg.MaxTokens}
}

// Complete implements language.Completer.
func (o *OpenAI) Complete(ctx context.Context, system, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(o.maxTokens),
	}
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("llm: openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: openai: %w", ErrEmptyReply)
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("llm: openai: %w", ErrEmptyReply)
	}
	return out, nil
}
