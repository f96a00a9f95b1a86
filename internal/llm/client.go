package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/prompts"

	"pdf-rag/internal/config"
)

// maxRetries bounds transparent retries of a failing generation call.
// The original call plus retries gives three attempts total.
const maxRetries = 2

// Client wraps a chat model with the answer prompt template. The template
// is parsed once at construction and reused for every request.
type Client struct {
	model       llms.Model
	prompt      prompts.PromptTemplate
	temperature float64
}

// NewOpenAIClient builds a generation client against an OpenAI-compatible
// chat completion API.
func NewOpenAIClient(cfg *config.LLMConfig, template string) (*Client, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.InferenceModel),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing chat model: %w", err)
	}
	return NewClient(model, template, cfg.Temperature)
}

// NewClient builds a generation client around an existing chat model.
func NewClient(model llms.Model, template string, temperature float64) (*Client, error) {
	if model == nil {
		return nil, errors.New("chat model is required")
	}
	prompt := prompts.NewPromptTemplate(template, []string{"context", "question"})
	return &Client{model: model, prompt: prompt, temperature: temperature}, nil
}

// Generate formats the grounding prompt and calls the chat model. Transient
// provider failures are retried up to maxRetries times with exponential
// backoff; the final failure propagates to the caller.
func (c *Client) Generate(ctx context.Context, question, contextBlock string) (string, error) {
	promptText, err := c.prompt.Format(map[string]any{
		"context":  contextBlock,
		"question": question,
	})
	if err != nil {
		return "", fmt.Errorf("formatting prompt: %w", err)
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(promptText)},
		},
	}

	var answer string
	attempt := 0
	op := func() error {
		attempt++
		resp, err := c.model.GenerateContent(ctx, messages, llms.WithTemperature(c.temperature))
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("generation call failed")
			return err
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(errors.New("model returned no choices"))
		}
		answer = resp.Choices[0].Content
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return answer, nil
}
