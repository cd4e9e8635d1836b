package llmservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"docubot/internal/config"
)

// Client wraps a single chat-completion model behind an explicit
// configuration instead of ambient process state.
type Client struct {
	llm         llms.Model
	temperature float64
	timeout     time.Duration
}

// NewClient builds a client for one model of the configured provider.
// The model is passed separately so the chat and caption clients can
// share one LLMConfig.
func NewClient(cfg *config.LLMConfig, model string) (*Client, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing LLM client: %w", err)
	}
	return &Client{
		llm:         llm,
		temperature: cfg.Temperature,
		timeout:     time.Duration(cfg.TimeoutSecs) * time.Second,
	}, nil
}

// GenerateContent calls the model with a per-call timeout applied.
func (c *Client) GenerateContent(ctx context.Context, messages []llms.MessageContent) (*llms.ContentResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.llm.GenerateContent(ctx, messages, llms.WithTemperature(c.temperature))
}

// GenerateText returns the first choice's text content.
func (c *Client) GenerateText(ctx context.Context, messages []llms.MessageContent) (string, error) {
	res, err := c.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return res.Choices[0].Content, nil
}
