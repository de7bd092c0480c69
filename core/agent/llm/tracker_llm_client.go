package llm

import (
	"context"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"jobtracker_server/pkg/apperr"
)

// Completer is the chat completion surface the stages depend on.
type Completer interface {
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Client struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

type ClientConfig struct {
	APIKey string
	// BaseURL points at any OpenAI-compatible endpoint (e.g. https://api.groq.com/openai/v1).
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	HTTPClient  *http.Client
}

const (
	DefaultModel     = "gpt-4o-mini"
	DefaultMaxTokens = 300
)

// NewClientWithConfig builds a client. Without an API key every call
// returns apperr.ErrModelNotConfigured.
func NewClientWithConfig(cfg ClientConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	c := &Client{
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(cfg.Temperature),
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return c
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}
	c.client = openai.NewClientWithConfig(oc)
	return c
}

func (c *Client) Configured() bool {
	return c.client != nil
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.client == nil {
		return "", apperr.ErrModelNotConfigured
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
	})
	if err != nil {
		return "", apperr.ExternalError("llm", err)
	}

	if len(resp.Choices) == 0 {
		return "", apperr.MalformedModelOutput("model returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
