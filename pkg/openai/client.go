package openai

import (
	"context"

	"github.com/rotisserie/eris"
	sdk "github.com/sashabaranov/go-openai"
)

const defaultModel = sdk.GPT4TurboPreview

// Client defines the OpenAI chat operations used by the analysis pipeline.
type Client interface {
	ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error)
}

// ChatCompletionRequest is our own request type for chat completions.
type ChatCompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// ChatCompletionResponse is our own response type.
type ChatCompletionResponse struct {
	ID      string
	Content string
	Usage   Usage
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Option configures the client.
type Option func(*sdkClient)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *sdkClient) {
		c.model = model
	}
}

// WithBaseURL points the client at an alternate API endpoint.
func WithBaseURL(url string) Option {
	return func(c *sdkClient) {
		c.baseURL = url
	}
}

type sdkClient struct {
	client  *sdk.Client
	model   string
	baseURL string
}

// NewClient creates an OpenAI client backed by go-openai.
func NewClient(apiKey string, opts ...Option) Client {
	c := &sdkClient{model: defaultModel}
	for _, o := range opts {
		o(c)
	}
	if c.baseURL != "" {
		cfg := sdk.DefaultConfig(apiKey)
		cfg.BaseURL = c.baseURL
		c.client = sdk.NewClientWithConfig(cfg)
	} else {
		c.client = sdk.NewClient(apiKey)
	}
	return c
}

func (c *sdkClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]sdk.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, sdk.ChatCompletionMessage{
			Role:    sdk.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, sdk.ChatCompletionMessage{
		Role:    sdk.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, sdk.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, eris.Wrap(err, "openai: chat completion")
	}

	out := &ChatCompletionResponse{
		ID: resp.ID,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
	}
	return out, nil
}
