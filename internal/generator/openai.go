package generator

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
)

// OpenAI calls the chat completions endpoint.
type OpenAI struct {
	options Options
	client  *openai.Client
}

// NewOpenAI creates a client. BaseURL points it at a compatible server.
func NewOpenAI(opts ...Option) (*OpenAI, error) {
	options := NewOptions(opts...)
	if options.APIKey == "" && options.BaseURL == "" {
		return nil, errors.New("openai generator requires an API key")
	}
	cfg := openai.DefaultConfig(options.APIKey)
	if options.BaseURL != "" {
		cfg.BaseURL = options.BaseURL
	}
	return &OpenAI{options: options, client: openai.NewClientWithConfig(cfg)}, nil
}

func (g *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     g.options.Model,
		MaxTokens: g.options.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	rsp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(rsp.Choices) == 0 || len(rsp.Choices[0].Message.Content) == 0 {
		return "", errors.New("no response from OpenAI")
	}
	return rsp.Choices[0].Message.Content, nil
}

func (g *OpenAI) Model() string { return "openai:" + g.options.Model }
