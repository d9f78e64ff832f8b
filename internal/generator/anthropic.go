package generator

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic calls the Messages API.
type Anthropic struct {
	options Options
	client  *anthropic.Client
}

// NewAnthropic creates a client.
func NewAnthropic(opts ...Option) (*Anthropic, error) {
	options := NewOptions(opts...)
	if options.APIKey == "" {
		return nil, errors.New("anthropic generator requires an API key")
	}
	reqOpts := []anthropicopt.RequestOption{anthropicopt.WithAPIKey(options.APIKey)}
	if options.BaseURL != "" {
		reqOpts = append(reqOpts, anthropicopt.WithBaseURL(options.BaseURL))
	}
	client := anthropic.NewClient(reqOpts...)
	return &Anthropic{options: options, client: &client}, nil
}

func (g *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.options.Model),
		MaxTokens: int64(g.options.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	rsp, err := g.client.Messages.New(ctx, req)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, content := range rsp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("no response from Anthropic")
	}
	return b.String(), nil
}

func (g *Anthropic) Model() string { return "anthropic:" + g.options.Model }
