package generator

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	genaiopt "google.golang.org/api/option"
)

// Google calls Gemini through generative-ai-go.
type Google struct {
	options Options
	client  *genai.Client
}

// NewGoogle creates a Gemini client.
func NewGoogle(ctx context.Context, opts ...Option) (*Google, error) {
	options := NewOptions(opts...)
	if options.APIKey == "" {
		return nil, errors.New("google generator requires an API key")
	}
	clientOpts := []genaiopt.ClientOption{genaiopt.WithAPIKey(options.APIKey)}
	if options.BaseURL != "" {
		clientOpts = append(clientOpts, genaiopt.WithEndpoint(options.BaseURL))
	}
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, err
	}
	return &Google{options: options, client: client}, nil
}

func (g *Google) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.options.Model)
	if g.options.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(g.options.MaxTokens))
	}
	rsp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil || len(rsp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from Google")
	}

	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("no text in Google response")
	}
	return b.String(), nil
}

func (g *Google) Model() string { return "google:" + g.options.Model }

// Close releases the client.
func (g *Google) Close() error { return g.client.Close() }
