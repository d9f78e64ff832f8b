// Package generator sends prompts to a hosted generative model and returns its text.
package generator

import (
	"context"
	"fmt"
)

// Generator produces a completion for a prompt. Empty provider output is an error.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Model names the provider and model, for logs and status.
	Model() string
}

// Option configures a provider.
type Option func(*Options)

// Options holds provider settings.
type Options struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

func WithAPIKey(apiKey string) Option {
	return func(o *Options) {
		o.APIKey = apiKey
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	options := Options{MaxTokens: 1024}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// New returns the generator for provider.
func New(ctx context.Context, provider string, opts ...Option) (Generator, error) {
	switch provider {
	case "google", "":
		return NewGoogle(ctx, opts...)
	case "openai":
		return NewOpenAI(opts...)
	case "anthropic":
		return NewAnthropic(opts...)
	case "mock":
		return NewMock(opts...), nil
	default:
		return nil, fmt.Errorf("unknown generation provider: %s", provider)
	}
}
