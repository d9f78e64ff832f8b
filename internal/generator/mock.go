package generator

import (
	"context"
	"strings"
)

const queryMarker = "Query:**"

// Mock answers without calling a model. By default it echoes the query line found in the prompt.
type Mock struct {
	options Options
	// Reply, when set, replaces the default answer.
	Reply func(prompt string) (string, error)
}

// NewMock returns an offline generator.
func NewMock(opts ...Option) *Mock {
	return &Mock{options: NewOptions(opts...)}
}

func (g *Mock) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if g.Reply != nil {
		return g.Reply(prompt)
	}
	query := prompt
	if i := strings.Index(prompt, queryMarker); i >= 0 {
		query = prompt[i+len(queryMarker):]
		if j := strings.IndexByte(query, '\n'); j >= 0 {
			query = query[:j]
		}
	}
	return "Answer to: " + strings.TrimSpace(query), nil
}

func (g *Mock) Model() string {
	if g.options.Model == "" {
		return "mock"
	}
	return "mock:" + g.options.Model
}
