package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/tools/wikipedia"
)

const wikipediaUserAgent = "rewoo-agent/1.0 (task planning agent)"

type WikipediaTool struct {
	client wikipedia.Tool
}

func NewWikipediaTool() *WikipediaTool {
	return &WikipediaTool{client: wikipedia.New(wikipediaUserAgent)}
}

func (w *WikipediaTool) Name() string {
	return "wikipedia"
}

func (w *WikipediaTool) Description() string {
	return "Search Wikipedia and retrieve article summaries"
}

func (w *WikipediaTool) Execute(ctx context.Context, input string) (string, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return "", fmt.Errorf("empty wikipedia query")
	}

	res, err := w.client.Call(ctx, query)
	if err != nil {
		return "", fmt.Errorf("wikipedia lookup failed: %w", err)
	}
	return res, nil
}
