package llm

import (
	"context"
)

// Client defines the interface for insight reasoner providers.
type Client interface {
	// SelectInsights sends the prompt and returns the provider's raw JSON
	// response. Callers must validate it before trusting any of it.
	SelectInsights(ctx context.Context, prompt string) ([]byte, error)
}

// Config contains provider selection and connection settings.
type Config struct {
	Provider         string
	APIKey           string
	Model            string
	BaseURL          string
	MockResponsePath string
	Temperature      float64
	MaxTokens        int
}
