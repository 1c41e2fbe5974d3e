package llm

import (
	"fmt"
	"strings"
)

// NewClient creates a reasoner client based on the provided configuration.
// A configured mock response path always wins, so offline runs and tests
// never touch the network.
func NewClient(cfg Config) (Client, error) {
	if cfg.MockResponsePath != "" {
		return newMockClient(cfg.MockResponsePath), nil
	}

	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
