package llm

import (
	"context"
	"fmt"
	"os"
)

// mockClient returns a canned response from a file, ignoring the prompt.
// Used for offline runs and deterministic pipeline tests.
type mockClient struct {
	responsePath string
}

func newMockClient(responsePath string) Client {
	return &mockClient{responsePath: responsePath}
}

func (c *mockClient) SelectInsights(_ context.Context, _ string) ([]byte, error) {
	data, err := os.ReadFile(c.responsePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read mock response: %w", err)
	}
	return data, nil
}
