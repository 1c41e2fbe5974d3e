package llm

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientMockResponseWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "response.json")
	payload := `{"matches": [], "non_matches": []}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	// The mock path takes precedence even when a real provider is configured
	client, err := NewClient(Config{Provider: "openai", APIKey: "sk-test", MockResponsePath: path})
	require.NoError(t, err)

	raw, err := client.SelectInsights(context.Background(), "ignored")
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(raw))
}

func TestNewClientMockMissingFile(t *testing.T) {
	client, err := NewClient(Config{MockResponsePath: filepath.Join(t.TempDir(), "missing.json")})
	require.NoError(t, err)

	_, err = client.SelectInsights(context.Background(), "ignored")
	assert.Error(t, err)
}

func TestNewClientUnsupportedProvider(t *testing.T) {
	_, err := NewClient(Config{Provider: "carrier-pigeon"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}

func TestNewClientOpenAIRequiresKey(t *testing.T) {
	_, err := NewClient(Config{Provider: "openai"})
	assert.Error(t, err)
}
