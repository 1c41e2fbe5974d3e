// Package config provides configuration utilities for the application.
package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/sammoorhouse/mentos/internal/llm"
)

// LoadLLMConfig loads reasoner configuration from Viper and environment
// variables. Precedence:
// 1. Viper configuration (from config file or MENTOS_ env vars)
// 2. Direct environment variables (OPENAI_*)
// 3. Default values
func LoadLLMConfig() llm.Config {
	cfg := llm.Config{
		Provider: "openai",
	}

	if v := viper.GetString("llm.provider"); v != "" {
		cfg.Provider = v
	}
	if v := viper.GetString("llm.api_key"); v != "" {
		cfg.APIKey = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.Model = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.BaseURL = v
	}
	if v := viper.GetString("llm.mock_response_path"); v != "" {
		cfg.MockResponsePath = ExpandPath(v)
	}
	if v := viper.GetFloat64("llm.temperature"); v != 0 {
		cfg.Temperature = v
	}
	if v := viper.GetInt("llm.max_tokens"); v != 0 {
		cfg.MaxTokens = v
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = os.Getenv("OPENAI_MODEL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}

	return cfg
}
