package config

import (
	"os"

	"github.com/entrhq/recall/pkg/llm/openai"
)

// BuildProvider creates an LLM provider based on configuration precedence:
// CLI flags > Environment variables > Config file > Defaults
func BuildProvider(cliModel, cliBaseURL, cliAPIKey, defaultModel string) (*openai.Provider, error) {
	// Start with CLI values (empty strings if not provided)
	finalModel := cliModel
	finalBaseURL := cliBaseURL
	finalAPIKey := cliAPIKey

	// Fall back to environment variables if CLI values are empty
	if finalAPIKey == "" {
		finalAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if finalBaseURL == "" {
		finalBaseURL = os.Getenv("OPENAI_BASE_URL")
	}

	// Get config file settings
	llmConfig := GetLLM()

	// Fall back to config file if still empty
	if llmConfig != nil {
		// Model: Use config file only if CLI didn't set a non-default value
		if cliModel == "" || cliModel == defaultModel {
			if configModel := llmConfig.GetModel(); configModel != "" {
				finalModel = configModel
			}
		}
		if finalBaseURL == "" {
			finalBaseURL = llmConfig.GetBaseURL()
		}
		if finalAPIKey == "" {
			finalAPIKey = llmConfig.GetAPIKey()
		}
	}

	// Final defaults
	if finalModel == "" {
		finalModel = defaultModel
	}

	opts := []openai.ProviderOption{openai.WithModel(finalModel)}
	if finalBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(finalBaseURL))
	}

	return openai.NewProvider(finalAPIKey, opts...)
}
