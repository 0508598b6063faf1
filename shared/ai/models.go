package ai

import (
	"context"
	"net/http"
	"strings"

	"digest-stack/shared/config"
)

var availableModels = []string{
	"gemini-2.5-flash",
	"gemini-2.5-pro",
	"gemini-2.0-flash",
	"gpt-4o-mini",
	"gpt-4o",
	"gpt-4.1-mini",
	"gpt-3.5-turbo",
	"ollama/llama3",
	"ollama/mistral",
	"ollama/phi3",
	"lmstudio/qwen2.5-7b-instruct",
}

// AvailableModels lists the model ids known to work with the summarizer.
// Any other id is passed to the OpenAI-compatible endpoint unchanged.
func AvailableModels() []string {
	return append([]string(nil), availableModels...)
}

func isGeminiModel(model string) bool {
	return strings.HasPrefix(strings.ToLower(model), "gemini")
}

func defaultBaseURL(model string) string {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "ollama/"):
		return defaultOllamaBaseURL
	case strings.HasPrefix(m, "lmstudio/"):
		return defaultLMStudioBaseURL
	default:
		return defaultOpenAIBaseURL
	}
}

// newProvider picks the backend for the configured model.
func newProvider(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout()}

	if isGeminiModel(cfg.Model) {
		g, err := newGeminiProvider(ctx, cfg.APIKey.Value(), cfg.BaseURL, httpClient)
		if err != nil {
			return nil, err
		}
		return g, nil
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL(cfg.Model)
	}
	// Value is empty unless the key is real, so placeholders are never sent.
	// Local servers never receive the key.
	apiKey := cfg.APIKey.Value()
	if config.IsLocalModel(cfg.Model) {
		apiKey = ""
	}
	return newOpenAIProvider(baseURL, apiKey, httpClient), nil
}
