package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"digest-stack/internal/models"
	"digest-stack/shared/config"
	"digest-stack/shared/logging"

	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyContent  = errors.New("No text provided for summarization")
	ErrNotConfigured = errors.New("LLM not configured")
)

const placeholderPreviewRunes = 100

// Summarizer turns text into a summary with a single completion call.
type Summarizer struct {
	config      config.LLMConfig
	provider    Provider
	providerErr error
	logger      logrus.FieldLogger
}

// NewSummarizer builds a summarizer for cfg. A provider is only created when
// the configuration is usable; construction failures surface in results.
func NewSummarizer(ctx context.Context, cfg config.LLMConfig, logger logrus.FieldLogger) *Summarizer {
	s := &Summarizer{
		config: cfg,
		logger: logging.OrDiscard(logger).WithField("model", cfg.Model),
	}
	if cfg.IsConfigured() {
		s.provider, s.providerErr = newProvider(ctx, cfg)
		if s.providerErr != nil {
			s.logger.WithError(s.providerErr).Error("Failed to create completion provider")
		}
	}
	return s
}

// NewSummarizerWithProvider uses p instead of selecting a provider from cfg.
func NewSummarizerWithProvider(cfg config.LLMConfig, p Provider, logger logrus.FieldLogger) *Summarizer {
	return &Summarizer{
		config:   cfg,
		provider: p,
		logger:   logging.OrDiscard(logger).WithField("model", cfg.Model),
	}
}

func (s *Summarizer) Model() string { return s.config.Model }

func (s *Summarizer) IsConfigured() bool { return s.config.IsConfigured() }

// Summarize never returns an error; failures are described by the result.
func (s *Summarizer) Summarize(ctx context.Context, content string, contentType ContentType) *models.CompletionResult {
	s.logger.WithField("content_type", contentType.String()).Info("Attempting to summarize text with LLM")

	if strings.TrimSpace(content) == "" {
		s.logger.Warn("No text provided for summarization")
		return s.failure(ErrEmptyContent)
	}

	if !s.config.IsConfigured() {
		s.logger.WithField("api_key", s.config.APIKey.Kind().String()).
			Warn("LLM not configured, returning placeholder summary")
		result := s.failure(fmt.Errorf("%w: set LLM_API_KEY or use a local model such as ollama/llama3", ErrNotConfigured))
		result.Summary = PlaceholderSummary(content)
		return result
	}

	if s.providerErr != nil {
		return s.failure(s.providerErr)
	}
	if s.provider == nil {
		return s.failure(errors.New("no completion provider available"))
	}

	req := &CompletionRequest{
		Model:       s.config.Model,
		Messages:    []Message{{Role: "user", Content: BuildPrompt(content, contentType)}},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.TemperatureValue(),
	}

	resp, err := s.provider.Complete(ctx, req)
	if err != nil {
		s.logger.WithError(err).Error("An error occurred during LLM summarization")
		return s.failure(err)
	}

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		s.logger.Warn("Completion provider returned an empty summary")
	}

	result := &models.CompletionResult{
		Success:   true,
		Summary:   summary,
		ModelUsed: s.config.Model,
	}
	if resp.Usage != nil {
		result.Tokens = &models.TokenUsage{
			Prompt:     resp.Usage.PromptTokens,
			Completion: resp.Usage.CompletionTokens,
			Total:      resp.Usage.TotalTokens,
		}
	}

	s.logger.WithField("summary_chars", len(summary)).Info("LLM summarization complete")
	return result
}

func (s *Summarizer) failure(err error) *models.CompletionResult {
	return &models.CompletionResult{
		Success:   false,
		ModelUsed: s.config.Model,
		Error:     err.Error(),
	}
}

// PlaceholderSummary is shown when no LLM is configured, so the rest of the
// pipeline still has text to display.
func PlaceholderSummary(content string) string {
	preview := []rune(content)
	if len(preview) > placeholderPreviewRunes {
		preview = preview[:placeholderPreviewRunes]
	}
	return fmt.Sprintf("[PLACEHOLDER] Summary would be generated for content starting with: '%s...'", string(preview))
}
