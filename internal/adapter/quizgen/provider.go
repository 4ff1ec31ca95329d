package quizgen

import (
	"fmt"
	"net/http"

	"synapse/internal/config"
	"synapse/internal/domain"
	"synapse/internal/logger"

	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// NewQuizGenerator picks the backend named by cfg.Provider. An empty
// provider means openai.
func NewQuizGenerator(cfg config.LLMConfig) (domain.QuizGenerator, error) {
	switch cfg.Provider {
	case "", ProviderOpenAI:
		return NewOpenAIQuizGenerator(cfg)
	case ProviderOllama:
		return NewOllamaQuizGenerator(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// NewOllamaQuizGenerator talks to a local Ollama server, mostly for
// development without an API key. Ollama has no quota, so only rate
// limiting and network failures are reported.
func NewOllamaQuizGenerator(cfg config.LLMConfig) (domain.QuizGenerator, error) {
	if cfg.BaseURL == "" || cfg.Model == "" {
		return nil, fmt.Errorf("ollama requires llm.base_url and llm.model")
	}
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
		ollama.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo Ollama client: %w", err)
	}
	logger.Named("quizgen").Info("Initialized Ollama quiz generator", zap.String("server_url", cfg.BaseURL), zap.String("model", cfg.Model))
	return NewQuizGeneratorWithModel(llm, cfg.Temperature, cfg.Timeout), nil
}
