package llm

import (
	"context"
	"fmt"

	"ResuMatch/internal/config"
)

// LLM is the common interface every language model client implements.
// Summaries are single-turn, so a prompt in and the generated text out is
// all the service needs.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewClient creates an LLM client for the configured provider.
func NewClient(cfg config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGemini(context.Background(), cfg.Model, cfg.APIKey)
	case "openai":
		return NewOpenAI(cfg.Model, cfg.APIKey)
	case "ollama":
		return NewOllama(cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
