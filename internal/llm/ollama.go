package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	olla "github.com/ollama/ollama/api"
)

// Ollama is an LLM client for a local or remote Ollama server.
type Ollama struct {
	client *olla.Client
	model  string
}

// NewOllama creates an Ollama client. An empty baseURL falls back to the
// default local server address.
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	hc := &http.Client{
		Timeout: 120 * time.Second,
	}

	client := olla.NewClient(parsedURL, hc)

	return &Ollama{client: client, model: model}, nil
}

// Generate runs the prompt through the model and returns the full response.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	var result *olla.GenerateResponse

	err := o.client.Generate(ctx, &olla.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &[]bool{false}[0],
	}, func(resp olla.GenerateResponse) error {
		result = &resp
		return nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to generate content with ollama: %w", err)
	}
	if result == nil {
		return "", fmt.Errorf("no response returned from ollama")
	}

	return result.Response, nil
}
