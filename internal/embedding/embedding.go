package embedding

import (
	"fmt"
)

// NewEmdModel creates an Embedding model instance for the given provider.
// baseURL is optional and only used by providers that serve from a
// configurable endpoint.
func NewEmdModel(provider, model, apiKey, baseURL string) (Embedding, error) {
	switch ModelType(provider) {
	case Google:
		return NewGoogleModel(model, apiKey)
	case OpenAI:
		return NewOpenAIModel(model, apiKey)
	case HuggingFace:
		return NewHuggingFaceModel(model, apiKey, baseURL)
	case Ollama:
		return NewOllamaModel(model, baseURL)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
