package embedding

import "context"

// Embedding is implemented by every embedding model client.
type Embedding interface {
	// Embed generates the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embedding vectors for a batch of texts. The
	// result preserves the input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ModelType enumerates the supported model vendors.
type ModelType string

const (
	OpenAI      ModelType = "openai"
	Google      ModelType = "gemini"
	Ollama      ModelType = "ollama"
	HuggingFace ModelType = "huggingface"
)
