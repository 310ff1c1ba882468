package rag

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Embedder turns text into a fixed-dimensionality vector.
type Embedder interface {
	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the vector length this embedder produces.
	Dimension() int

	// ModelName returns the embedding model in use.
	ModelName() string
}

// NewEmbedder builds an embedder by provider name. Supported providers:
// "ollama" (local, /api/embed) and "openai" (requires OPENAI_API_KEY).
// baseURL is optional for both; model is optional and defaults per provider.
func NewEmbedder(provider, model, baseURL string) (Embedder, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "ollama":
		return NewOllamaEmbedder(baseURL, model), nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("openai embedder requires OPENAI_API_KEY to be set")
		}
		return NewOpenAIEmbedder(apiKey, model, baseURL), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (want ollama or openai)", provider)
	}
}
