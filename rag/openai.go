package rag

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIEmbedModel = string(openai.SmallEmbedding3)

// OpenAIEmbedder generates embeddings via the OpenAI embeddings API using
// the go-openai library. Dimensions are pinned to 768 so vectors are
// interchangeable with the local Ollama models and fit the same database
// schema.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder creates an embedder. Empty model defaults to
// text-embedding-3-small. baseURL overrides the API endpoint for
// OpenAI-compatible services; empty uses api.openai.com.
func NewOpenAIEmbedder(apiKey, model, baseURL string) *OpenAIEmbedder {
	if model == "" {
		model = defaultOpenAIEmbedModel
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Embed returns the embedding for text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          openai.EmbeddingModel(e.model),
		Dimensions:     defaultEmbedDimension,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("openai embedding response contained no embedding")
	}
	return resp.Data[0].Embedding, nil
}

// Dimension returns the requested vector length.
func (e *OpenAIEmbedder) Dimension() int {
	return defaultEmbedDimension
}

// ModelName returns the embedding model in use.
func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

var _ Embedder = (*OpenAIEmbedder)(nil)
