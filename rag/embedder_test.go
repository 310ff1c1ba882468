package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaEmbedderEmbed(t *testing.T) {
	var gotReq ollamaEmbedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{
			Embeddings: [][]float32{{0.1, 0.2, 0.3}},
		})
	}))
	defer server.Close()

	e := NewOllamaEmbedder(server.URL, "nomic-embed-text")
	embedding, err := e.Embed(context.Background(), "  hello world  ")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}

	if gotReq.Model != "nomic-embed-text" {
		t.Errorf("model not sent: %q", gotReq.Model)
	}
	if gotReq.Input != "hello world" {
		t.Errorf("input must be trimmed, got %q", gotReq.Input)
	}
	if len(embedding) != 3 || embedding[1] != 0.2 {
		t.Errorf("unexpected embedding: %v", embedding)
	}
}

func TestOllamaEmbedderRejectsEmptyText(t *testing.T) {
	e := NewOllamaEmbedder("http://localhost:11434", "")
	if _, err := e.Embed(context.Background(), "   "); err == nil {
		t.Error("expected error for empty text")
	}
}

func TestOllamaEmbedderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	e := NewOllamaEmbedder(server.URL, "missing-model")
	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestOllamaEmbedderEmptyEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{})
	}))
	defer server.Close()

	e := NewOllamaEmbedder(server.URL, "")
	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Error("expected error for response without embeddings")
	}
}

func TestOllamaEmbedderDimension(t *testing.T) {
	if d := NewOllamaEmbedder("", "nomic-embed-text").Dimension(); d != 768 {
		t.Errorf("nomic dimension: expected 768, got %d", d)
	}
	if d := NewOllamaEmbedder("", "qwen3-embedding:0.6b").Dimension(); d != 1024 {
		t.Errorf("qwen3 dimension: expected 1024, got %d", d)
	}
}

func TestNewEmbedderProviderSelection(t *testing.T) {
	e, err := NewEmbedder("ollama", "", "")
	if err != nil {
		t.Fatalf("ollama provider failed: %v", err)
	}
	if _, ok := e.(*OllamaEmbedder); !ok {
		t.Errorf("expected OllamaEmbedder, got %T", e)
	}

	// Default provider is ollama.
	if _, err := NewEmbedder("", "", ""); err != nil {
		t.Errorf("blank provider must default to ollama: %v", err)
	}

	if _, err := NewEmbedder("cohere", "", ""); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewEmbedderOpenAIRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewEmbedder("openai", "", ""); err == nil {
		t.Error("expected error without OPENAI_API_KEY")
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	e, err := NewEmbedder("openai", "", "")
	if err != nil {
		t.Fatalf("openai provider failed: %v", err)
	}
	if e.ModelName() != defaultOpenAIEmbedModel {
		t.Errorf("expected default model, got %q", e.ModelName())
	}
	if e.Dimension() != 768 {
		t.Errorf("expected 768 dimensions, got %d", e.Dimension())
	}
}
