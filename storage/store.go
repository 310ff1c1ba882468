// Package storage provides document chunk persistence for retrieval.
//
// Two implementations exist: a SQLite store that ranks by cosine similarity
// in Go (zero-setup local use) and a PostgreSQL store that delegates ranking
// to the pgvector extension.
//
// Information Hiding:
// - Connection management hidden behind the interface
// - Schema and migration details encapsulated
// - Embedding serialization internalized per store

package storage

import (
	"context"
	"math"
)

// Chunk is one stored document fragment with its embedding.
type Chunk struct {
	// ID is the chunk's unique identifier, assigned at ingest time.
	ID string
	// Content is the chunk text.
	Content string
	// Source is the origin document path or name.
	Source string
	// FileHash is the sha256 of the source file, used for idempotent ingest.
	FileHash string
	// ChunkIndex is the chunk's position within the source document.
	ChunkIndex int
	// Embedding is the chunk's vector representation.
	Embedding []float32
	// Score is the similarity to the query; populated only on search results.
	Score float64
}

// DocumentStore persists chunks and retrieves them by vector similarity.
type DocumentStore interface {
	// Store persists a chunk. Re-storing the same (source, file hash, chunk
	// index) coordinates is a no-op.
	Store(ctx context.Context, chunk Chunk) error

	// Search returns up to topK chunks with similarity above threshold,
	// most similar first.
	Search(ctx context.Context, embedding []float32, topK int, threshold float64) ([]Chunk, error)

	// IsIngested reports whether any chunk of the given file is stored.
	IsIngested(ctx context.Context, source, fileHash string) (bool, error)

	// Count returns the total number of stored chunks.
	Count(ctx context.Context) (int, error)

	// CountBySource returns chunk counts grouped by source.
	CountBySource(ctx context.Context) (map[string]int, error)

	// Close releases the underlying database resources.
	Close() error
}

// cosineSimilarity computes the cosine similarity of two vectors.
// Returns 0 for mismatched lengths or zero vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
