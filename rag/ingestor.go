package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/stagekit/stagekit/storage"
)

// ingestExtensions are the file types the directory walk picks up.
var ingestExtensions = map[string]bool{
	".md":   true,
	".txt":  true,
	".rst":  true,
	".adoc": true,
}

// IngestStats summarizes an ingestion run.
type IngestStats struct {
	FilesIngested int
	FilesSkipped  int
	ChunksStored  int
}

// Ingestor runs the chunk-embed-store pipeline over files. Files already in
// the store (same source and content hash) are skipped, so re-running
// ingestion is cheap and idempotent.
type Ingestor struct {
	store    storage.DocumentStore
	embedder Embedder
	chunker  *Chunker
	logger   *slog.Logger
}

// NewIngestor wires an ingestion pipeline.
func NewIngestor(store storage.DocumentStore, embedder Embedder, chunker *Chunker) *Ingestor {
	return &Ingestor{
		store:    store,
		embedder: embedder,
		chunker:  chunker,
		logger:   slog.Default(),
	}
}

// WithLogger sets the logger. Returns the ingestor for chaining.
func (in *Ingestor) WithLogger(logger *slog.Logger) *Ingestor {
	if logger != nil {
		in.logger = logger
	}
	return in
}

// IngestDir walks root and ingests every document file found. Individual
// file failures abort the run so partial corpora are noticed, but files
// already ingested are skipped silently.
func (in *Ingestor) IngestDir(ctx context.Context, root string) (IngestStats, error) {
	var stats IngestStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !ingestExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		stored, err := in.IngestFile(ctx, path)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		if stored == 0 {
			stats.FilesSkipped++
		} else {
			stats.FilesIngested++
			stats.ChunksStored += stored
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	in.logger.Info("ingestion complete",
		"files", stats.FilesIngested,
		"skipped", stats.FilesSkipped,
		"chunks", stats.ChunksStored)
	return stats, nil
}

// IngestFile chunks, embeds, and stores a single file. Returns the number
// of chunks stored; zero means the file was already ingested or empty.
func (in *Ingestor) IngestFile(ctx context.Context, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read file: %w", err)
	}

	fileHash := hashContent(content)

	ingested, err := in.store.IsIngested(ctx, path, fileHash)
	if err != nil {
		return 0, err
	}
	if ingested {
		in.logger.Debug("already ingested, skipping", "source", path, "hash", fileHash[:8])
		return 0, nil
	}

	chunks := in.chunker.Chunk(string(content))
	if len(chunks) == 0 {
		return 0, nil
	}
	in.logger.Info("ingesting file", "source", path, "chunks", len(chunks))

	for i, text := range chunks {
		embedding, err := in.embedder.Embed(ctx, text)
		if err != nil {
			return 0, fmt.Errorf("embedding chunk %d: %w", i, err)
		}

		err = in.store.Store(ctx, storage.Chunk{
			ID:         uuid.NewString(),
			Content:    text,
			Source:     path,
			FileHash:   fileHash,
			ChunkIndex: i,
			Embedding:  embedding,
		})
		if err != nil {
			return 0, fmt.Errorf("storing chunk %d: %w", i, err)
		}
	}
	return len(chunks), nil
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
