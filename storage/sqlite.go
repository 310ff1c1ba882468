// SQLite document store.
//
// Embeddings are stored as JSON arrays and ranked by cosine similarity in
// Go. Suits local corpora up to tens of thousands of chunks; beyond that
// use the PostgreSQL store.

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore implements DocumentStore using SQLite.
// Thread-safe: sql.DB handles connection pooling and concurrent access.
type SqliteStore struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// NewSqliteInMemory creates an in-memory store (useful for testing).
func NewSqliteInMemory() (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			source TEXT NOT NULL,
			file_hash TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			embedding TEXT NOT NULL,
			UNIQUE(source, file_hash, chunk_index)
		);

		CREATE INDEX IF NOT EXISTS idx_documents_source
		ON documents(source, file_hash);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Store persists a chunk. Duplicate coordinates are ignored.
func (s *SqliteStore) Store(ctx context.Context, chunk Chunk) error {
	embedding, err := json.Marshal(chunk.Embedding)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO documents (id, content, source, file_hash, chunk_index, embedding)
		VALUES (?, ?, ?, ?, ?, ?)`,
		chunk.ID,
		chunk.Content,
		chunk.Source,
		chunk.FileHash,
		chunk.ChunkIndex,
		string(embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to store chunk: %w", err)
	}
	return nil
}

// Search ranks every stored chunk by cosine similarity to the query vector.
func (s *SqliteStore) Search(ctx context.Context, embedding []float32, topK int, threshold float64) ([]Chunk, error) {
	if topK <= 0 {
		topK = 5
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, content, source, file_hash, chunk_index, embedding FROM documents")
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var matches []Chunk
	for rows.Next() {
		var chunk Chunk
		var embeddingJSON string
		if err := rows.Scan(&chunk.ID, &chunk.Content, &chunk.Source, &chunk.FileHash, &chunk.ChunkIndex, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(embeddingJSON), &chunk.Embedding); err != nil {
			return nil, fmt.Errorf("corrupt embedding for chunk %s: %w", chunk.ID, err)
		}

		chunk.Score = cosineSimilarity(embedding, chunk.Embedding)
		if chunk.Score > threshold {
			matches = append(matches, chunk)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunks: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// IsIngested reports whether any chunk of the file is stored.
func (s *SqliteStore) IsIngested(ctx context.Context, source, fileHash string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE source = ? AND file_hash = ?",
		source, fileHash).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check ingestion: %w", err)
	}
	return count > 0, nil
}

// Count returns the total number of stored chunks.
func (s *SqliteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// CountBySource returns chunk counts grouped by source.
func (s *SqliteStore) CountBySource(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT source, COUNT(*) FROM documents GROUP BY source")
	if err != nil {
		return nil, fmt.Errorf("failed to count by source: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[source] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counts: %w", err)
	}
	return counts, nil
}

var _ DocumentStore = (*SqliteStore)(nil)
