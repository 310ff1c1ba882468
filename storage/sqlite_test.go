package storage

import (
	"context"
	"testing"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	store, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("creating in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testChunk(id string, index int, embedding []float32) Chunk {
	return Chunk{
		ID:         id,
		Content:    "content " + id,
		Source:     "docs/guide.md",
		FileHash:   "hash-1",
		ChunkIndex: index,
		Embedding:  embedding,
	}
}

func TestSqliteStoreAndSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	chunks := []Chunk{
		testChunk("a", 0, []float32{1, 0, 0}),
		testChunk("b", 1, []float32{0.9, 0.1, 0}),
		testChunk("c", 2, []float32{0, 1, 0}),
	}
	for _, c := range chunks {
		if err := store.Store(ctx, c); err != nil {
			t.Fatalf("storing chunk %s: %v", c.ID, err)
		}
	}

	results, err := store.Search(ctx, []float32{1, 0, 0}, 2, 0.5)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "a" || results[1].ID != "b" {
		t.Errorf("results out of similarity order: %s, %s", results[0].ID, results[1].ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("scores must be descending")
	}
	if results[0].Content != "content a" {
		t.Errorf("content not round-tripped: %q", results[0].Content)
	}
}

func TestSqliteSearchThreshold(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Store(ctx, testChunk("a", 0, []float32{0, 1, 0})); err != nil {
		t.Fatalf("storing chunk: %v", err)
	}

	// Orthogonal to the query, similarity 0; threshold excludes it.
	results, err := store.Search(ctx, []float32{1, 0, 0}, 5, 0.1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results above threshold, got %d", len(results))
	}
}

func TestSqliteStoreIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	chunk := testChunk("a", 0, []float32{1, 0})
	if err := store.Store(ctx, chunk); err != nil {
		t.Fatalf("first store: %v", err)
	}

	// Same coordinates, different id: must be a no-op.
	duplicate := chunk
	duplicate.ID = "a2"
	if err := store.Store(ctx, duplicate); err != nil {
		t.Fatalf("duplicate store must not error: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 chunk after duplicate store, got %d", count)
	}
}

func TestSqliteIsIngested(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ingested, err := store.IsIngested(ctx, "docs/guide.md", "hash-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ingested {
		t.Error("empty store must report not ingested")
	}

	if err := store.Store(ctx, testChunk("a", 0, []float32{1})); err != nil {
		t.Fatalf("storing chunk: %v", err)
	}

	ingested, err = store.IsIngested(ctx, "docs/guide.md", "hash-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ingested {
		t.Error("stored file must report ingested")
	}
}

func TestSqliteCountBySource(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := testChunk("a", 0, []float32{1})
	b := testChunk("b", 1, []float32{1})
	other := testChunk("c", 0, []float32{1})
	other.Source = "docs/other.md"

	for _, c := range []Chunk{a, b, other} {
		if err := store.Store(ctx, c); err != nil {
			t.Fatalf("storing chunk %s: %v", c.ID, err)
		}
	}

	counts, err := store.CountBySource(ctx)
	if err != nil {
		t.Fatalf("count by source failed: %v", err)
	}
	if counts["docs/guide.md"] != 2 || counts["docs/other.md"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}
