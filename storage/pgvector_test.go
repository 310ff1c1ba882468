package storage

import (
	"context"
	"os"
	"testing"
)

func TestVectorLiteral(t *testing.T) {
	cases := []struct {
		in   []float32
		want string
	}{
		{[]float32{1, 2, 3}, "[1,2,3]"},
		{[]float32{0.5, -0.25}, "[0.5,-0.25]"},
		{[]float32{}, "[]"},
	}
	for _, tc := range cases {
		if got := vectorLiteral(tc.in); got != tc.want {
			t.Errorf("vectorLiteral(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestOpenPgVectorRejectsBadDimension(t *testing.T) {
	if _, err := OpenPgVector(context.Background(), "postgres://localhost/none", 0); err == nil {
		t.Error("expected error for non-positive dimension")
	}
}

// TestPgVectorRoundTrip exercises the full store against a real database.
// Set STAGEKIT_TEST_POSTGRES_DSN to run it.
func TestPgVectorRoundTrip(t *testing.T) {
	dsn := os.Getenv("STAGEKIT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STAGEKIT_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := OpenPgVector(ctx, dsn, 3)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer store.Close()

	chunk := Chunk{
		ID:         "pg-test-a",
		Content:    "pgvector round trip",
		Source:     "test/pg.md",
		FileHash:   "pg-hash",
		ChunkIndex: 0,
		Embedding:  []float32{1, 0, 0},
	}
	if err := store.Store(ctx, chunk); err != nil {
		t.Fatalf("storing chunk: %v", err)
	}
	if err := store.Store(ctx, chunk); err != nil {
		t.Fatalf("duplicate store must not error: %v", err)
	}

	results, err := store.Search(ctx, []float32{1, 0, 0}, 5, 0.5)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) == 0 || results[0].Content != "pgvector round trip" {
		t.Errorf("unexpected results: %+v", results)
	}
}
