package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stagekit/stagekit/backend"
	"github.com/stagekit/stagekit/storage"
)

// Default retrieval parameters. A 0.7 similarity floor filters out chunks
// that merely share vocabulary with the question.
const (
	DefaultSearchTopK    = 5
	DefaultSearchMinSim  = 0.7
	ragSystemPrompt      = "You are a helpful assistant. Answer the user's question using the provided documentation. If the documentation does not contain the answer, say so honestly rather than guessing."
	noMatchesResponse    = "I couldn't find anything relevant in the ingested documents for that question."
	contextSectionHeader = "=== RELEVANT DOCUMENTATION ==="
)

// Agent answers questions grounded in a document store: embed the question,
// retrieve the most similar chunks, and generate an answer with the
// retrieved text as context.
type Agent struct {
	backend  backend.Backend
	store    storage.DocumentStore
	embedder Embedder
	topK     int
	minSim   float64
	logger   *slog.Logger
}

// Answer is a retrieval-grounded response with the chunks that informed it.
type Answer struct {
	Response string
	Sources  []storage.Chunk
}

// NewAgent wires a retrieval-augmented answering agent.
func NewAgent(b backend.Backend, store storage.DocumentStore, embedder Embedder) *Agent {
	return &Agent{
		backend:  b,
		store:    store,
		embedder: embedder,
		topK:     DefaultSearchTopK,
		minSim:   DefaultSearchMinSim,
		logger:   slog.Default(),
	}
}

// WithTopK sets how many chunks retrieval returns. Returns the agent for
// chaining.
func (a *Agent) WithTopK(topK int) *Agent {
	if topK > 0 {
		a.topK = topK
	}
	return a
}

// WithMinSimilarity sets the similarity floor for retrieval.
func (a *Agent) WithMinSimilarity(minSim float64) *Agent {
	a.minSim = minSim
	return a
}

// WithLogger sets the logger.
func (a *Agent) WithLogger(logger *slog.Logger) *Agent {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// Retrieve returns the chunks most similar to the question, without
// generating an answer.
func (a *Agent) Retrieve(ctx context.Context, question string) ([]storage.Chunk, error) {
	embedding, err := a.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	chunks, err := a.store.Search(ctx, embedding, a.topK, a.minSim)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	a.logger.Debug("retrieval complete", "question_len", len(question), "matches", len(chunks))
	return chunks, nil
}

// Ask retrieves context for the question and generates a grounded answer.
// When nothing relevant is found, the response says so without calling the
// model.
func (a *Agent) Ask(ctx context.Context, question string, opts backend.Options) (*Answer, error) {
	chunks, err := a.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return &Answer{Response: noMatchesResponse}, nil
	}

	prompt := buildAnswerPrompt(question, chunks)
	resp, err := a.backend.Generate(ctx, prompt, ragSystemPrompt, opts)
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &Answer{
		Response: strings.TrimSpace(resp.Text),
		Sources:  chunks,
	}, nil
}

// buildAnswerPrompt assembles the retrieved chunks into a context block
// followed by the question. Each chunk is labeled with its source so the
// model can cite where an answer came from.
func buildAnswerPrompt(question string, chunks []storage.Chunk) string {
	var b strings.Builder
	b.WriteString(contextSectionHeader)
	b.WriteString("\n")
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "\n[%d] Source: %s (similarity %.2f)\n", i+1, chunk.Source, chunk.Score)
		b.WriteString(chunk.Content)
		b.WriteString("\n")
	}
	b.WriteString("\n=== CURRENT QUESTION ===\n")
	b.WriteString(question)
	b.WriteString("\n\nPlease provide a clear, helpful answer to the current question using the documentation above.\n")
	return b.String()
}
