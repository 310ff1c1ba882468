// Package rag implements the retrieval-augmented generation pipeline:
// document chunking, embedding generation, ingestion into a document store,
// and retrieval-grounded answering.
package rag

import (
	"regexp"
	"strings"
)

// Chunker splits documents into overlapping segments sized in estimated
// tokens. Paragraph boundaries are preferred; oversized paragraphs fall back
// to sentence splits, and pathological single sentences are split on words.
type Chunker struct {
	chunkSize    int // target size in tokens
	chunkOverlap int // overlap in tokens carried into the next chunk
}

var (
	paragraphSplit = regexp.MustCompile(`\n{2,}`)
	sentenceSplit  = regexp.MustCompile(`(?m)([.!?])\s+`)
)

// NewChunker creates a chunker. Non-positive sizes fall back to 500/50.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 10
	}
	return &Chunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Chunk splits content into overlapping segments. Empty input yields nil.
func (c *Chunker) Chunk(content string) []string {
	var chunks []string
	var current strings.Builder
	currentTokens := 0

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
			currentTokens = 0
		}
	}

	for _, paragraph := range paragraphSplit.Split(content, -1) {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}

		paragraphTokens := estimateTokens(paragraph)

		// A paragraph that alone exceeds the chunk size is split by sentences.
		if paragraphTokens > c.chunkSize {
			flush()
			chunks = append(chunks, c.splitLargeParagraph(paragraph)...)
			continue
		}

		if currentTokens+paragraphTokens > c.chunkSize && current.Len() > 0 {
			flush()
			// Seed the next chunk with the tail of the previous one so
			// context survives the boundary.
			if overlap := c.overlapOf(chunks[len(chunks)-1]); overlap != "" {
				current.WriteString(overlap)
				current.WriteString("\n\n")
				currentTokens = estimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
		currentTokens += paragraphTokens
	}

	flush()
	return chunks
}

func (c *Chunker) splitLargeParagraph(paragraph string) []string {
	var chunks []string
	var current strings.Builder
	currentTokens := 0

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
			currentTokens = 0
		}
	}

	for _, sentence := range splitSentences(paragraph) {
		sentenceTokens := estimateTokens(sentence)

		if sentenceTokens > c.chunkSize {
			flush()
			chunks = append(chunks, c.forceSplit(sentence)...)
			continue
		}

		if currentTokens+sentenceTokens > c.chunkSize && current.Len() > 0 {
			flush()
			if overlap := c.overlapOf(chunks[len(chunks)-1]); overlap != "" {
				current.WriteString(overlap)
				current.WriteString(" ")
				currentTokens = estimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
		currentTokens += sentenceTokens
	}

	flush()
	return chunks
}

// forceSplit handles a single sentence larger than the chunk size by
// breaking on word boundaries, with no overlap.
func (c *Chunker) forceSplit(text string) []string {
	var chunks []string
	var current strings.Builder
	currentTokens := 0

	for _, word := range strings.Fields(text) {
		wordTokens := estimateTokens(word)

		if currentTokens+wordTokens > c.chunkSize && current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
			currentTokens = 0
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
		currentTokens += wordTokens
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

// overlapOf returns the tail of the previous chunk to carry forward,
// trimmed to a word boundary.
func (c *Chunker) overlapOf(previous string) string {
	targetChars := c.chunkOverlap * 4
	if targetChars <= 0 {
		return ""
	}
	if len(previous) <= targetChars {
		return previous
	}

	overlap := previous[len(previous)-targetChars:]
	if i := strings.IndexByte(overlap, ' '); i > 0 && i < len(overlap)/2 {
		overlap = overlap[i+1:]
	}
	return overlap
}

// splitSentences splits on sentence-ending punctuation followed by
// whitespace, keeping the punctuation with the preceding sentence.
func splitSentences(text string) []string {
	marked := sentenceSplit.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")
	sentences := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// estimateTokens approximates token count at ~4 characters per token,
// conservative for English text.
func estimateTokens(text string) int {
	n := len(text) / 4
	if n < 1 {
		return 1
	}
	return n
}
